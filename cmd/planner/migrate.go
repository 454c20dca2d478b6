package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/planner-module/internal/database"
)

func migrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД (или откатить --down N шагов)",
		RunE: func(_ *cobra.Command, _ []string) error {
			if down < 0 {
				return fmt.Errorf("--down: ожидается неотрицательное число, получено %d", down)
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if down > 0 {
				logger.Info("Откат миграций", slog.Int("steps", down))
				return database.Rollback(cfg, down, logger)
			}
			return database.Migrate(cfg, logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "Откатить указанное число миграций")
	return cmd
}
