package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/planner-module/internal/database"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

// adminPasswordEnv — переменная с паролем администратора, если флаг не задан.
const adminPasswordEnv = "PL_ADMIN_PASSWORD"

func createAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Создать администратора или сбросить его пароль",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(adminPasswordEnv)
			}
			if password == "" {
				return errors.New("пароль не задан: --password или " + adminPasswordEnv)
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.Migrate(cfg, logger); err != nil {
				return fmt.Errorf("миграции БД: %w", err)
			}

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("подключение к PostgreSQL: %w", err)
			}
			defer pool.Close()

			users := service.NewUserService(repository.NewUserRepository(pool), logger)
			u, err := users.EnsureAdmin(ctx, name, email, password)
			if err != nil {
				return fmt.Errorf("создание администратора: %w", err)
			}

			logger.Info("Администратор готов", slog.String("id", u.ID), slog.String("email", u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "Отображаемое имя")
	cmd.Flags().StringVar(&email, "email", "", "Email для входа")
	cmd.Flags().StringVar(&password, "password", "", "Пароль (по умолчанию из "+adminPasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
