// Точка входа Planner Module — планировщик загрузки сотрудников.
// Команды:
//   - serve: миграции, сервисный слой, API, UI и HTTP-сервер с graceful shutdown
//   - migrate: применение или откат миграций БД
//   - create-admin: создание или сброс учётной записи администратора
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/planner-module/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Planner Module — планировщик загрузки сотрудников по проектам",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig загружает конфигурацию и настраивает логирование.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}
	return cfg, config.SetupLogger(cfg), nil
}
