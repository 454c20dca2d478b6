package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/planner-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/planner-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/api/openapi"
	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/config"
	"github.com/bigkaa/goartstore/planner-module/internal/database"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
	"github.com/bigkaa/goartstore/planner-module/internal/server"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
	uihandlers "github.com/bigkaa/goartstore/planner-module/internal/ui/handlers"
	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/planner-module/internal/ui/middleware"
)

const serviceID = "planner-module"

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер (API и UI)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Не применять миграции при старте")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, skipMigrations bool) error {
	logger.Info("Planner Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях
	if os.Getenv("PL_DEPHEALTH_GROUP") == "" {
		logger.Warn("PL_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("PL_SESSION_SECRET не задан, UI-сессии не сохраняются между рестартами")
	}

	// 1. Применение миграций БД
	if !skipMigrations {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			return fmt.Errorf("миграции БД: %w", err)
		}
	}

	// 2. Подключение к PostgreSQL (pgxpool)
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	defer pool.Close()

	// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 3. Аутентификация: API-токены и cookie-сессии
	tokens, err := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenPreviousSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("создание TokenManager: %w", err)
	}
	sessions, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookie, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("создание SessionManager: %w", err)
	}

	// 4. Repositories
	txRunner := repository.NewTxRunner(pool)
	sectionRepo := repository.NewSectionRepository(pool)
	personRepo := repository.NewPersonRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// 5. Services
	holidaySvc, err := service.NewHolidayService(cfg.HolidayCacheSize)
	if err != nil {
		return fmt.Errorf("создание кэша праздников: %w", err)
	}
	assignmentSvc := service.NewAssignmentService(repository.NewAssignmentUnitOfWork(txRunner), assignmentRepo, logger)
	sectionSvc := service.NewSectionService(sectionRepo, logger)
	personSvc := service.NewPersonService(personRepo, logger)
	projectSvc := service.NewProjectService(projectRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)
	loginSvc := service.NewLoginService(userRepo, tokens, logger)

	// 6. topologymetrics — мониторинг PostgreSQL через пул соединений
	var deps handlers.DependencyStatus
	dephealthSvc, err := service.NewDephealthService(
		serviceID, cfg.DephealthGroup, pgDB, cfg.DatabaseURL(), cfg.DephealthCheckInterval, logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		dephealthSvc = nil
	} else {
		deps = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 7. API
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), deps)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		assignmentSvc,
		holidaySvc,
		sectionSvc,
		personSvc,
		projectSvc,
		userSvc,
		loginSvc,
		sessions,
		logger,
	)
	validator, err := openapi.NewValidator(logger)
	if err != nil {
		return fmt.Errorf("загрузка OpenAPI-контракта: %w", err)
	}

	// 8. UI: каталоги переводов и обработчики страниц
	if err := i18n.LoadFromEmbedFS(i18n.Init(logger), logger); err != nil {
		return fmt.Errorf("загрузка каталогов переводов: %w", err)
	}

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, server.Handlers{
		API:           apiHandler,
		Validator:     validator,
		Authenticator: middleware.NewAuthenticator(tokens, sessions, logger),
		Planner: uihandlers.NewPlannerHandler(
			personSvc, sectionSvc, assignmentSvc, holidaySvc, cfg.PlannerWeeks, logger,
		),
		Person: uihandlers.NewPersonHandler(
			personSvc, projectSvc, assignmentSvc, holidaySvc, logger,
		),
		UIAuth:    uihandlers.NewAuthHandler(loginSvc, sessions, logger),
		UISession: uimiddleware.NewUIAuth(sessions, logger),
	})
	runErr := srv.Run()

	// 10. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("Planner Module остановлен")
	return nil
}
