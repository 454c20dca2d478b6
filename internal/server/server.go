// Пакет server — HTTP-сервер Planner Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/planner-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/api/openapi"
	"github.com/bigkaa/goartstore/planner-module/internal/config"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/rbac"
	uihandlers "github.com/bigkaa/goartstore/planner-module/internal/ui/handlers"
	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/planner-module/internal/ui/middleware"
)

// Handlers — обработчики и middleware, из которых собирается роутер.
type Handlers struct {
	API           *handlers.APIHandler
	Validator     *openapi.Validator
	Authenticator *middleware.Authenticator
	Planner       *uihandlers.PlannerHandler
	Person        *uihandlers.PersonHandler
	UIAuth        *uihandlers.AuthHandler
	UISession     *uimiddleware.UIAuth
}

// Server — HTTP-сервер Planner Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер.
// Health и metrics публичные: Kubernetes опрашивает их напрямую.
func NewRouter(logger *slog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", h.API.HealthLive)
	router.Get("/health/ready", h.API.HealthReady)
	router.Get("/metrics", h.API.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Validator.Middleware())

		r.Post("/auth/login", h.API.Login)
		r.Post("/auth/logout", h.API.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticator.Middleware())

			r.Get("/auth/me", h.API.Me)
			// Свой пароль меняет любой пользователь, чужой — только ADMIN (проверка в сервисе)
			r.Put("/users/{id}/password", h.API.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoleForWrites(rbac.RoleAdmin))

				r.Get("/assignments", h.API.ListAssignments)
				r.Post("/assignments", h.API.ReplaceAssignments)
				r.Delete("/assignments/bulk", h.API.DeleteAssignments)
				r.Get("/holidays", h.API.ListHolidays)

				r.Get("/sections", h.API.ListSections)
				r.Post("/sections", h.API.CreateSection)
				r.Put("/sections/{id}", h.API.UpdateSection)
				r.Delete("/sections/{id}", h.API.DeleteSection)

				r.Get("/persons", h.API.ListPersons)
				r.Post("/persons", h.API.CreatePerson)
				r.Get("/persons/{id}", h.API.GetPerson)
				r.Put("/persons/{id}", h.API.UpdatePerson)
				r.Delete("/persons/{id}", h.API.DeactivatePerson)

				r.Get("/projects", h.API.ListProjects)
				r.Post("/projects", h.API.CreateProject)
				r.Get("/projects/{id}", h.API.GetProject)
				r.Put("/projects/{id}", h.API.UpdateProject)
				r.Delete("/projects/{id}", h.API.DeactivateProject)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(rbac.RoleAdmin))

				r.Get("/users", h.API.ListUsers)
				r.Post("/users", h.API.CreateUser)
				r.Get("/users/{id}", h.API.GetUser)
				r.Put("/users/{id}", h.API.UpdateUser)
				r.Delete("/users/{id}", h.API.DeleteUser)
			})
		})
	})

	// UI: язык из cookie/Accept-Language, сетка и календарь только с сессией
	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())

		r.Get(uimiddleware.LoginPath, h.UIAuth.HandleLoginPage)
		r.Post(uimiddleware.LoginPath, h.UIAuth.HandleLogin)
		r.Post("/logout", h.UIAuth.HandleLogout)
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(h.UISession.Middleware())
			r.Get(uihandlers.HomePath, h.Planner.HandlePlanner)
			r.Get(uihandlers.PersonPathPrefix+"{id}", h.Person.HandlePerson)
			r.Post(uihandlers.PersonPathPrefix+"{id}", h.Person.HandleSubmit)
		})
	})

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, uihandlers.HomePath, http.StatusFound)
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
