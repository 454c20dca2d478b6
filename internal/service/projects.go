// projects.go — сервис проектов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

// colorPattern — цвет проекта в формате #RRGGBB.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ProjectInput — поля проекта. nil — поле не меняется.
// Для Label и Color пустая строка очищает значение.
type ProjectInput struct {
	ProjectID *string
	Name      *string
	Label     *string
	Color     *string
	IsActive  *bool
}

// ProjectService — сервис проектов.
type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		logger: logger.With(slog.String("component", "project_service")),
	}
}

// List возвращает проекты по имени.
func (s *ProjectService) List(ctx context.Context, activeOnly bool) ([]*model.Project, error) {
	list, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	return list, nil
}

// Get возвращает проект по ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

// Create создаёт проект. projectId и name обязательны.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	p := &model.Project{ID: uuid.New().String(), IsActive: true}
	if err := applyProject(p, in, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: проект %q уже существует", ErrConflict, p.ProjectID)
		}
		return nil, fmt.Errorf("создание проекта: %w", err)
	}

	s.logger.Info("Проект создан", slog.String("id", p.ID), slog.String("project_id", p.ProjectID))
	return p, nil
}

// Update частично обновляет проект.
func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*model.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyProject(p, in, false); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: проект %q уже существует", ErrConflict, p.ProjectID)
		}
		return nil, fmt.Errorf("обновление проекта: %w", err)
	}
	return p, nil
}

// Deactivate помечает проект неактивным. Назначения сохраняются.
func (s *ProjectService) Deactivate(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("деактивация проекта: %w", err)
	}

	s.logger.Info("Проект деактивирован", slog.String("id", id))
	return nil
}

func applyProject(p *model.Project, in ProjectInput, create bool) error {
	verr := &ValidationError{}

	if in.ProjectID != nil {
		p.ProjectID = strings.TrimSpace(*in.ProjectID)
	}
	if (create || in.ProjectID != nil) && p.ProjectID == "" {
		verr.Add("projectId", "ID проекта обязателен")
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if (create || in.Name != nil) && p.Name == "" {
		verr.Add("name", "название обязательно")
	}
	if in.Label != nil {
		p.Label = optionalString(*in.Label)
	}
	if in.Color != nil {
		p.Color = optionalString(*in.Color)
		if p.Color != nil && !colorPattern.MatchString(*p.Color) {
			verr.Add("color", "цвет должен быть в формате #RRGGBB")
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	return verr.Err()
}

// optionalString — пустая строка превращается в nil.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
