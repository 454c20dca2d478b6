// sections.go — сервис отделов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

// SectionInput — поля отдела. nil — поле не меняется.
type SectionInput struct {
	Name      *string
	SortOrder *int
}

// SectionService — сервис отделов.
type SectionService struct {
	repo   repository.SectionRepository
	logger *slog.Logger
}

// NewSectionService создаёт сервис отделов.
func NewSectionService(repo repository.SectionRepository, logger *slog.Logger) *SectionService {
	return &SectionService{
		repo:   repo,
		logger: logger.With(slog.String("component", "section_service")),
	}
}

// List возвращает отделы в порядке отображения.
func (s *SectionService) List(ctx context.Context) ([]*model.Section, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение отделов: %w", err)
	}
	return list, nil
}

// Create создаёт отдел. Имя обязательно.
func (s *SectionService) Create(ctx context.Context, in SectionInput) (*model.Section, error) {
	sec := &model.Section{ID: uuid.New().String()}
	if err := applySection(sec, in, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: отдел %q уже существует", ErrConflict, sec.Name)
		}
		return nil, fmt.Errorf("создание отдела: %w", err)
	}

	s.logger.Info("Отдел создан", slog.String("id", sec.ID), slog.String("name", sec.Name))
	return sec, nil
}

// Update частично обновляет отдел.
func (s *SectionService) Update(ctx context.Context, id string, in SectionInput) (*model.Section, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	sec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение отдела: %w", err)
	}

	if err := applySection(sec, in, false); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, sec); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: отдел %q уже существует", ErrConflict, sec.Name)
		}
		return nil, fmt.Errorf("обновление отдела: %w", err)
	}
	return sec, nil
}

// Delete удаляет отдел. Отдел с сотрудниками удалить нельзя (ErrConflict).
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return fmt.Errorf("%w: в отделе есть сотрудники", ErrConflict)
		}
		return fmt.Errorf("удаление отдела: %w", err)
	}

	s.logger.Info("Отдел удалён", slog.String("id", id))
	return nil
}

func applySection(sec *model.Section, in SectionInput, create bool) error {
	verr := &ValidationError{}
	if in.Name != nil {
		sec.Name = strings.TrimSpace(*in.Name)
	}
	if (create || in.Name != nil) && sec.Name == "" {
		verr.Add("name", "название обязательно")
	}
	if in.SortOrder != nil {
		sec.SortOrder = *in.SortOrder
	}
	return verr.Err()
}
