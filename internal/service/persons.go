// persons.go — сервис сотрудников.
// Связь «руководитель» (SDM) — ссылка на другого сотрудника; при записи
// проверяется, что цепочка руководителей не образует цикл.
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

// maxSdmDepth — предел длины цепочки руководителей при проверке цикла.
const maxSdmDepth = 1000

// PersonInput — поля сотрудника. nil — поле не меняется.
// SdmID, указывающий на пустую строку, снимает руководителя.
type PersonInput struct {
	FirstName *string
	LastName  *string
	SectionID *string
	SdmID     *string
	IsActive  *bool
	SortOrder *int
}

// PersonService — сервис сотрудников.
type PersonService struct {
	repo   repository.PersonRepository
	logger *slog.Logger
}

// NewPersonService создаёт сервис сотрудников.
func NewPersonService(repo repository.PersonRepository, logger *slog.Logger) *PersonService {
	return &PersonService{
		repo:   repo,
		logger: logger.With(slog.String("component", "person_service")),
	}
}

// List возвращает сотрудников в порядке отдел, sort_order, фамилия.
func (s *PersonService) List(ctx context.Context, filter repository.PersonFilter) ([]*model.Person, error) {
	if filter.SectionID != "" && !isUUID(filter.SectionID) {
		return nil, NewValidationError("sectionId", "некорректный идентификатор отдела")
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение сотрудников: %w", err)
	}
	return list, nil
}

// Get возвращает сотрудника по ID.
func (s *PersonService) Get(ctx context.Context, id string) (*model.Person, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение сотрудника: %w", err)
	}
	return p, nil
}

// Create создаёт сотрудника. Имя, фамилия и отдел обязательны.
func (s *PersonService) Create(ctx context.Context, in PersonInput) (*model.Person, error) {
	p := &model.Person{ID: uuid.New().String(), IsActive: true}
	if err := applyPerson(p, in, true); err != nil {
		return nil, err
	}
	if err := s.checkSdm(ctx, p.ID, p.SdmID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapPersonWriteError(err, "создание сотрудника")
	}

	s.logger.Info("Сотрудник создан",
		slog.String("id", p.ID),
		slog.String("name", p.FirstName+" "+p.LastName),
	)
	return s.Get(ctx, p.ID)
}

// Update частично обновляет сотрудника.
func (s *PersonService) Update(ctx context.Context, id string, in PersonInput) (*model.Person, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyPerson(p, in, false); err != nil {
		return nil, err
	}
	if in.SdmID != nil {
		if err := s.checkSdm(ctx, p.ID, p.SdmID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapPersonWriteError(err, "обновление сотрудника")
	}
	return s.Get(ctx, p.ID)
}

// Deactivate помечает сотрудника неактивным. Физически сотрудники не удаляются.
func (s *PersonService) Deactivate(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("деактивация сотрудника: %w", err)
	}

	s.logger.Info("Сотрудник деактивирован", slog.String("id", id))
	return nil
}

// checkSdm проверяет, что руководитель существует, не совпадает
// с сотрудником и цепочка его руководителей не возвращается к сотруднику.
func (s *PersonService) checkSdm(ctx context.Context, personID string, sdmID *string) error {
	if sdmID == nil {
		return nil
	}
	if *sdmID == personID {
		return NewValidationError("sdmId", "сотрудник не может быть своим руководителем")
	}

	visited := map[string]struct{}{}
	current := *sdmID
	for depth := 0; depth < maxSdmDepth; depth++ {
		next, err := s.repo.SdmID(ctx, current)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if current == *sdmID {
					return NewValidationError("sdmId", "руководитель не найден")
				}
				return nil
			}
			return fmt.Errorf("проверка цепочки руководителей: %w", err)
		}
		if next == nil {
			return nil
		}
		if *next == personID {
			return NewValidationError("sdmId", "цепочка руководителей образует цикл")
		}
		if _, seen := visited[*next]; seen {
			// Цикл выше по цепочке, сотрудника он не затрагивает
			return nil
		}
		visited[*next] = struct{}{}
		current = *next
	}
	return nil
}

func applyPerson(p *model.Person, in PersonInput, create bool) error {
	verr := &ValidationError{}

	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if (create || in.FirstName != nil) && p.FirstName == "" {
		verr.Add("firstName", "имя обязательно")
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if (create || in.LastName != nil) && p.LastName == "" {
		verr.Add("lastName", "фамилия обязательна")
	}
	if in.SectionID != nil {
		p.SectionID = strings.TrimSpace(*in.SectionID)
	}
	if (create || in.SectionID != nil) && !isUUID(p.SectionID) {
		verr.Add("sectionId", "отдел обязателен")
	}
	if in.SdmID != nil {
		p.SdmID = optionalString(*in.SdmID)
		if p.SdmID != nil && !isUUID(*p.SdmID) {
			verr.Add("sdmId", "некорректный идентификатор руководителя")
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		p.SortOrder = *in.SortOrder
	}

	return verr.Err()
}

func mapPersonWriteError(err error, op string) error {
	var fkErr *repository.ForeignKeyError
	switch {
	case errors.As(err, &fkErr):
		field := foreignKeyField(fkErr.Column)
		if field == "" {
			field = "sectionId"
		}
		return NewValidationError(field, "запись не найдена")
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
