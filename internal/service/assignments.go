// assignments.go — сервис назначений: атомарная замена назначений
// сотрудника на набор дат, удаление и выборка за период.
//
// Одновременные замены для одного сотрудника и пересекающихся дат
// не блокируются и не сериализуются: каждая транзакция удаляет то, что
// видит на момент удаления, поэтому результат гонки определяет хранилище.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

// MaxListRangeDays — наибольший период выборки назначений.
const MaxListRangeDays = 366

// Prometheus-метрики назначений.
var (
	assignmentsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pl_assignments_written_total",
		Help: "Количество записанных назначений",
	})
	assignmentsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pl_assignments_deleted_total",
		Help: "Количество удалённых назначений",
	})
	replaceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pl_assignment_replace_duration_seconds",
		Help:    "Длительность замены назначений",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms … ~2.5s
	}, []string{"result"}) // result: ok, validation, error
)

// ReplaceInput — параметры замены назначений.
type ReplaceInput struct {
	PersonID         string
	Dates            []string
	ProjectIDs       []string
	PrimaryProjectID string
	Workload         string
}

// AssignmentService — сервис назначений.
type AssignmentService struct {
	uow    repository.AssignmentUnitOfWork
	repo   repository.AssignmentRepository
	logger *slog.Logger
}

// NewAssignmentService создаёт сервис назначений.
func NewAssignmentService(
	uow repository.AssignmentUnitOfWork,
	repo repository.AssignmentRepository,
	logger *slog.Logger,
) *AssignmentService {
	return &AssignmentService{
		uow:    uow,
		repo:   repo,
		logger: logger.With(slog.String("component", "assignment_service")),
	}
}

// Replace удаляет все назначения сотрудника на указанные даты и создаёт
// по одному назначению на каждую пару (дата, проект) в одной транзакции.
// Возвращает количество созданных записей; пустой список дат — 0.
func (s *AssignmentService) Replace(ctx context.Context, in ReplaceInput) (int, error) {
	start := time.Now()
	n, err := s.replace(ctx, in)

	result := "ok"
	switch {
	case errors.Is(err, ErrValidation):
		result = "validation"
	case err != nil:
		result = "error"
	}
	replaceDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return n, err
}

func (s *AssignmentService) replace(ctx context.Context, in ReplaceInput) (int, error) {
	verr := &ValidationError{}

	if !isUUID(in.PersonID) {
		verr.Add("personId", "некорректный идентификатор сотрудника")
	}

	dates := parseDateKeys(in.Dates, "dates", verr)

	projectIDs := uniqueStrings(in.ProjectIDs)
	if len(projectIDs) == 0 {
		verr.Add("projectIds", "выберите хотя бы один проект")
	}
	for _, id := range projectIDs {
		if !isUUID(id) {
			verr.Add("projectIds", "некорректный идентификатор проекта "+id)
		}
	}

	primaryFound := false
	for _, id := range projectIDs {
		if id == in.PrimaryProjectID {
			primaryFound = true
			break
		}
	}
	if !primaryFound {
		verr.Add("primaryProjectId", "основной проект должен входить в список проектов")
	}

	workload := model.Workload(in.Workload)
	if !workload.Valid() {
		verr.Add("workload", "допустимые значения: RED, YELLOW, GREEN")
	}

	if err := verr.Err(); err != nil {
		return 0, err
	}

	rows := make([]*model.Assignment, 0, len(dates)*len(projectIDs))
	for _, d := range dates {
		for _, pid := range projectIDs {
			rows = append(rows, &model.Assignment{
				ID:        uuid.New().String(),
				PersonID:  in.PersonID,
				ProjectID: pid,
				Date:      d,
				IsPrimary: pid == in.PrimaryProjectID,
				Workload:  workload,
			})
		}
	}

	var deleted, inserted int64
	err := s.uow.InTx(ctx, func(repo repository.AssignmentRepository) error {
		var err error
		if deleted, err = repo.DeleteByPersonDates(ctx, in.PersonID, dates); err != nil {
			return err
		}
		inserted, err = repo.InsertBatch(ctx, rows)
		return err
	})
	if err != nil {
		return 0, s.mapWriteError(err)
	}

	assignmentsDeletedTotal.Add(float64(deleted))
	assignmentsWrittenTotal.Add(float64(inserted))

	s.logger.Info("Назначения заменены",
		slog.String("person_id", in.PersonID),
		slog.Int("dates", len(dates)),
		slog.Int("projects", len(projectIDs)),
		slog.Int64("deleted", deleted),
		slog.Int64("inserted", inserted),
	)

	return len(rows), nil
}

// Delete удаляет все назначения сотрудника на указанные даты.
// Возвращает количество удалённых записей.
func (s *AssignmentService) Delete(ctx context.Context, personID string, dateKeys []string) (int64, error) {
	verr := &ValidationError{}
	if !isUUID(personID) {
		verr.Add("personId", "некорректный идентификатор сотрудника")
	}
	dates := parseDateKeys(dateKeys, "dates", verr)
	if err := verr.Err(); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.uow.InTx(ctx, func(repo repository.AssignmentRepository) error {
		var err error
		deleted, err = repo.DeleteByPersonDates(ctx, personID, dates)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("удаление назначений: %w", err)
	}

	assignmentsDeletedTotal.Add(float64(deleted))
	s.logger.Info("Назначения удалены",
		slog.String("person_id", personID),
		slog.Int("dates", len(dates)),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// List возвращает назначения за включительный период [from, to].
func (s *AssignmentService) List(ctx context.Context, from, to time.Time, personID *string) ([]*model.Assignment, error) {
	verr := &ValidationError{}
	if from.After(to) {
		verr.Add("dateFrom", "начало периода позже конца")
	} else if to.Sub(from) > MaxListRangeDays*24*time.Hour {
		verr.Add("dateTo", fmt.Sprintf("период не может превышать %d дней", MaxListRangeDays))
	}
	if personID != nil && !isUUID(*personID) {
		verr.Add("personId", "некорректный идентификатор сотрудника")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	list, err := s.repo.List(ctx, repository.AssignmentFilter{From: from, To: to, PersonID: personID})
	if err != nil {
		return nil, fmt.Errorf("получение назначений: %w", err)
	}
	return list, nil
}

// mapWriteError переводит ошибки записи: ссылки на несуществующие
// записи — ошибка валидации, остальное — ошибка хранилища.
func (s *AssignmentService) mapWriteError(err error) error {
	var fkErr *repository.ForeignKeyError
	if errors.As(err, &fkErr) {
		if fkErr.Column == "person_id" {
			return NewValidationError("personId", "сотрудник не найден")
		}
		return NewValidationError("projectIds", "проект не найден")
	}
	return fmt.Errorf("замена назначений: %w", err)
}
