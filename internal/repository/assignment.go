package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
)

// AssignmentFilter — фильтры выборки назначений.
type AssignmentFilter struct {
	// From, To — включительный диапазон дат
	From time.Time
	To   time.Time
	// PersonID — только указанный сотрудник (nil — все)
	PersonID *string
}

// AssignmentRepository — доступ к таблице assignments.
type AssignmentRepository interface {
	// DeleteByPersonDates удаляет все назначения сотрудника на указанные даты.
	DeleteByPersonDates(ctx context.Context, personID string, dates []time.Time) (int64, error)
	// InsertBatch вставляет назначения одной операцией COPY.
	InsertBatch(ctx context.Context, rows []*model.Assignment) (int64, error)
	// List возвращает назначения по дате, затем основной проект первым,
	// затем по имени проекта. В каждую запись вкладывается проект.
	List(ctx context.Context, filter AssignmentFilter) ([]*model.Assignment, error)
}

// AssignmentUnitOfWork выполняет операции над назначениями атомарно.
type AssignmentUnitOfWork interface {
	// InTx вызывает fn с репозиторием, работающим внутри одной транзакции.
	// Ошибка fn откатывает все изменения.
	InTx(ctx context.Context, fn func(repo AssignmentRepository) error) error
}

type assignmentRepo struct {
	db DBTX
}

// NewAssignmentRepository создаёт репозиторий назначений.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepo{db: db}
}

type assignmentUnitOfWork struct {
	runner *TxRunner
}

// NewAssignmentUnitOfWork создаёт транзакционную обёртку над репозиторием назначений.
func NewAssignmentUnitOfWork(runner *TxRunner) AssignmentUnitOfWork {
	return &assignmentUnitOfWork{runner: runner}
}

func (u *assignmentUnitOfWork) InTx(ctx context.Context, fn func(repo AssignmentRepository) error) error {
	return u.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(NewAssignmentRepository(tx))
	})
}

var assignmentCopyColumns = []string{"id", "person_id", "project_id", "date", "is_primary", "workload"}

func (r *assignmentRepo) DeleteByPersonDates(ctx context.Context, personID string, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assignments WHERE person_id = $1 AND date = ANY($2::date[])`,
		personID, dates,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления назначений: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *assignmentRepo) InsertBatch(ctx context.Context, rows []*model.Assignment) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(rows))
	for _, a := range rows {
		id, err := uuid.Parse(a.ID)
		if err != nil {
			return 0, fmt.Errorf("некорректный id назначения %q: %w", a.ID, err)
		}
		personID, err := uuid.Parse(a.PersonID)
		if err != nil {
			return 0, &ForeignKeyError{Column: "person_id"}
		}
		projectID, err := uuid.Parse(a.ProjectID)
		if err != nil {
			return 0, &ForeignKeyError{Column: "project_id"}
		}
		values = append(values, []any{id, personID, projectID, a.Date, a.IsPrimary, string(a.Workload)})
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"assignments"}, assignmentCopyColumns, pgx.CopyFromRows(values))
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, foreignKeyError(err)
		}
		return 0, fmt.Errorf("ошибка вставки назначений: %w", err)
	}
	return n, nil
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]*model.Assignment, error) {
	conditions := []string{"a.date >= $1", "a.date <= $2"}
	args := []any{filter.From, filter.To}

	if filter.PersonID != nil {
		args = append(args, *filter.PersonID)
		conditions = append(conditions, fmt.Sprintf("a.person_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.person_id, a.project_id, a.date, a.is_primary, a.workload,
			a.created_at, a.updated_at,
			p.id, p.project_id, p.name, p.label, p.color
		FROM assignments a
		JOIN projects p ON p.id = a.project_id
		WHERE %s
		ORDER BY a.date, a.is_primary DESC, p.name`, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения назначений: %w", err)
	}
	defer rows.Close()

	result := []*model.Assignment{}
	for rows.Next() {
		a := &model.Assignment{Project: &model.ProjectSummary{}}
		var workload string
		if err := rows.Scan(
			&a.ID, &a.PersonID, &a.ProjectID, &a.Date, &a.IsPrimary, &workload,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Project.ID, &a.Project.ProjectID, &a.Project.Name, &a.Project.Label, &a.Project.Color,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования назначения: %w", err)
		}
		a.Workload = model.Workload(workload)
		a.Date = a.Date.UTC()
		result = append(result, a)
	}
	return result, rows.Err()
}
