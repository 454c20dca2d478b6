package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
)

// SectionRepository — интерфейс CRUD для таблицы sections.
type SectionRepository interface {
	// List возвращает все отделы в порядке sort_order.
	List(ctx context.Context) ([]*model.Section, error)
	GetByID(ctx context.Context, id string) (*model.Section, error)
	Create(ctx context.Context, s *model.Section) error
	Update(ctx context.Context, s *model.Section) error
	// Delete удаляет отдел. Если на него ссылаются сотрудники — ErrConflict.
	Delete(ctx context.Context, id string) error
}

type sectionRepo struct {
	db DBTX
}

// NewSectionRepository создаёт репозиторий отделов.
func NewSectionRepository(db DBTX) SectionRepository {
	return &sectionRepo{db: db}
}

const sectionColumns = `id, name, sort_order, created_at, updated_at`

func (r *sectionRepo) List(ctx context.Context) ([]*model.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections ORDER BY sort_order, name`, sectionColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отделов: %w", err)
	}
	defer rows.Close()

	result := []*model.Section{}
	for rows.Next() {
		s := &model.Section{}
		if err := rows.Scan(&s.ID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования отдела: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1`, sectionColumns)

	s := &model.Section{}
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения отдела: %w", err)
	}
	return s, nil
}

func (r *sectionRepo) Create(ctx context.Context, s *model.Section) error {
	query := `
		INSERT INTO sections (id, name, sort_order)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, s.ID, s.Name, s.SortOrder).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: отдел %q уже существует", ErrConflict, s.Name)
		}
		return fmt.Errorf("ошибка создания отдела: %w", err)
	}
	return nil
}

func (r *sectionRepo) Update(ctx context.Context, s *model.Section) error {
	query := `
		UPDATE sections SET name = $2, sort_order = $3
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, s.ID, s.Name, s.SortOrder).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: отдел %q уже существует", ErrConflict, s.Name)
		}
		return fmt.Errorf("ошибка обновления отдела: %w", err)
	}
	return nil
}

func (r *sectionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: в отделе есть сотрудники", ErrConflict)
		}
		return fmt.Errorf("ошибка удаления отдела: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
