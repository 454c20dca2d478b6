package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
)

// PersonFilter — фильтры списка сотрудников.
type PersonFilter struct {
	// ActiveOnly — только активные
	ActiveOnly bool
	// SectionID — только указанный отдел (пустая строка — все)
	SectionID string
}

// PersonRepository — интерфейс CRUD для таблицы persons.
type PersonRepository interface {
	// List возвращает сотрудников в порядке отдел, sort_order, фамилия.
	// В каждую запись вкладываются отдел и руководитель.
	List(ctx context.Context, filter PersonFilter) ([]*model.Person, error)
	GetByID(ctx context.Context, id string) (*model.Person, error)
	Create(ctx context.Context, p *model.Person) error
	Update(ctx context.Context, p *model.Person) error
	// Deactivate снимает признак активности (сотрудники не удаляются).
	Deactivate(ctx context.Context, id string) error
	// SdmID возвращает руководителя сотрудника (nil — нет руководителя).
	SdmID(ctx context.Context, id string) (*string, error)
}

type personRepo struct {
	db DBTX
}

// NewPersonRepository создаёт репозиторий сотрудников.
func NewPersonRepository(db DBTX) PersonRepository {
	return &personRepo{db: db}
}

const personSelect = `
	SELECT p.id, p.first_name, p.last_name, p.section_id, p.sdm_id,
		p.is_active, p.sort_order, p.created_at, p.updated_at,
		s.id, s.name, s.sort_order, s.created_at, s.updated_at,
		m.id, m.first_name, m.last_name
	FROM persons p
	JOIN sections s ON s.id = p.section_id
	LEFT JOIN persons m ON m.id = p.sdm_id`

func scanPerson(row pgx.Row) (*model.Person, error) {
	p := &model.Person{Section: &model.Section{}}
	var sdmID, sdmFirst, sdmLast *string
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.SectionID, &p.SdmID,
		&p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
		&p.Section.ID, &p.Section.Name, &p.Section.SortOrder, &p.Section.CreatedAt, &p.Section.UpdatedAt,
		&sdmID, &sdmFirst, &sdmLast,
	)
	if err != nil {
		return nil, err
	}
	if sdmID != nil {
		p.Sdm = &model.PersonSummary{ID: *sdmID, FirstName: deref(sdmFirst), LastName: deref(sdmLast)}
	}
	return p, nil
}

func (r *personRepo) List(ctx context.Context, filter PersonFilter) ([]*model.Person, error) {
	var conditions []string
	var args []any

	if filter.ActiveOnly {
		conditions = append(conditions, "p.is_active = true")
	}
	if filter.SectionID != "" {
		args = append(args, filter.SectionID)
		conditions = append(conditions, fmt.Sprintf("p.section_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY s.sort_order, p.sort_order, p.last_name`, personSelect, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка сотрудников: %w", err)
	}
	defer rows.Close()

	result := []*model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования сотрудника: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *personRepo) GetByID(ctx context.Context, id string) (*model.Person, error) {
	p, err := scanPerson(r.db.QueryRow(ctx, personSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения сотрудника: %w", err)
	}
	return p, nil
}

func (r *personRepo) Create(ctx context.Context, p *model.Person) error {
	query := `
		INSERT INTO persons (id, first_name, last_name, section_id, sdm_id, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.SectionID, p.SdmID, p.IsActive, p.SortOrder,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return foreignKeyError(err)
		}
		return fmt.Errorf("ошибка создания сотрудника: %w", err)
	}
	return nil
}

func (r *personRepo) Update(ctx context.Context, p *model.Person) error {
	query := `
		UPDATE persons
		SET first_name = $2, last_name = $3, section_id = $4, sdm_id = $5,
			is_active = $6, sort_order = $7
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.SectionID, p.SdmID, p.IsActive, p.SortOrder,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return foreignKeyError(err)
		}
		return fmt.Errorf("ошибка обновления сотрудника: %w", err)
	}
	return nil
}

func (r *personRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE persons SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка деактивации сотрудника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *personRepo) SdmID(ctx context.Context, id string) (*string, error) {
	var sdmID *string
	err := r.db.QueryRow(ctx, `SELECT sdm_id FROM persons WHERE id = $1`, id).Scan(&sdmID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения руководителя: %w", err)
	}
	return sdmID, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
