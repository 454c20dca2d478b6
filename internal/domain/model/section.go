package model

import "time"

// Section — отдел, группирующий сотрудников в сетке планировщика.
// Хранится в таблице sections.
type Section struct {
	// ID — UUID записи
	ID string
	// Name — название (уникальное)
	Name string
	// SortOrder — порядок отображения
	SortOrder int
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
