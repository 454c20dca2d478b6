package model

import "time"

// Project — проект, на который назначаются сотрудники.
// Хранится в таблице projects. Физически не удаляется: IsActive = false.
type Project struct {
	// ID — UUID записи
	ID string
	// ProjectID — бизнес-идентификатор проекта (уникальный)
	ProjectID string
	// Name — название
	Name string
	// Label — короткая метка для ячеек сетки (опционально)
	Label *string
	// Color — цвет в формате #RRGGBB (опционально)
	Color *string
	// IsActive — признак активности
	IsActive bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// ProjectSummary — краткие данные проекта, вкладываемые в назначение.
type ProjectSummary struct {
	ID        string
	ProjectID string
	Name      string
	Label     *string
	Color     *string
}
