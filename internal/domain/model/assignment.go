package model

import "time"

// Workload — уровень загрузки сотрудника в день.
type Workload string

// Допустимые уровни загрузки.
const (
	WorkloadRed    Workload = "RED"
	WorkloadYellow Workload = "YELLOW"
	WorkloadGreen  Workload = "GREEN"
)

// Valid проверяет, что значение — один из трёх уровней.
func (w Workload) Valid() bool {
	switch w {
	case WorkloadRed, WorkloadYellow, WorkloadGreen:
		return true
	}
	return false
}

// Assignment — назначение сотрудника на проект в конкретный день.
// Хранится в таблице assignments. На одну пару (сотрудник, дата)
// допускается несколько строк, не более одной с IsPrimary.
type Assignment struct {
	// ID — UUID записи
	ID string
	// PersonID — UUID сотрудника
	PersonID string
	// ProjectID — UUID проекта (projects.id)
	ProjectID string
	// Date — календарный день (полночь UTC)
	Date time.Time
	// IsPrimary — основной проект дня
	IsPrimary bool
	// Workload — уровень загрузки
	Workload Workload
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time

	// Project — краткие данные проекта (заполняется при чтении)
	Project *ProjectSummary
}
