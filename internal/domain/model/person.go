package model

import "time"

// Person — сотрудник, которому назначаются проекты.
// Хранится в таблице persons. Физически не удаляется: IsActive = false.
type Person struct {
	// ID — UUID записи
	ID string
	// FirstName — имя
	FirstName string
	// LastName — фамилия
	LastName string
	// SectionID — UUID отдела
	SectionID string
	// SdmID — UUID руководителя (SDM), nil если не назначен
	SdmID *string
	// IsActive — признак активности
	IsActive bool
	// SortOrder — порядок внутри отдела
	SortOrder int
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time

	// Section — отдел (заполняется при чтении списка)
	Section *Section
	// Sdm — краткие данные руководителя (заполняется при чтении)
	Sdm *PersonSummary
}

// PersonSummary — краткие данные сотрудника для вложения в ответы.
type PersonSummary struct {
	ID        string
	FirstName string
	LastName  string
}
