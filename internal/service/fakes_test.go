package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Назначения ---

// fakeAssignmentStore — хранилище назначений в памяти с транзакциями
// «всё или ничего».
type fakeAssignmentStore struct {
	mu       sync.Mutex
	persons  map[string]bool
	projects map[string]string // id → name
	rows     []*model.Assignment
	// failAfterDelete — ошибка хранилища после удаления (до вставки)
	failAfterDelete error
}

func newFakeAssignmentStore(persons []string, projects map[string]string) *fakeAssignmentStore {
	s := &fakeAssignmentStore{persons: map[string]bool{}, projects: projects}
	for _, p := range persons {
		s.persons[p] = true
	}
	return s
}

func (s *fakeAssignmentStore) InTx(_ context.Context, fn func(repository.AssignmentRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := append([]*model.Assignment(nil), s.rows...)
	if err := fn(&fakeAssignmentRepo{store: s, rows: &work}); err != nil {
		return err
	}
	s.rows = work
	return nil
}

func (s *fakeAssignmentStore) repo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{store: s, rows: &s.rows}
}

type fakeAssignmentRepo struct {
	store *fakeAssignmentStore
	rows  *[]*model.Assignment
}

func (r *fakeAssignmentRepo) DeleteByPersonDates(_ context.Context, personID string, dates []time.Time) (int64, error) {
	keys := map[string]bool{}
	for _, d := range dates {
		keys[calendar.DateKey(d)] = true
	}

	kept := (*r.rows)[:0:0]
	var deleted int64
	for _, a := range *r.rows {
		if a.PersonID == personID && keys[calendar.DateKey(a.Date)] {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	*r.rows = kept

	if r.store.failAfterDelete != nil {
		return 0, r.store.failAfterDelete
	}
	return deleted, nil
}

func (r *fakeAssignmentRepo) InsertBatch(_ context.Context, rows []*model.Assignment) (int64, error) {
	for _, a := range rows {
		if !r.store.persons[a.PersonID] {
			return 0, &repository.ForeignKeyError{Column: "person_id"}
		}
		if _, ok := r.store.projects[a.ProjectID]; !ok {
			return 0, &repository.ForeignKeyError{Column: "project_id"}
		}
		*r.rows = append(*r.rows, a)
	}
	return int64(len(rows)), nil
}

func (r *fakeAssignmentRepo) List(_ context.Context, f repository.AssignmentFilter) ([]*model.Assignment, error) {
	result := []*model.Assignment{}
	for _, a := range *r.rows {
		if a.Date.Before(f.From) || a.Date.After(f.To) {
			continue
		}
		if f.PersonID != nil && a.PersonID != *f.PersonID {
			continue
		}
		cp := *a
		cp.Project = &model.ProjectSummary{ID: a.ProjectID, Name: r.store.projects[a.ProjectID]}
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		return a.Project.Name < b.Project.Name
	})
	return result, nil
}

// --- Сотрудники ---

type fakePersonRepo struct {
	persons map[string]*model.Person
	// sections — существующие отделы
	sections map[string]bool
}

func newFakePersonRepo(sections ...string) *fakePersonRepo {
	r := &fakePersonRepo{persons: map[string]*model.Person{}, sections: map[string]bool{}}
	for _, s := range sections {
		r.sections[s] = true
	}
	return r
}

func (r *fakePersonRepo) List(_ context.Context, f repository.PersonFilter) ([]*model.Person, error) {
	result := []*model.Person{}
	for _, p := range r.persons {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.SectionID != "" && p.SectionID != f.SectionID {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastName < result[j].LastName })
	return result, nil
}

func (r *fakePersonRepo) GetByID(_ context.Context, id string) (*model.Person, error) {
	p, ok := r.persons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePersonRepo) check(p *model.Person) error {
	if !r.sections[p.SectionID] {
		return &repository.ForeignKeyError{Column: "section_id"}
	}
	if p.SdmID != nil {
		if _, ok := r.persons[*p.SdmID]; !ok {
			return &repository.ForeignKeyError{Column: "sdm_id"}
		}
	}
	return nil
}

func (r *fakePersonRepo) Create(_ context.Context, p *model.Person) error {
	if err := r.check(p); err != nil {
		return err
	}
	cp := *p
	r.persons[p.ID] = &cp
	return nil
}

func (r *fakePersonRepo) Update(_ context.Context, p *model.Person) error {
	if _, ok := r.persons[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.check(p); err != nil {
		return err
	}
	cp := *p
	r.persons[p.ID] = &cp
	return nil
}

func (r *fakePersonRepo) Deactivate(_ context.Context, id string) error {
	p, ok := r.persons[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (r *fakePersonRepo) SdmID(_ context.Context, id string) (*string, error) {
	p, ok := r.persons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.SdmID, nil
}

// --- Отделы ---

type fakeSectionRepo struct {
	sections map[string]*model.Section
	// inUse — отделы, на которые ссылаются сотрудники
	inUse map[string]bool
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: map[string]*model.Section{}, inUse: map[string]bool{}}
}

func (r *fakeSectionRepo) List(_ context.Context) ([]*model.Section, error) {
	result := []*model.Section{}
	for _, s := range r.sections {
		cp := *s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *fakeSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	s, ok := r.sections[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSectionRepo) nameTaken(id, name string) bool {
	for _, s := range r.sections {
		if s.ID != id && s.Name == name {
			return true
		}
	}
	return false
}

func (r *fakeSectionRepo) Create(_ context.Context, s *model.Section) error {
	if r.nameTaken(s.ID, s.Name) {
		return repository.ErrConflict
	}
	cp := *s
	r.sections[s.ID] = &cp
	return nil
}

func (r *fakeSectionRepo) Update(_ context.Context, s *model.Section) error {
	if _, ok := r.sections[s.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(s.ID, s.Name) {
		return repository.ErrConflict
	}
	cp := *s
	r.sections[s.ID] = &cp
	return nil
}

func (r *fakeSectionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sections[id]; !ok {
		return repository.ErrNotFound
	}
	if r.inUse[id] {
		return repository.ErrConflict
	}
	delete(r.sections, id)
	return nil
}

// --- Проекты ---

type fakeProjectRepo struct {
	projects map[string]*model.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*model.Project{}}
}

func (r *fakeProjectRepo) List(_ context.Context, activeOnly bool) ([]*model.Project, error) {
	result := []*model.Project{}
	for _, p := range r.projects {
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) businessIDTaken(id, projectID string) bool {
	for _, p := range r.projects {
		if p.ID != id && p.ProjectID == projectID {
			return true
		}
	}
	return false
}

func (r *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	if r.businessIDTaken(p.ID, p.ProjectID) {
		return repository.ErrConflict
	}
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.businessIDTaken(p.ID, p.ProjectID) {
		return repository.ErrConflict
	}
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Deactivate(_ context.Context, id string) error {
	p, ok := r.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// --- Пользователи ---

type fakeUserRepo struct {
	users map[string]*model.User
	// failGet — ошибка хранилища для GetByEmail
	failGet error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	result := []*model.User{}
	for _, u := range r.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) emailTaken(id, email string) bool {
	for _, u := range r.users {
		if u.ID != id && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if r.emailTaken(u.ID, u.Email) {
		return repository.ErrConflict
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	old, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTaken(u.ID, u.Email) {
		return repository.ErrConflict
	}
	u.PasswordHash = old.PasswordHash
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			u.ID = existing.ID
			break
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

var errStorage = errors.New("хранилище недоступно")
