package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
)

const (
	personA  = "11111111-1111-4111-8111-111111111111"
	personB  = "22222222-2222-4222-8222-222222222222"
	projectX = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	projectY = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	missing  = "99999999-9999-4999-8999-999999999999"
)

func newTestAssignmentService() (*AssignmentService, *fakeAssignmentStore) {
	store := newFakeAssignmentStore(
		[]string{personA, personB},
		map[string]string{projectX: "Alpha", projectY: "Beta"},
	)
	return NewAssignmentService(store, store.repo(), testLogger()), store
}

func validReplace() ReplaceInput {
	return ReplaceInput{
		PersonID:         personA,
		Dates:            []string{"2025-06-02", "2025-06-03"},
		ProjectIDs:       []string{projectX, projectY},
		PrimaryProjectID: projectX,
		Workload:         "GREEN",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидается *ValidationError, получено %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("errors.Is(err, ErrValidation) = false")
	}
	return verr.Fields
}

func TestReplace_CrossProduct(t *testing.T) {
	svc, store := newTestAssignmentService()

	n, err := svc.Replace(context.Background(), validReplace())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 4 || len(store.rows) != 4 {
		t.Fatalf("создано %d (в хранилище %d), ожидается 4", n, len(store.rows))
	}

	pairs := map[string]bool{}
	for _, a := range store.rows {
		if a.PersonID != personA || a.Workload != "GREEN" {
			t.Errorf("неверная запись: %+v", a)
		}
		if a.IsPrimary != (a.ProjectID == projectX) {
			t.Errorf("IsPrimary = %v для проекта %s", a.IsPrimary, a.ProjectID)
		}
		pairs[calendar.DateKey(a.Date)+"/"+a.ProjectID] = true
	}
	if len(pairs) != 4 {
		t.Errorf("пары (дата, проект) не уникальны: %v", pairs)
	}
}

func TestReplace_IsIdempotent(t *testing.T) {
	svc, store := newTestAssignmentService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Replace(ctx, validReplace()); err != nil {
			t.Fatalf("Replace #%d: %v", i+1, err)
		}
	}
	if len(store.rows) != 4 {
		t.Errorf("после двух одинаковых замен %d записей, ожидается 4", len(store.rows))
	}
}

func TestReplace_ReplacesOnlyGivenPersonAndDates(t *testing.T) {
	svc, store := newTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.Replace(ctx, validReplace()); err != nil {
		t.Fatal(err)
	}
	other := validReplace()
	other.PersonID = personB
	if _, err := svc.Replace(ctx, other); err != nil {
		t.Fatal(err)
	}

	in := validReplace()
	in.Dates = []string{"2025-06-03"}
	in.ProjectIDs = []string{projectY}
	in.PrimaryProjectID = projectY
	in.Workload = "RED"
	if n, err := svc.Replace(ctx, in); err != nil || n != 1 {
		t.Fatalf("Replace = %d, %v", n, err)
	}

	var a2, a3, b int
	for _, a := range store.rows {
		switch {
		case a.PersonID == personB:
			b++
		case calendar.DateKey(a.Date) == "2025-06-02":
			a2++
		case calendar.DateKey(a.Date) == "2025-06-03":
			a3++
			if a.ProjectID != projectY || a.Workload != "RED" || !a.IsPrimary {
				t.Errorf("замена 03.06 не применена: %+v", a)
			}
		}
	}
	if a2 != 2 || a3 != 1 || b != 4 {
		t.Errorf("A 02.06=%d (2), A 03.06=%d (1), B=%d (4)", a2, a3, b)
	}
}

func TestReplace_NoDates(t *testing.T) {
	svc, store := newTestAssignmentService()
	ctx := context.Background()

	in := validReplace()
	if _, err := svc.Replace(ctx, in); err != nil {
		t.Fatal(err)
	}
	before := len(store.rows)

	for _, dates := range [][]string{nil, {}} {
		in.Dates = dates
		n, err := svc.Replace(ctx, in)
		if err != nil {
			t.Fatalf("Replace без дат: %v", err)
		}
		if n != 0 {
			t.Errorf("Replace = %d, ожидается 0", n)
		}
	}
	if len(store.rows) != before {
		t.Errorf("назначений = %d, ожидается %d", len(store.rows), before)
	}
}

func TestReplace_DuplicatesCollapsed(t *testing.T) {
	svc, _ := newTestAssignmentService()

	in := validReplace()
	in.Dates = []string{"2025-06-02", "2025-06-02"}
	in.ProjectIDs = []string{projectX, projectX}
	n, err := svc.Replace(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Replace = %d, ожидается 1", n)
	}
}

func TestReplace_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*ReplaceInput)
		field string
	}{
		{"пустой сотрудник", func(in *ReplaceInput) { in.PersonID = "" }, "personId"},
		{"не UUID", func(in *ReplaceInput) { in.PersonID = "42" }, "personId"},
		{"некорректная дата", func(in *ReplaceInput) { in.Dates = []string{"2025-02-30"} }, "dates"},
		{"нет проектов", func(in *ReplaceInput) { in.ProjectIDs = nil }, "projectIds"},
		{"проект не UUID", func(in *ReplaceInput) { in.ProjectIDs = []string{"x"}; in.PrimaryProjectID = "x" }, "projectIds"},
		{"основной вне списка", func(in *ReplaceInput) { in.PrimaryProjectID = missing }, "primaryProjectId"},
		{"загрузка", func(in *ReplaceInput) { in.Workload = "BLUE" }, "workload"},
		{"загрузка в нижнем регистре", func(in *ReplaceInput) { in.Workload = "green" }, "workload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestAssignmentService()
			in := validReplace()
			tt.edit(&in)

			_, err := svc.Replace(context.Background(), in)
			fields := fieldsOf(t, err)
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("нет ошибки поля %q: %v", tt.field, fields)
			}
			if len(store.rows) != 0 {
				t.Errorf("при ошибке валидации записано %d назначений", len(store.rows))
			}
		})
	}
}

func TestReplace_UnknownReferencesAreValidationErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("проект", func(t *testing.T) {
		svc, store := newTestAssignmentService()
		if _, err := svc.Replace(ctx, validReplace()); err != nil {
			t.Fatal(err)
		}
		before := len(store.rows)

		in := validReplace()
		in.ProjectIDs = []string{projectX, missing}
		_, err := svc.Replace(ctx, in)
		if _, ok := fieldsOf(t, err)["projectIds"]; !ok {
			t.Errorf("ожидается ошибка поля projectIds: %v", err)
		}
		// Удаление в той же транзакции откатывается
		if len(store.rows) != before {
			t.Errorf("частичное состояние: %d записей, ожидается %d", len(store.rows), before)
		}
	})

	t.Run("сотрудник", func(t *testing.T) {
		svc, _ := newTestAssignmentService()
		in := validReplace()
		in.PersonID = missing
		_, err := svc.Replace(ctx, in)
		if _, ok := fieldsOf(t, err)["personId"]; !ok {
			t.Errorf("ожидается ошибка поля personId: %v", err)
		}
	})
}

func TestReplace_StorageErrorRollsBack(t *testing.T) {
	svc, store := newTestAssignmentService()
	ctx := context.Background()
	if _, err := svc.Replace(ctx, validReplace()); err != nil {
		t.Fatal(err)
	}

	store.failAfterDelete = errStorage
	_, err := svc.Replace(ctx, validReplace())
	if !errors.Is(err, errStorage) || errors.Is(err, ErrValidation) {
		t.Fatalf("ожидается ошибка хранилища, получено %v", err)
	}
	if len(store.rows) != 4 {
		t.Errorf("после отката %d записей, ожидается 4", len(store.rows))
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestAssignmentService()
	ctx := context.Background()
	if _, err := svc.Replace(ctx, validReplace()); err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.Delete(ctx, personA, []string{"2025-06-02", "2025-06-09"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 2 || len(store.rows) != 2 {
		t.Errorf("удалено %d, осталось %d; ожидается 2 и 2", deleted, len(store.rows))
	}

	if _, err := svc.Delete(ctx, "bad", []string{"x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидается ErrValidation, получено %v", err)
	}
}

func TestList(t *testing.T) {
	svc, _ := newTestAssignmentService()
	ctx := context.Background()

	in := validReplace()
	in.PrimaryProjectID = projectY
	if _, err := svc.Replace(ctx, in); err != nil {
		t.Fatal(err)
	}

	from := calendar.Date(2025, time.June, 1)
	to := calendar.Date(2025, time.June, 30)
	list, err := svc.List(ctx, from, to, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("List вернул %d записей, ожидается 4", len(list))
	}
	// Основной проект первым внутри даты
	if list[0].ProjectID != projectY || !list[0].IsPrimary || list[1].ProjectID != projectX {
		t.Errorf("неверный порядок: %s, %s", list[0].Project.Name, list[1].Project.Name)
	}
	if calendar.DateKey(list[2].Date) != "2025-06-03" {
		t.Errorf("list[2].Date = %s", calendar.DateKey(list[2].Date))
	}

	pid := personB
	if list, err := svc.List(ctx, from, to, &pid); err != nil || len(list) != 0 {
		t.Errorf("List(personB) = %d, %v", len(list), err)
	}
}

func TestList_Validation(t *testing.T) {
	svc, _ := newTestAssignmentService()
	ctx := context.Background()
	d := calendar.Date(2025, time.June, 10)

	if _, err := svc.List(ctx, d, d.AddDate(0, 0, -1), nil); fieldsOf(t, err)["dateFrom"] == "" {
		t.Error("ожидается ошибка поля dateFrom")
	}
	if _, err := svc.List(ctx, d, d.AddDate(0, 0, MaxListRangeDays+1), nil); fieldsOf(t, err)["dateTo"] == "" {
		t.Error("ожидается ошибка поля dateTo")
	}
	if _, err := svc.List(ctx, d, d.AddDate(0, 0, MaxListRangeDays), nil); err != nil {
		t.Errorf("период ровно %d дней отклонён: %v", MaxListRangeDays, err)
	}
	if _, err := svc.List(ctx, d, d, nil); err != nil {
		t.Errorf("однодневный период отклонён: %v", err)
	}
}
