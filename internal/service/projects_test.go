package service

import (
	"context"
	"errors"
	"testing"
)

func TestProjectService(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := NewProjectService(repo, testLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{
		ProjectID: strPtr("PRJ-1"),
		Name:      strPtr("Alpha"),
		Label:     strPtr("A"),
		Color:     strPtr("#FF8800"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.IsActive || p.Label == nil || *p.Label != "A" || p.Color == nil {
		t.Errorf("Create = %+v", p)
	}

	if _, err := svc.Create(ctx, ProjectInput{ProjectID: strPtr("PRJ-1"), Name: strPtr("Dup")}); !errors.Is(err, ErrConflict) {
		t.Errorf("дубликат projectId: ожидается ErrConflict, получено %v", err)
	}

	// Пустые label и color очищают значения
	upd, err := svc.Update(ctx, p.ID, ProjectInput{Label: strPtr(""), Color: strPtr("")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Label != nil || upd.Color != nil || upd.Name != "Alpha" {
		t.Errorf("Update = %+v", upd)
	}

	if err := svc.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	active, _ := svc.List(ctx, true)
	all, _ := svc.List(ctx, false)
	if len(active) != 0 || len(all) != 1 {
		t.Errorf("active=%d all=%d, ожидается 0 и 1", len(active), len(all))
	}
}

func TestProjectService_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    ProjectInput
		field string
	}{
		{"без projectId", ProjectInput{Name: strPtr("Alpha")}, "projectId"},
		{"без имени", ProjectInput{ProjectID: strPtr("P")}, "name"},
		{"цвет без решётки", ProjectInput{ProjectID: strPtr("P"), Name: strPtr("A"), Color: strPtr("FF8800")}, "color"},
		{"короткий цвет", ProjectInput{ProjectID: strPtr("P"), Name: strPtr("A"), Color: strPtr("#F80")}, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProjectService(newFakeProjectRepo(), testLogger())
			_, err := svc.Create(context.Background(), tt.in)
			if _, ok := fieldsOf(t, err)[tt.field]; !ok {
				t.Errorf("нет ошибки поля %q: %v", tt.field, err)
			}
		})
	}
}

func TestProjectService_NotFound(t *testing.T) {
	svc := NewProjectService(newFakeProjectRepo(), testLogger())
	ctx := context.Background()

	if _, err := svc.Get(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: ожидается ErrNotFound, получено %v", err)
	}
	if _, err := svc.Update(ctx, "bad", ProjectInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: ожидается ErrNotFound, получено %v", err)
	}
	if err := svc.Deactivate(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deactivate: ожидается ErrNotFound, получено %v", err)
	}
}
