package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/goartstore/planner-module/internal/config"
	"github.com/bigkaa/goartstore/planner-module/internal/database"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool; очистка регистрируется через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("planner_test"),
		postgres.WithUsername("planner"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	t.Setenv("PL_DB_HOST", host)
	t.Setenv("PL_DB_PORT", port.Port())
	t.Setenv("PL_DB_NAME", "planner_test")
	t.Setenv("PL_DB_USER", "planner")
	t.Setenv("PL_DB_PASSWORD", "test-password")
	t.Setenv("PL_DB_SSL_MODE", "disable")
	t.Setenv("PL_TOKEN_SECRET", "integration-token-secret-0123456789")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// seedSection создаёт отдел для тестов.
func seedSection(t *testing.T, repo SectionRepository, name string, order int) *model.Section {
	t.Helper()
	s := &model.Section{ID: uuid.New().String(), Name: name, SortOrder: order}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create(section %q) ошибка: %v", name, err)
	}
	return s
}

// seedPerson создаёт сотрудника для тестов.
func seedPerson(t *testing.T, repo PersonRepository, sectionID, first, last string, order int) *model.Person {
	t.Helper()
	p := &model.Person{
		ID: uuid.New().String(), FirstName: first, LastName: last,
		SectionID: sectionID, IsActive: true, SortOrder: order,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create(person %q) ошибка: %v", last, err)
	}
	return p
}

// seedProject создаёт проект для тестов.
func seedProject(t *testing.T, repo ProjectRepository, projectID, name string) *model.Project {
	t.Helper()
	p := &model.Project{ID: uuid.New().String(), ProjectID: projectID, Name: name, IsActive: true}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create(project %q) ошибка: %v", projectID, err)
	}
	return p
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- Тесты SectionRepository ---

func TestSectionCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sections := NewSectionRepository(pool)
	persons := NewPersonRepository(pool)

	testers := seedSection(t, sections, "Testerzy", 3)
	dev := seedSection(t, sections, "Dev", 2)

	// Дубликат имени — конфликт
	dup := &model.Section{ID: uuid.New().String(), Name: "Dev"}
	if err := sections.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат) ошибка = %v, хотели ErrConflict", err)
	}

	list, err := sections.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 2 || list[0].ID != dev.ID || list[1].ID != testers.ID {
		t.Errorf("List() вернул неверный порядок: %+v", list)
	}

	dev.Name = "Development"
	if err := sections.Update(ctx, dev); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	got, err := sections.GetByID(ctx, dev.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Name != "Development" {
		t.Errorf("Name = %q, хотели Development", got.Name)
	}

	// Отдел с сотрудниками удалить нельзя
	seedPerson(t, persons, dev.ID, "Karol", "Dobosz", 1)
	if err := sections.Delete(ctx, dev.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("Delete(отдел с сотрудниками) ошибка = %v, хотели ErrConflict", err)
	}

	if err := sections.Delete(ctx, testers.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := sections.GetByID(ctx, testers.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(удалённый) ошибка = %v, хотели ErrNotFound", err)
	}
	if err := sections.Delete(ctx, testers.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(удалённый) ошибка = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты PersonRepository ---

func TestPersonListOrderAndSdm(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sections := NewSectionRepository(pool)
	persons := NewPersonRepository(pool)

	serwis := seedSection(t, sections, "Serwis", 1)
	dev := seedSection(t, sections, "Dev", 2)

	jas := seedPerson(t, persons, dev.ID, "Grzegorz", "Jasiński", 2)
	dob := seedPerson(t, persons, dev.ID, "Karol", "Dobosz", 1)
	buch := seedPerson(t, persons, serwis.ID, "Marcin", "Buchcik", 1)

	// Руководитель
	jas.SdmID = &dob.ID
	if err := persons.Update(ctx, jas); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}

	list, err := persons.List(ctx, PersonFilter{})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	wantOrder := []string{buch.ID, dob.ID, jas.ID}
	if len(list) != len(wantOrder) {
		t.Fatalf("List() вернул %d записей, хотели %d", len(list), len(wantOrder))
	}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("List()[%d] = %s %s, нарушен порядок", i, list[i].FirstName, list[i].LastName)
		}
	}
	if list[2].Sdm == nil || list[2].Sdm.ID != dob.ID || list[2].Sdm.LastName != "Dobosz" {
		t.Errorf("Sdm = %+v, хотели Dobosz", list[2].Sdm)
	}
	if list[0].Section == nil || list[0].Section.Name != "Serwis" {
		t.Errorf("Section = %+v, хотели Serwis", list[0].Section)
	}

	sdm, err := persons.SdmID(ctx, jas.ID)
	if err != nil || sdm == nil || *sdm != dob.ID {
		t.Errorf("SdmID() = %v, %v; хотели %s", sdm, err, dob.ID)
	}

	// Деактивация и фильтр активных
	if err := persons.Deactivate(ctx, buch.ID); err != nil {
		t.Fatalf("Deactivate() ошибка: %v", err)
	}
	active, err := persons.List(ctx, PersonFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List(active) ошибка: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("List(active) вернул %d записей, хотели 2", len(active))
	}
	bySection, err := persons.List(ctx, PersonFilter{SectionID: serwis.ID})
	if err != nil {
		t.Fatalf("List(section) ошибка: %v", err)
	}
	if len(bySection) != 1 || bySection[0].IsActive {
		t.Errorf("List(section) = %+v, хотели одного неактивного", bySection)
	}

	// Несуществующий отдел — ErrForeignKey
	orphan := &model.Person{ID: uuid.New().String(), FirstName: "A", LastName: "B", SectionID: uuid.New().String(), IsActive: true}
	if err := persons.Create(ctx, orphan); !errors.Is(err, ErrForeignKey) {
		t.Errorf("Create(неизвестный отдел) ошибка = %v, хотели ErrForeignKey", err)
	}
	var fkErr *ForeignKeyError
	if err := persons.Create(ctx, orphan); !errors.As(err, &fkErr) || fkErr.Column != "section_id" {
		t.Errorf("Create(неизвестный отдел) столбец = %+v, хотели section_id", fkErr)
	}
}

// --- Тесты ProjectRepository ---

func TestProjectCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	projects := NewProjectRepository(pool)

	label := "Orange SOR"
	orange := &model.Project{ID: uuid.New().String(), ProjectID: "IDSM4502", Name: "Orange", Label: &label, IsActive: true}
	if err := projects.Create(ctx, orange); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	seedProject(t, projects, "IDSM4205", "Globitel")

	dup := &model.Project{ID: uuid.New().String(), ProjectID: "IDSM4502", Name: "X", IsActive: true}
	if err := projects.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат projectId) ошибка = %v, хотели ErrConflict", err)
	}

	list, err := projects.List(ctx, false)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Globitel" {
		t.Errorf("List() = %+v, хотели сортировку по имени", list)
	}

	got, err := projects.GetByID(ctx, orange.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Label == nil || *got.Label != "Orange SOR" || got.Color != nil {
		t.Errorf("GetByID() = %+v", got)
	}

	if err := projects.Deactivate(ctx, orange.ID); err != nil {
		t.Fatalf("Deactivate() ошибка: %v", err)
	}
	active, err := projects.List(ctx, true)
	if err != nil {
		t.Fatalf("List(active) ошибка: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("List(active) вернул %d записей, хотели 1", len(active))
	}
	if err := projects.Deactivate(ctx, uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deactivate(неизвестный) ошибка = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты UserRepository ---

func TestUserCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	u := &model.User{ID: uuid.New().String(), Name: "Administrator", Email: "admin@example.com", PasswordHash: "hash1", Role: "ADMIN"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	dup := &model.User{ID: uuid.New().String(), Name: "X", Email: "admin@example.com", PasswordHash: "h", Role: "USER"}
	if err := users.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат email) ошибка = %v, хотели ErrConflict", err)
	}

	got, err := users.GetByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() ошибка: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() = %s, хотели %s", got.ID, u.ID)
	}

	if err := users.UpdatePassword(ctx, u.ID, "hash2"); err != nil {
		t.Fatalf("UpdatePassword() ошибка: %v", err)
	}
	u.Name = "Admin"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if u.PasswordHash != "hash2" {
		t.Errorf("PasswordHash после Update = %q, хотели hash2", u.PasswordHash)
	}

	// Upsert по существующему email не создаёт новую запись
	up := &model.User{ID: uuid.New().String(), Name: "Root", Email: "admin@example.com", PasswordHash: "hash3", Role: "ADMIN"}
	if err := users.Upsert(ctx, up); err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}
	if up.ID != u.ID {
		t.Errorf("Upsert() id = %s, хотели существующий %s", up.ID, u.ID)
	}

	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := users.GetByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(удалённый) ошибка = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты AssignmentRepository ---

func replaceInTx(ctx context.Context, uow AssignmentUnitOfWork, personID string, dates []time.Time, rows []*model.Assignment) error {
	return uow.InTx(ctx, func(repo AssignmentRepository) error {
		if _, err := repo.DeleteByPersonDates(ctx, personID, dates); err != nil {
			return err
		}
		_, err := repo.InsertBatch(ctx, rows)
		return err
	})
}

func assignmentRows(personID string, d time.Time, projectIDs []string, primary string, w model.Workload) []*model.Assignment {
	rows := make([]*model.Assignment, 0, len(projectIDs))
	for _, pid := range projectIDs {
		rows = append(rows, &model.Assignment{
			ID: uuid.New().String(), PersonID: personID, ProjectID: pid,
			Date: d, IsPrimary: pid == primary, Workload: w,
		})
	}
	return rows
}

func TestAssignmentReplaceIdempotentAndAtomic(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sections := NewSectionRepository(pool)
	persons := NewPersonRepository(pool)
	projects := NewProjectRepository(pool)
	assignments := NewAssignmentRepository(pool)
	uow := NewAssignmentUnitOfWork(NewTxRunner(pool))

	dev := seedSection(t, sections, "Dev", 1)
	p1 := seedPerson(t, persons, dev.ID, "Karol", "Dobosz", 1)
	p2 := seedPerson(t, persons, dev.ID, "Marcin", "Miotk", 2)
	projA := seedProject(t, projects, "A", "Alpha")
	projB := seedProject(t, projects, "B", "Beta")

	day := date("2025-06-02")
	other := date("2025-06-03")
	ids := []string{projB.ID, projA.ID}

	// Соседние данные, которые не должны затрагиваться
	if _, err := assignments.InsertBatch(ctx, assignmentRows(p1.ID, other, []string{projA.ID}, projA.ID, model.WorkloadGreen)); err != nil {
		t.Fatalf("InsertBatch() ошибка: %v", err)
	}
	if _, err := assignments.InsertBatch(ctx, assignmentRows(p2.ID, day, []string{projA.ID}, projA.ID, model.WorkloadRed)); err != nil {
		t.Fatalf("InsertBatch() ошибка: %v", err)
	}

	// Двойной вызов с одинаковыми аргументами
	for i := 0; i < 2; i++ {
		rows := assignmentRows(p1.ID, day, ids, projA.ID, model.WorkloadYellow)
		if err := replaceInTx(ctx, uow, p1.ID, []time.Time{day}, rows); err != nil {
			t.Fatalf("replace #%d ошибка: %v", i+1, err)
		}

		got, err := assignments.List(ctx, AssignmentFilter{From: day, To: day, PersonID: &p1.ID})
		if err != nil {
			t.Fatalf("List() ошибка: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("после replace #%d: %d назначений, хотели 2", i+1, len(got))
		}
		if !got[0].IsPrimary || got[0].ProjectID != projA.ID || got[1].IsPrimary {
			t.Errorf("после replace #%d: основной проект должен быть первым и единственным: %+v", i+1, got)
		}
		if got[0].Project == nil || got[0].Project.Name != "Alpha" {
			t.Errorf("Project = %+v, хотели Alpha", got[0].Project)
		}
		for _, a := range got {
			if a.Workload != model.WorkloadYellow {
				t.Errorf("Workload = %s, хотели YELLOW", a.Workload)
			}
		}
	}

	// Неизвестный проект: вставка падает после удаления, транзакция откатывается
	bad := assignmentRows(p1.ID, day, []string{uuid.New().String()}, "", model.WorkloadRed)
	err := replaceInTx(ctx, uow, p1.ID, []time.Time{day}, bad)
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("replace(неизвестный проект) ошибка = %v, хотели ErrForeignKey", err)
	}
	var fkErr *ForeignKeyError
	if !errors.As(err, &fkErr) || fkErr.Column != "project_id" {
		t.Errorf("ForeignKeyError.Column = %+v, хотели project_id", fkErr)
	}
	got, err := assignments.List(ctx, AssignmentFilter{From: day, To: day, PersonID: &p1.ID})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("после отката: %d назначений, хотели прежние 2", len(got))
	}

	// Удаление без вставки затрагивает только p1 на указанную дату
	var deleted int64
	err = uow.InTx(ctx, func(repo AssignmentRepository) error {
		var err error
		deleted, err = repo.DeleteByPersonDates(ctx, p1.ID, []time.Time{day})
		return err
	})
	if err != nil {
		t.Fatalf("DeleteByPersonDates() ошибка: %v", err)
	}
	if deleted != 2 {
		t.Errorf("удалено %d, хотели 2", deleted)
	}

	all, err := assignments.List(ctx, AssignmentFilter{From: day, To: other})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("осталось %d назначений, хотели 2", len(all))
	}
	if all[0].PersonID != p2.ID || !all[0].Date.Equal(day) {
		t.Errorf("all[0] = %+v, хотели назначение p2 на %s", all[0], day)
	}
	if all[1].PersonID != p1.ID || !all[1].Date.Equal(other) {
		t.Errorf("all[1] = %+v, хотели назначение p1 на %s", all[1], other)
	}
}

// Пересекающиеся замены одного сотрудника не блокируются схемой:
// уникальности основного проекта на (сотрудник, день) в БД нет.
func TestAssignmentOverlappingWritesNotConstrained(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sections := NewSectionRepository(pool)
	persons := NewPersonRepository(pool)
	projects := NewProjectRepository(pool)
	assignments := NewAssignmentRepository(pool)

	dev := seedSection(t, sections, "Dev", 1)
	p := seedPerson(t, persons, dev.ID, "Ewa", "Lis", 1)
	projA := seedProject(t, projects, "A", "Alpha")
	projB := seedProject(t, projects, "B", "Beta")
	day := date("2025-06-02")

	for _, pid := range []string{projA.ID, projB.ID} {
		rows := assignmentRows(p.ID, day, []string{pid}, pid, model.WorkloadRed)
		if _, err := assignments.InsertBatch(ctx, rows); err != nil {
			t.Fatalf("InsertBatch(%s) ошибка: %v", pid, err)
		}
	}

	got, err := assignments.List(ctx, AssignmentFilter{From: day, To: day, PersonID: &p.ID})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	primaries := 0
	for _, a := range got {
		if a.IsPrimary {
			primaries++
		}
	}
	if len(got) != 2 || primaries != 2 {
		t.Errorf("назначений = %d, основных = %d; хотели 2 и 2", len(got), primaries)
	}
}
