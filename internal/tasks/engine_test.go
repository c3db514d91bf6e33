package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/membership"
	"github.com/zwaTOx/MultiTasker/internal/storage/storagetest"
)

func TestCreateDefaults(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	id, err := engine.Create(ctx, owner, project, CreateRequest{Name: "write report"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	task, err := engine.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if task.Status != domain.StatusAssigned {
		t.Errorf("status = %q, want assigned", task.Status)
	}
	if task.Indicator != domain.IndicatorGreen {
		t.Errorf("indicator = %q, want green", task.Indicator)
	}
	if task.OwnerID != owner || task.ProjectID != project {
		t.Errorf("task = %+v, want owner %d project %d", task, owner, project)
	}
}

func TestCreateRejectsBadIndicator(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)

	_, err := engine.Create(context.Background(), owner, project, CreateRequest{
		Name: "x", Indicator: "purple",
	})
	if err == nil {
		t.Fatal("Create accepted an unknown indicator")
	}
}

func TestGetMissing(t *testing.T) {
	db := storagetest.Open(t)
	engine := NewEngine(db)

	if _, err := engine.Get(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	id, err := engine.Create(ctx, owner, project, CreateRequest{Name: "draft", Description: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before, err := engine.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	engine.now = func() time.Time { return before.LastChange.Add(time.Minute) }
	status := domain.StatusDone
	if err := engine.Update(ctx, id, UpdateRequest{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after, err := engine.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.Status != domain.StatusDone {
		t.Errorf("status = %q, want done", after.Status)
	}
	if after.Name != "draft" || after.Description != "v1" {
		t.Errorf("untouched fields changed: %+v", after)
	}
	if !after.LastChange.After(before.LastChange) {
		t.Errorf("last_change not bumped: %v -> %v", before.LastChange, after.LastChange)
	}
}

func TestUpdateRejectsBadStatus(t *testing.T) {
	db := storagetest.Open(t)
	engine := NewEngine(db)

	bad := domain.TaskStatus("cancelled")
	if err := engine.Update(context.Background(), 1, UpdateRequest{Status: &bad}); err == nil {
		t.Fatal("Update accepted an unknown status")
	}
}

func TestUpdateMissing(t *testing.T) {
	db := storagetest.Open(t)
	engine := NewEngine(db)

	name := "renamed"
	if err := engine.Update(context.Background(), 99, UpdateRequest{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	id, err := engine.Create(ctx, owner, project, CreateRequest{Name: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := engine.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := engine.Delete(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestGetDetail(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	performer := storagetest.SeedUser(t, db, "performer@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	id, err := engine.Create(ctx, owner, project, CreateRequest{
		Name: "review", PerformerID: &performer,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	detail, err := engine.GetDetail(ctx, id)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.AuthorEmail != "owner@example.com" {
		t.Errorf("author email = %q", detail.AuthorEmail)
	}
	if detail.ProjectName != "alpha" {
		t.Errorf("project name = %q", detail.ProjectName)
	}
	if detail.PerformerEmail == nil || *detail.PerformerEmail != "performer@example.com" {
		t.Errorf("performer email = %v", detail.PerformerEmail)
	}
}

// seedTask inserts directly so list tests control every column.
func seedTask(t *testing.T, db *sql.DB, name string, project, owner int64, status domain.TaskStatus,
	indicator domain.TaskIndicator, performer *int64, deadline *time.Time, createdAt time.Time) int64 {
	t.Helper()
	res, err := db.Exec(`
        INSERT INTO tasks (name, description, status, indicator, project_id,
            owner_id, performer_id, parent_task_id, deadline, created_at, last_change)
        VALUES (?, '', ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		name, string(status), string(indicator), project, owner,
		nullableID(performer), nullableTime(deadline), createdAt, createdAt)
	if err != nil {
		t.Fatalf("seed task %q: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestListAccessibleVisibility(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	member := storagetest.SeedUser(t, db, "member@example.com", false)
	admin := storagetest.SeedUser(t, db, "admin@example.com", true)
	visible := storagetest.SeedProject(t, db, "visible", owner)
	hidden := storagetest.SeedProject(t, db, "hidden", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	if err := membership.NewStore(db).Add(ctx, member, visible, nil); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	now := time.Now().UTC()
	seedTask(t, db, "in visible", visible, owner, domain.StatusAssigned, domain.IndicatorGreen, nil, nil, now)
	seedTask(t, db, "in hidden", hidden, owner, domain.StatusAssigned, domain.IndicatorGreen, nil, nil, now)

	got, err := engine.ListAccessible(ctx, member, Filter{})
	if err != nil {
		t.Fatalf("ListAccessible(member): %v", err)
	}
	if len(got) != 1 || got[0].Name != "in visible" {
		t.Errorf("member sees %+v, want only the joined project's task", got)
	}

	got, err = engine.ListAccessible(ctx, admin, Filter{})
	if err != nil {
		t.Fatalf("ListAccessible(admin): %v", err)
	}
	if len(got) != 2 {
		t.Errorf("admin sees %d tasks, want 2", len(got))
	}
}

func TestListAccessibleFilters(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	member := storagetest.SeedUser(t, db, "member@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	if err := membership.NewStore(db).Add(ctx, member, project, nil); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	now := time.Now().UTC()
	seedTask(t, db, "Fix login bug", project, owner, domain.StatusInProgress, domain.IndicatorRed, &member, nil, now)
	seedTask(t, db, "Fix logout bug", project, owner, domain.StatusDone, domain.IndicatorRed, nil, nil, now)
	seedTask(t, db, "Write docs", project, owner, domain.StatusInProgress, domain.IndicatorGreen, nil, nil, now)

	// Predicates combine with AND.
	got, err := engine.ListAccessible(ctx, member, Filter{
		Status:    []domain.TaskStatus{domain.StatusInProgress},
		Indicator: []domain.TaskIndicator{domain.IndicatorRed},
	})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Fix login bug" {
		t.Errorf("status+indicator filter got %+v", got)
	}

	// Name match is a case-insensitive substring.
	got, err = engine.ListAccessible(ctx, member, Filter{Name: "fix log"})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("name filter got %d tasks, want 2", len(got))
	}

	got, err = engine.ListAccessible(ctx, member, Filter{AssignedToMe: true})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Fix login bug" {
		t.Errorf("assigned-to-me filter got %+v", got)
	}
}

func TestListAccessibleSort(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	member := storagetest.SeedUser(t, db, "member@example.com", false)
	project := storagetest.SeedProject(t, db, "alpha", owner)
	engine := NewEngine(db)
	ctx := context.Background()

	if err := membership.NewStore(db).Add(ctx, member, project, nil); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	late := base.Add(48 * time.Hour)
	soon := base.Add(2 * time.Hour)
	seedTask(t, db, "late", project, owner, domain.StatusAssigned, domain.IndicatorGreen, nil, &late, base)
	seedTask(t, db, "soon", project, owner, domain.StatusAssigned, domain.IndicatorGreen, nil, &soon, base.Add(time.Hour))
	seedTask(t, db, "also soon", project, owner, domain.StatusAssigned, domain.IndicatorGreen, nil, &soon, base.Add(2*time.Hour))

	got, err := engine.ListAccessible(ctx, member, Filter{SortBy: "deadline", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d tasks, want 3", len(got))
	}
	// Equal deadlines tie-break on id ascending.
	want := []string{"late", "soon", "also soon"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}

	got, err = engine.ListAccessible(ctx, member, Filter{SortBy: "created_at"})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	want = []string{"late", "soon", "also soon"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("created_at asc position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestFilterValidate(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		ok     bool
	}{
		{"empty", Filter{}, true},
		{"valid", Filter{Status: []domain.TaskStatus{domain.StatusDone}, SortBy: "deadline", SortOrder: "desc"}, true},
		{"bad status", Filter{Status: []domain.TaskStatus{"cancelled"}}, false},
		{"bad indicator", Filter{Indicator: []domain.TaskIndicator{"purple"}}, false},
		{"bad sort key", Filter{SortBy: "name"}, false},
		{"bad sort order", Filter{SortBy: "deadline", SortOrder: "sideways"}, false},
	}
	for _, tc := range cases {
		err := tc.filter.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: Validate = %v, want nil", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: Validate accepted an invalid filter", tc.name)
		}
	}
}
