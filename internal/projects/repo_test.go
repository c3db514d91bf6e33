package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/storage/storagetest"
)

func TestProjectCRUD(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	repo := NewRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, owner, "alpha")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "alpha" || created.OwnerID != owner {
		t.Errorf("created = %+v", created)
	}

	if err := repo.Rename(ctx, created.ID, "beta"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	// Renaming to the current name matches the row without changing it; an
	// existing project must not be reported as missing.
	if err := repo.Rename(ctx, created.ID, "beta"); err != nil {
		t.Errorf("Rename to current name = %v, want nil", err)
	}
	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "beta" {
		t.Errorf("name = %q, want beta", got.Name)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestProjectMissing(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if err := repo.Rename(ctx, 99, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Rename = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}

func TestListOwned(t *testing.T) {
	db := storagetest.Open(t)
	owner := storagetest.SeedUser(t, db, "owner@example.com", false)
	other := storagetest.SeedUser(t, db, "other@example.com", false)
	repo := NewRepo(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, owner, "alpha")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, other, "theirs"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	owned, err := repo.ListOwned(ctx, owner)
	if err != nil {
		t.Fatalf("ListOwned: %v", err)
	}
	if len(owned) != 1 || owned[0].ProjectID != first.ID {
		t.Errorf("ListOwned = %+v, want only project %d", owned, first.ID)
	}
}
