package users

import (
	"context"
	"errors"
	"testing"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/storage/storagetest"
)

func TestCreateAndLookup(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "alice@example.com", "digest", "Alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	byLogin, err := repo.GetByLogin(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByLogin: %v", err)
	}
	if byID.ID != byLogin.ID || byID.Login != "alice@example.com" {
		t.Errorf("lookups disagree: %+v vs %+v", byID, byLogin)
	}
	if !byID.IsVerified {
		t.Error("registered user should be verified")
	}

	exists, err := repo.Exists(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("Exists = false for a registered login")
	}
}

func TestGetMissingUser(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)

	if _, err := repo.GetByLogin(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByLogin = %v, want ErrNotFound", err)
	}
}

func TestPlaceholderLifecycle(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	placeholder, err := repo.CreateUnverified(ctx, "invited@example.com")
	if err != nil {
		t.Fatalf("CreateUnverified: %v", err)
	}
	if placeholder.IsVerified {
		t.Fatal("placeholder created verified")
	}

	// Repeating the invite resolves to the same account.
	again, err := repo.CreateUnverified(ctx, "invited@example.com")
	if err != nil {
		t.Fatalf("CreateUnverified again: %v", err)
	}
	if again.ID != placeholder.ID {
		t.Errorf("second call created user %d, want %d", again.ID, placeholder.ID)
	}

	// Registration claims the placeholder instead of duplicating it.
	if err := repo.SetPassword(ctx, placeholder.ID, "digest"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	claimed, err := repo.GetByID(ctx, placeholder.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !claimed.IsVerified {
		t.Error("claimed account still unverified")
	}
	if claimed.HashedPassword != "digest" {
		t.Errorf("credential = %q, want the new digest", claimed.HashedPassword)
	}
}

func TestSetPasswordMissingUser(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)

	if err := repo.SetPassword(context.Background(), 99, "digest"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetPassword = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	db := storagetest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	storagetest.SeedUser(t, db, "a@example.com", false)
	storagetest.SeedUser(t, db, "b@example.com", true)

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Login != "a@example.com" || users[1].Login != "b@example.com" {
		t.Errorf("unexpected order: %+v", users)
	}
}
