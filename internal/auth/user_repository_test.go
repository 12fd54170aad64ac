package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates an in-memory SQLite database with the users table.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			preferences TEXT
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	prefs := `{"theme":"dark"}`
	user := &User{
		Username:     "testuser",
		PasswordHash: hash,
		Role:         RoleUser,
		Preferences:  &prefs,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("Username = %q, want testuser", got.Username)
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	if got.Preferences == nil || *got.Preferences != prefs {
		t.Errorf("Preferences = %v, want %q", got.Preferences, prefs)
	}
	if got.PasswordHash != hash {
		t.Error("PasswordHash not round-tripped")
	}
}

func TestUserRepository_Create_Validation(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("rejects invalid username", func(t *testing.T) {
		err := repo.Create(ctx, &User{Username: "bad user!", PasswordHash: "x"})
		if !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("Create() error = %v, want ErrInvalidUsername", err)
		}
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		if err := repo.Create(ctx, &User{Username: "dupe", PasswordHash: "x"}); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}

		err := repo.Create(ctx, &User{Username: "dupe", PasswordHash: "x"})
		if !errors.Is(err, ErrUsernameExists) {
			t.Errorf("Create() error = %v, want ErrUsernameExists", err)
		}
	})

	t.Run("defaults role to user", func(t *testing.T) {
		u := &User{Username: "norole", PasswordHash: "x"}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if u.Role != RoleUser {
			t.Errorf("Role = %q, want %q", u.Role, RoleUser)
		}
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &User{Username: "alice", PasswordHash: "x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}

	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername(nobody) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdatePreferences(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &User{Username: "bob", PasswordHash: "x"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdatePreferences(ctx, u.ID, `{"lang":"en"}`); err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Preferences == nil || *got.Preferences != `{"lang":"en"}` {
		t.Errorf("Preferences = %v, want lang en", got.Preferences)
	}

	if err := repo.UpdatePreferences(ctx, 999, "{}"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePreferences(999) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &User{Username: "carol", PasswordHash: "old"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdatePassword(ctx, u.ID, "new"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, u.ID)
	if got.PasswordHash != "new" {
		t.Errorf("PasswordHash = %q, want new", got.PasswordHash)
	}

	if err := repo.UpdatePassword(ctx, 999, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword(999) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() on empty store returned %d users", len(users))
	}

	for _, name := range []string{"u1", "u2", "u3"} {
		if err := repo.Create(ctx, &User{Username: name, PasswordHash: "x"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("List() returned %d users, want 3", len(users))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"alice", true},
		{"user.name-1_x", true},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
	}

	for _, tt := range tests {
		if got := IsValidUsername(tt.username); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}
