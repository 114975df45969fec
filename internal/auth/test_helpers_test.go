package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the owner schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			device_id     TEXT NOT NULL UNIQUE,
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_users_device_id ON users(device_id);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying owner migration: %v", err)
	}

	return db
}

// seedTestOwner inserts a test owner bound to the given device and returns it.
func seedTestOwner(t *testing.T, db *sql.DB, username, deviceID string) *Owner {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewOwnerRepository(db)
	owner := &Owner{
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
		DeviceID:     deviceID,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), owner); err != nil {
		t.Fatalf("creating test owner %s: %v", username, err)
	}
	return owner
}
