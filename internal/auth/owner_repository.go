package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OwnerRepository defines the interface for owner account persistence.
type OwnerRepository interface {
	Create(ctx context.Context, owner *Owner) error
	GetByID(ctx context.Context, id string) (*Owner, error)
	GetByUsername(ctx context.Context, username string) (*Owner, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*Owner, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteOwnerRepository implements OwnerRepository using SQLite.
type SQLiteOwnerRepository struct {
	db *sql.DB
}

// NewOwnerRepository creates a new SQLite-backed owner repository.
func NewOwnerRepository(db *sql.DB) *SQLiteOwnerRepository {
	return &SQLiteOwnerRepository{db: db}
}

const ownerColumns = "id, username, display_name, password_hash, device_id, is_active, created_at, updated_at"

// Create inserts a new owner account. The ID is generated if empty.
func (r *SQLiteOwnerRepository) Create(ctx context.Context, owner *Owner) error {
	if owner.ID == "" {
		owner.ID = "own-" + uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	owner.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	owner.UpdatedAt = owner.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, password_hash, device_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		owner.ID, owner.Username, owner.DisplayName, owner.PasswordHash,
		owner.DeviceID, boolToInt(owner.IsActive), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "device_id") {
				return ErrDeviceBound
			}
			return ErrUsernameExists
		}
		return fmt.Errorf("creating owner: %w", err)
	}

	return nil
}

// GetByID retrieves an owner by their unique ID.
func (r *SQLiteOwnerRepository) GetByID(ctx context.Context, id string) (*Owner, error) {
	return r.getOwner(ctx, "SELECT "+ownerColumns+" FROM users WHERE id = ?", id)
}

// GetByUsername retrieves an owner by their username.
func (r *SQLiteOwnerRepository) GetByUsername(ctx context.Context, username string) (*Owner, error) {
	return r.getOwner(ctx, "SELECT "+ownerColumns+" FROM users WHERE username = ?", username)
}

// GetByDeviceID retrieves the owner bound to a device.
func (r *SQLiteOwnerRepository) GetByDeviceID(ctx context.Context, deviceID string) (*Owner, error) {
	return r.getOwner(ctx, "SELECT "+ownerColumns+" FROM users WHERE device_id = ?", deviceID)
}

// UpdatePassword changes an owner's password hash.
func (r *SQLiteOwnerRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrOwnerNotFound
	}
	return nil
}

// Count returns the total number of owner accounts.
func (r *SQLiteOwnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting owners: %w", err)
	}
	return count, nil
}

// getOwner executes a query and scans a single owner result.
func (r *SQLiteOwnerRepository) getOwner(ctx context.Context, query string, args ...any) (*Owner, error) {
	var o Owner
	var isActive int
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&o.ID, &o.Username, &o.DisplayName, &o.PasswordHash,
		&o.DeviceID, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("scanning owner: %w", err)
	}

	o.IsActive = isActive != 0
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	o.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &o, nil
}

// Helper functions.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
