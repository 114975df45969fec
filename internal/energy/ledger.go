package energy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger defines the interface for transfer history persistence.
type Ledger interface {
	Append(ctx context.Context, t *Transfer) error
	Recent(ctx context.Context, limit int) ([]Transfer, error)
	ByDevice(ctx context.Context, deviceID string, limit int) ([]Transfer, error)
}

// defaultLedgerLimit bounds history queries when the caller passes no limit.
const defaultLedgerLimit = 50

// SQLiteLedger implements Ledger using SQLite.
type SQLiteLedger struct {
	db *sql.DB
}

// NewLedger creates a new SQLite-backed transfer ledger.
func NewLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

const transferColumns = "id, from_device, to_device, amount, from_remaining, to_balance, initiated_by, created_at"

// Append records a committed transfer. The ID is generated if empty; the
// full UUID is kept so audit rows never collide at fleet volumes.
func (l *SQLiteLedger) Append(ctx context.Context, t *Transfer) error {
	if t.ID == "" {
		t.ID = "txf-" + uuid.NewString()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	t.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FromDevice, t.ToDevice, t.Amount,
		t.FromRemaining, t.ToBalance, t.InitiatedBy, now,
	)
	if err != nil {
		return fmt.Errorf("appending transfer: %w", err)
	}
	return nil
}

// Recent returns the most recent transfers, newest first.
func (l *SQLiteLedger) Recent(ctx context.Context, limit int) ([]Transfer, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	return l.query(ctx,
		"SELECT "+transferColumns+" FROM transfers ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

// ByDevice returns the most recent transfers touching a device as sender or
// receiver, newest first.
func (l *SQLiteLedger) ByDevice(ctx context.Context, deviceID string, limit int) ([]Transfer, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	return l.query(ctx,
		"SELECT "+transferColumns+" FROM transfers WHERE from_device = ? OR to_device = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		deviceID, deviceID, limit)
}

func (l *SQLiteLedger) query(ctx context.Context, q string, args ...any) ([]Transfer, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transfers: %w", err)
	}
	defer rows.Close()

	transfers := []Transfer{}
	for rows.Next() {
		var t Transfer
		var createdAt string
		if err := rows.Scan(&t.ID, &t.FromDevice, &t.ToDevice, &t.Amount,
			&t.FromRemaining, &t.ToBalance, &t.InitiatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfers: %w", err)
	}
	return transfers, nil
}
