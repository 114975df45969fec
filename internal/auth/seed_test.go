package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedOwners_FirstBoot(t *testing.T) {
	db := testDB(t)
	repo := NewOwnerRepository(db)
	ctx := context.Background()

	if err := SeedOwners(ctx, repo, []string{"bulb-a", "bulb-b"}, discardLogger()); err != nil {
		t.Fatalf("SeedOwners() error = %v", err)
	}

	count, _ := repo.Count(ctx)
	if count != 2 {
		t.Fatalf("owner count = %d, want 2", count)
	}

	owner, err := repo.GetByDeviceID(ctx, "bulb-a")
	if err != nil {
		t.Fatalf("GetByDeviceID() error = %v", err)
	}
	if owner.Username != "owner-bulb-a" || !owner.IsActive {
		t.Errorf("seeded owner = %+v", owner)
	}
	if owner.PasswordHash == "" {
		t.Error("seeded owner has no password hash")
	}
}

func TestSeedOwners_Idempotent(t *testing.T) {
	db := testDB(t)
	repo := NewOwnerRepository(db)
	ctx := context.Background()

	if err := SeedOwners(ctx, repo, []string{"bulb-a"}, discardLogger()); err != nil {
		t.Fatalf("first SeedOwners() error = %v", err)
	}
	first, _ := repo.GetByDeviceID(ctx, "bulb-a")

	if err := SeedOwners(ctx, repo, []string{"bulb-a"}, discardLogger()); err != nil {
		t.Fatalf("second SeedOwners() error = %v", err)
	}
	second, _ := repo.GetByDeviceID(ctx, "bulb-a")

	if first.ID != second.ID || first.PasswordHash != second.PasswordHash {
		t.Error("re-seeding replaced an existing owner")
	}
}

func TestSeedOwners_FillsGapsOnly(t *testing.T) {
	db := testDB(t)
	repo := NewOwnerRepository(db)
	ctx := context.Background()

	existing := seedTestOwner(t, db, "alice", "bulb-a")

	if err := SeedOwners(ctx, repo, []string{"bulb-a", "bulb-b"}, discardLogger()); err != nil {
		t.Fatalf("SeedOwners() error = %v", err)
	}

	count, _ := repo.Count(ctx)
	if count != 2 {
		t.Fatalf("owner count = %d, want 2", count)
	}

	still, _ := repo.GetByDeviceID(ctx, "bulb-a")
	if still.ID != existing.ID || still.Username != "alice" {
		t.Error("seeding overwrote a manually created owner")
	}
}
