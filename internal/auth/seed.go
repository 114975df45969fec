package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for a seeded owner password.
const seedPasswordBytes = 16

// SeedOwners creates one owner account per provisioned device on first boot.
// Generated passwords are logged — they must be changed immediately.
// Devices that already have a bound owner are skipped, so re-running after a
// partial seed (or after adding devices to the fleet) fills only the gaps.
func SeedOwners(ctx context.Context, repo OwnerRepository, deviceIDs []string, logger *slog.Logger) error {
	for _, deviceID := range deviceIDs {
		_, err := repo.GetByDeviceID(ctx, deviceID)
		if err == nil {
			continue // already bound
		}
		if !errors.Is(err, ErrOwnerNotFound) {
			return fmt.Errorf("checking owner for device %s: %w", deviceID, err)
		}

		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
			return fmt.Errorf("generating seed password: %w", err)
		}
		password := hex.EncodeToString(passwordBytes)

		hash, err := HashPassword(password)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}

		username := "owner-" + deviceID
		owner := &Owner{
			Username:     username,
			DisplayName:  "Owner of " + deviceID,
			PasswordHash: hash,
			DeviceID:     deviceID,
			IsActive:     true,
		}
		if err := repo.Create(ctx, owner); err != nil {
			return fmt.Errorf("creating seed owner for device %s: %w", deviceID, err)
		}

		logger.Warn("seed owner account created",
			"username", username,
			"device_id", deviceID,
			"password", password,
			"action_required", "change this password immediately",
		)
	}

	return nil
}
