package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Owner passwords are hashed with Argon2id. Seeded accounts get a generated
// password at first boot, so the cost parameters only have to hold up until
// the owner rotates it; they still follow the current OWASP guidance.
const (
	hashIterations  = 3
	hashMemoryKiB   = 64 * 1024
	hashParallelism = 1
	hashLength      = 32
	saltLength      = 16
)

// phcFieldCount is the number of $-separated fields in an encoded hash:
// empty leader, algorithm, version, parameters, salt, hash.
const phcFieldCount = 6

// HashPassword derives an Argon2id hash of the password and encodes it as a
// PHC string ($argon2id$v=19$m=...,t=...,p=...$salt$hash), which is what the
// users table stores.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashIterations, hashMemoryKiB, hashParallelism, hashLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemoryKiB, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// VerifyPassword reports whether the password matches the stored PHC hash.
// The cost parameters come from the stored string, so hashes minted under
// older parameters keep verifying after the constants above change.
func VerifyPassword(password, stored string) (bool, error) {
	salt, want, cost, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, cost.iterations, cost.memoryKiB, cost.parallelism, uint32(len(want))) //nolint:gosec // G115: hash length always fits uint32

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// hashCost carries the Argon2id parameters recovered from a stored hash.
type hashCost struct {
	iterations  uint32
	memoryKiB   uint32
	parallelism uint8
}

// parsePHC splits a stored PHC string into salt, hash, and cost parameters.
func parsePHC(stored string) (salt, hash []byte, cost hashCost, err error) {
	fields := strings.Split(stored, "$")
	if len(fields) != phcFieldCount {
		return nil, nil, cost, fmt.Errorf("invalid PHC hash format")
	}

	if fields[1] != "argon2id" {
		return nil, nil, cost, fmt.Errorf("unsupported algorithm: %s", fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, cost, fmt.Errorf("parsing version: %w", err)
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &cost.memoryKiB, &cost.iterations, &cost.parallelism); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, cost, fmt.Errorf("parsing parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return nil, nil, cost, fmt.Errorf("decoding salt: %w", err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return nil, nil, cost, fmt.Errorf("decoding hash: %w", err)
	}

	return salt, hash, cost, nil
}
