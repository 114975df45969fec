// Package auth provides owner authentication for Lumen Core.
//
// Every provisioned device has exactly one owner account, bound at seed
// time via the users.device_id column. Owners log in with username and
// password and receive a short-lived JWT whose "dev" claim carries their
// bound device; transfer authorisation is a claim comparison, no database
// lookup on the hot path.
//
//   - Argon2id password hashing (OWASP 2025 recommendation), PHC format
//   - HS256 JWT access tokens, signature-only validation
//   - SQLite-backed owner repository
//
// Device credentials (the shared secret presented over the realtime
// channel and on power endpoints) are not handled here — they live in the
// device registry, which owns constant-time verification.
package auth
