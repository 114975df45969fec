// Package database provides SQLite connection management for Lumen Core.
//
// It wraps database/sql with:
//   - WAL mode and busy-timeout configuration
//   - Embedded schema migrations (applied at startup)
//   - Health checks and pool statistics for the metrics endpoint
//
// Only durable data lives here: owner accounts and the energy transfer
// ledger. The device registry is in-memory by design — devices are
// re-provisioned from configuration on every boot and their runtime state
// (power, balance, last-seen) does not survive a restart.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/lumen.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
