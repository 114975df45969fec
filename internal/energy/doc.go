// Package energy implements the energy economy: owner-initiated transfers,
// power control, passive decay, and the append-only transfer ledger.
//
// # Transfers
//
// A transfer validates in a fixed order (malformed, unknown device,
// ownership, balance) and only then commits. The debit and credit happen
// under the registry's pair lock as one atomic step; there is no partial
// state to roll back, ever. A receiver that was off is woken by the credit.
//
// # Decay
//
// The decay engine ticks at a configured interval and debits each powered-on
// device its consumption rate. Depletion clamps the balance to exactly zero,
// forces the device off, and pushes a full snapshot; an ordinary debit
// pushes a balance-only update. Devices that are off are untouched.
//
// # Ledger
//
// Committed transfers are appended to SQLite for history queries. The
// registry remains the source of truth: a failed append is logged, never
// rolled back.
package energy
