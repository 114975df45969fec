// Package realtime implements the device-facing WebSocket protocol and the
// session table that binds connections to devices.
//
// Devices connect, authenticate with their provisioned id and shared key,
// then exchange small JSON frames:
//
//	device -> server: auth, heartbeat, device-status
//	server -> device: status, energy-update, error
//
// # Session Semantics
//
// At most one session exists per device. A newer authenticated connection
// for the same device supersedes the older one, which is closed and can
// never receive further pushes. Teardown uses compare-and-remove so a
// superseded connection closing late cannot evict its replacement.
//
// Malformed or unknown frames are logged and dropped without terminating
// the connection. Only a failed auth produces an error frame followed by
// connection close.
//
// Every inbound frame from an authenticated device refreshes its last-seen
// timestamp, which is the sole input to presence derivation.
package realtime
