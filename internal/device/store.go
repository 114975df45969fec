package device

import (
	"crypto/subtle"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// entry pairs a canonical device record with its mutex.
// The mutex serialises every mutation of that device: protocol handler
// writes, transfers, and decay ticks on the same device never interleave.
type entry struct {
	mu  sync.Mutex
	dev *Device
}

// Store is the canonical in-memory device registry.
//
// The fleet is fixed at construction (devices are provisioned from static
// configuration, never registered at runtime), so the map itself is
// immutable and needs no lock; only per-device entries are guarded.
//
// All accessors return clones — callers never hold a reference into the
// registry's canonical records.
type Store struct {
	devices map[string]*entry
	logger  Logger
}

// NewStore creates a registry holding the given provisioned devices.
// Duplicate IDs are rejected at provisioning load, not here.
func NewStore(devices []Device) *Store {
	m := make(map[string]*entry, len(devices))
	for i := range devices {
		d := devices[i]
		m[d.ID] = &entry{dev: &d}
	}
	return &Store{
		devices: m,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Get retrieves a device by ID.
// Returns ErrNotFound if the device does not exist.
// The returned device is a clone; callers can safely modify it.
func (s *Store) Get(id string) (*Device, error) {
	e, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dev.Clone(), nil
}

// Mutate performs an atomic read-modify-write of a single device.
// fn runs under the device's mutex; it must not call back into the Store.
// Returns a clone of the post-mutation record.
func (s *Store) Mutate(id string, fn func(*Device)) (*Device, error) {
	e, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.dev)
	return e.dev.Clone(), nil
}

// MutatePair performs an atomic mutation spanning two distinct devices.
// Both mutexes are held for the duration of fn, so a concurrent reader
// observes either the pre- or post-mutation state of the pair, never a
// partially applied update.
//
// Locks are always acquired in lexicographic ID order regardless of the
// caller-supplied order, so two pair mutations naming the same devices in
// opposite directions cannot deadlock.
func (s *Store) MutatePair(idA, idB string, fn func(a, b *Device)) (*Device, *Device, error) {
	if idA == idB {
		return nil, nil, ErrSameDevice
	}

	ea, ok := s.devices[idA]
	if !ok {
		return nil, nil, ErrNotFound
	}
	eb, ok := s.devices[idB]
	if !ok {
		return nil, nil, ErrNotFound
	}

	first, second := ea, eb
	if idB < idA {
		first, second = eb, ea
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	fn(ea.dev, eb.dev)
	return ea.dev.Clone(), eb.dev.Clone(), nil
}

// List returns clones of all devices, sorted by ID for stable output.
func (s *Store) List() []Device {
	out := make([]Device, 0, len(s.devices))
	for _, e := range s.devices {
		e.mu.Lock()
		out = append(out, *e.dev.Clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns all device IDs, sorted. The decay engine iterates this
// rather than holding any lock across the whole fleet.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of provisioned devices.
func (s *Store) Count() int {
	return len(s.devices)
}

// CheckCredentials reports whether the presented key matches the device's
// provisioned shared secret. Unknown IDs and wrong keys are indistinguishable
// to the caller. Comparison is constant-time.
func (s *Store) CheckCredentials(id, key string) bool {
	e, ok := s.devices[id]
	if !ok {
		return false
	}

	e.mu.Lock()
	secret := e.dev.SharedSecret
	e.mu.Unlock()

	return subtle.ConstantTimeCompare([]byte(secret), []byte(key)) == 1
}

// Stats holds registry statistics for monitoring.
type Stats struct {
	Total       int
	PoweredOn   int
	TotalEnergy float64
}

// GetStats returns current registry statistics.
func (s *Store) GetStats() Stats {
	stats := Stats{Total: len(s.devices)}
	for _, e := range s.devices {
		e.mu.Lock()
		if e.dev.On {
			stats.PoweredOn++
		}
		stats.TotalEnergy += e.dev.EnergyBalance
		e.mu.Unlock()
	}
	return stats
}
