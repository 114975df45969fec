package device

import "time"

// Oracle derives "is this device online" from last-seen recency.
//
// A device is online while its most recent realtime message (auth,
// heartbeat, or status report) is younger than the configured threshold.
// The oracle is a pure read over registry state; it never mutates.
type Oracle struct {
	store     *Store
	threshold time.Duration

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewOracle creates a presence oracle over the given store.
func NewOracle(store *Store, threshold time.Duration) *Oracle {
	return &Oracle{
		store:     store,
		threshold: threshold,
		now:       time.Now,
	}
}

// Online reports whether the device has been seen on the realtime channel
// within the threshold. Unknown devices are offline.
func (o *Oracle) Online(id string) bool {
	d, err := o.store.Get(id)
	if err != nil {
		return false
	}
	if d.LastSeen == nil {
		return false
	}
	return o.now().Sub(*d.LastSeen) < o.threshold
}

// OnlineCount returns how many devices are currently online.
func (o *Oracle) OnlineCount() int {
	n := 0
	for _, d := range o.store.List() {
		if d.LastSeen != nil && o.now().Sub(*d.LastSeen) < o.threshold {
			n++
		}
	}
	return n
}
