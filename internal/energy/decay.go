package energy

import (
	"context"
	"time"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// Engine debits energy from powered-on devices at a fixed interval.
//
// Each tick walks the fleet one device at a time; no lock spans the whole
// pass, so a long fleet never starves transfers. A device whose balance
// cannot cover its consumption rate is clamped to exactly zero and forced
// off, and its session receives a full snapshot instead of the usual
// balance update.
type Engine struct {
	store    *device.Store
	pusher   Pusher
	interval time.Duration
	logger   Logger

	statePub  StatePublisher
	telemetry Telemetry
}

// NewEngine creates a decay engine ticking at the given interval.
func NewEngine(store *device.Store, pusher Pusher, interval time.Duration) *Engine {
	return &Engine{
		store:    store,
		pusher:   pusher,
		interval: interval,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// SetStatePublisher wires an optional state bus. Depletion shutdowns are
// mirrored onto it.
func (e *Engine) SetStatePublisher(p StatePublisher) {
	e.statePub = p
}

// SetTelemetry wires an optional time-series recorder.
func (e *Engine) SetTelemetry(t Telemetry) {
	e.telemetry = t
}

// Run ticks until the context is cancelled. It blocks; run it in its own
// goroutine.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("decay engine started", "interval", e.interval)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("decay engine stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick applies one decay pass over the whole fleet. A failure on one
// device is logged and never blocks the rest of the pass.
func (e *Engine) Tick() {
	for _, id := range e.store.IDs() {
		e.tickDevice(id)
	}
}

func (e *Engine) tickDevice(id string) {
	var skipped, depleted bool
	after, err := e.store.Mutate(id, func(d *device.Device) {
		if !d.On {
			skipped = true
			return
		}
		d.EnergyBalance -= d.ConsumptionRate
		if d.EnergyBalance <= 0 {
			d.EnergyBalance = 0
			d.On = false
			depleted = true
		}
	})
	if err != nil {
		e.logger.Error("decay tick failed", "device_id", id, "error", err)
		return
	}
	if skipped {
		return
	}

	snap := device.SnapshotOf(after)
	if depleted {
		e.logger.Info("device depleted, forced off", "device_id", id)
		e.pusher.PushStatus(id, snap)
		if e.statePub != nil {
			e.statePub.PublishState(id, snap)
		}
	} else {
		e.pusher.PushEnergy(id, snap.Energy)
	}
	if e.telemetry != nil {
		e.telemetry.RecordBalance(id, snap.Energy, snap.IsOn)
	}
}
