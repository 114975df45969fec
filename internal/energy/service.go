package energy

import (
	"context"
	"math"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// Service implements energy transfers and power control over the device
// registry. All validation happens before any mutation; a rejected request
// leaves both devices untouched.
type Service struct {
	store  *device.Store
	ledger Ledger
	pusher Pusher
	logger Logger

	statePub  StatePublisher
	telemetry Telemetry
}

// NewService creates an energy service. ledger may be nil when transfer
// history is not persisted (tests).
func NewService(store *device.Store, ledger Ledger, pusher Pusher) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		pusher: pusher,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetStatePublisher wires an optional state bus.
func (s *Service) SetStatePublisher(p StatePublisher) {
	s.statePub = p
}

// SetTelemetry wires an optional time-series recorder.
func (s *Service) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// Transfer moves energy from one device to another on behalf of an owner.
//
// Validation runs in a fixed order so callers see a deterministic failure
// class: malformed request, then unknown device, then ownership, then
// balance. The balance check and the double mutation happen under the pair
// lock, so no interleaved transfer or decay tick can observe a half-applied
// move.
//
// A receiver that is off is woken by the credit; its session, if connected,
// receives a full snapshot.
func (s *Service) Transfer(ctx context.Context, callerDeviceID, ownerID string, req TransferRequest) (*TransferResult, error) {
	if req.From == "" || req.To == "" || req.From == req.To {
		return nil, ErrInvalidTransfer
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, ErrInvalidTransfer
	}

	if _, err := s.store.Get(req.From); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(req.To); err != nil {
		return nil, err
	}

	if callerDeviceID != req.From {
		return nil, ErrForbidden
	}

	var insufficient, woke bool
	fromAfter, toAfter, err := s.store.MutatePair(req.From, req.To, func(from, to *device.Device) {
		if from.EnergyBalance < req.Amount {
			insufficient = true
			return
		}
		from.EnergyBalance -= req.Amount
		to.EnergyBalance += req.Amount
		if !to.On {
			to.On = true
			woke = true
		}
	})
	if err != nil {
		// Existence was checked above and the fleet is fixed, so this is
		// unreachable short of a registry bug.
		return nil, err
	}
	if insufficient {
		return nil, ErrInsufficientFunds
	}

	s.logger.Info("transfer committed",
		"from", req.From, "to", req.To, "amount", req.Amount,
		"from_remaining", fromAfter.EnergyBalance, "to_balance", toAfter.EnergyBalance,
		"woke_receiver", woke,
	)

	// Receiver resynchronises from a full snapshot; the sender's session
	// gets a balance update so its display tracks the committed state.
	s.pusher.PushStatus(req.To, device.SnapshotOf(toAfter))
	s.pusher.PushEnergy(req.From, fromAfter.EnergyBalance)

	if s.statePub != nil && woke {
		s.statePub.PublishState(req.To, device.SnapshotOf(toAfter))
	}
	if s.telemetry != nil {
		s.telemetry.RecordTransfer(req.From, req.To, req.Amount)
		s.telemetry.RecordBalance(req.From, fromAfter.EnergyBalance, fromAfter.On)
		s.telemetry.RecordBalance(req.To, toAfter.EnergyBalance, toAfter.On)
	}

	// The registry is the source of truth; a failed ledger append loses
	// audit history but never rolls back a committed transfer.
	if s.ledger != nil {
		record := &Transfer{
			FromDevice:    req.From,
			ToDevice:      req.To,
			Amount:        req.Amount,
			FromRemaining: fromAfter.EnergyBalance,
			ToBalance:     toAfter.EnergyBalance,
			InitiatedBy:   ownerID,
		}
		if err := s.ledger.Append(ctx, record); err != nil {
			s.logger.Error("ledger append failed", "from", req.From, "to", req.To, "error", err)
		}
	}

	return &TransferResult{
		EnergyRemaining: fromAfter.EnergyBalance,
		EnergyReceived:  toAfter.EnergyBalance,
	}, nil
}

// PowerOn requests a device power on. A device with no energy stays off;
// the call still succeeds with achieved=false so callers distinguish
// "commanded" from "achieved" without parsing the snapshot.
func (s *Service) PowerOn(deviceID string) (device.Snapshot, bool, error) {
	var changed bool
	after, err := s.store.Mutate(deviceID, func(d *device.Device) {
		if d.On || d.EnergyBalance <= 0 {
			return
		}
		d.On = true
		changed = true
	})
	if err != nil {
		return device.Snapshot{}, false, err
	}

	snap := device.SnapshotOf(after)
	if changed {
		s.logger.Info("device powered on", "device_id", deviceID, "energy", snap.Energy)
		s.pusher.PushStatus(deviceID, snap)
		if s.statePub != nil {
			s.statePub.PublishState(deviceID, snap)
		}
	} else if !snap.IsOn {
		s.logger.Debug("power on refused, no energy", "device_id", deviceID)
	}
	return snap, snap.IsOn, nil
}

// PowerOff requests a device power off. Always achieved for a known device.
func (s *Service) PowerOff(deviceID string) (device.Snapshot, bool, error) {
	var changed bool
	after, err := s.store.Mutate(deviceID, func(d *device.Device) {
		if !d.On {
			return
		}
		d.On = false
		changed = true
	})
	if err != nil {
		return device.Snapshot{}, false, err
	}

	snap := device.SnapshotOf(after)
	if changed {
		s.logger.Info("device powered off", "device_id", deviceID)
		s.pusher.PushStatus(deviceID, snap)
		if s.statePub != nil {
			s.statePub.PublishState(deviceID, snap)
		}
	}
	return snap, !snap.IsOn, nil
}
