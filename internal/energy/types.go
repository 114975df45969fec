package energy

import (
	"time"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// TransferRequest is an owner's instruction to move energy between devices.
type TransferRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// TransferResult is returned to the initiating owner after a committed
// transfer: the sender's remaining balance and the receiver's new balance.
// EnergyReceived is the receiver's total after the credit, not the amount
// moved.
type TransferResult struct {
	EnergyRemaining float64 `json:"energyRemaining"`
	EnergyReceived  float64 `json:"energyReceived"`
}

// Transfer is one committed ledger record. Balances are captured at commit
// time so the ledger reads as a consistent history even as balances decay.
type Transfer struct {
	ID            string    `json:"id"`
	FromDevice    string    `json:"from_device"`
	ToDevice      string    `json:"to_device"`
	Amount        float64   `json:"amount"`
	FromRemaining float64   `json:"from_remaining"`
	ToBalance     float64   `json:"to_balance"`
	InitiatedBy   string    `json:"initiated_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Pusher delivers state to a device's realtime session, if one exists.
// Satisfied by the realtime session table.
type Pusher interface {
	PushStatus(deviceID string, snap device.Snapshot) bool
	PushEnergy(deviceID string, energy float64) bool
}

// StatePublisher mirrors device state changes onto an external bus,
// such as MQTT.
type StatePublisher interface {
	PublishState(deviceID string, snap device.Snapshot)
}

// Telemetry records energy readings in a time-series store.
type Telemetry interface {
	RecordBalance(deviceID string, balance float64, on bool)
	RecordTransfer(from, to string, amount float64)
}

// Logger defines the logging interface used by this package.
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
