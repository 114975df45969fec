package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumenfleet/lumen-core/internal/device"
)

// deviceView is the owner-facing representation of a device.
// The shared secret never appears here; presence is derived at read time.
type deviceView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	IsOn            bool       `json:"is_on"`
	EnergyBalance   float64    `json:"energy_balance"`
	ConsumptionRate float64    `json:"consumption_rate"`
	Online          bool       `json:"online"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
}

// viewOf builds a deviceView, consulting the presence oracle.
func (s *Server) viewOf(d *device.Device) deviceView {
	return deviceView{
		ID:              d.ID,
		Name:            d.Name,
		IsOn:            d.On,
		EnergyBalance:   d.EnergyBalance,
		ConsumptionRate: d.ConsumptionRate,
		Online:          s.oracle.Online(d.ID),
		LastSeen:        d.LastSeen,
	}
}

// handleListDevices returns the full fleet, sorted by ID.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.store.List()
	views := make([]deviceView, 0, len(devices))
	for i := range devices {
		views = append(views, s.viewOf(&devices[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": views,
		"count":   len(views),
	})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("device lookup failed", "device_id", id, "error", err)
		writeInternalError(w, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, s.viewOf(d))
}

// powerResponse reports the outcome of a power command. Success is false
// when the command did not take effect, such as powering on a drained bulb.
type powerResponse struct {
	DeviceID string `json:"deviceId"`
	IsOn     bool   `json:"isOn"`
	Success  bool   `json:"success"`
}

// handlePowerOn commands a device on. A device with no energy stays off;
// the call still returns 200 with success=false.
func (s *Server) handlePowerOn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, achieved, err := s.energy.PowerOn(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("power on failed", "device_id", id, "error", err)
		writeInternalError(w, "power command failed")
		return
	}

	writeJSON(w, http.StatusOK, powerResponse{DeviceID: id, IsOn: snap.IsOn, Success: achieved})
}

// handlePowerOff commands a device off.
func (s *Server) handlePowerOff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, achieved, err := s.energy.PowerOff(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("power off failed", "device_id", id, "error", err)
		writeInternalError(w, "power command failed")
		return
	}

	writeJSON(w, http.StatusOK, powerResponse{DeviceID: id, IsOn: snap.IsOn, Success: achieved})
}
