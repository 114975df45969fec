package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/energy"
)

// maxHistoryLimit caps how many ledger rows a single request may fetch.
const maxHistoryLimit = 500

// handleTransfer moves energy between two devices on behalf of the
// authenticated owner.
//
// The owner's bound device comes from the token, not the request body, so a
// stolen request body cannot spend from someone else's bulb. Failure classes
// map to distinct statuses: malformed 400, unknown device 404, wrong owner
// 403, insufficient balance 402.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	claims := ownerClaims(r)
	if claims == nil {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	var req energy.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.energy.Transfer(r.Context(), claims.DeviceID, claims.Subject, req)
	if err != nil {
		s.writeTransferError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeTransferError maps transfer failure classes onto HTTP statuses.
func (s *Server) writeTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, energy.ErrInvalidTransfer):
		writeBadRequest(w, "invalid transfer request")
	case errors.Is(err, device.ErrNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, energy.ErrForbidden):
		writeForbidden(w, "transfers may only be initiated from your own device")
	case errors.Is(err, energy.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, ErrCodeInsufficientFunds, "insufficient energy balance")
	default:
		s.logger.Error("transfer failed", "error", err)
		writeInternalError(w, "transfer failed")
	}
}

// handleListTransfers returns recent ledger entries, newest first.
//
// Query parameters:
//   - device: restrict to transfers touching this device as sender or receiver
//   - limit: maximum rows to return (default 50, capped at 500)
func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"transfers": []energy.Transfer{},
			"count":     0,
		})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var (
		transfers []energy.Transfer
		err       error
	)
	if deviceID := r.URL.Query().Get("device"); deviceID != "" {
		transfers, err = s.ledger.ByDevice(r.Context(), deviceID, limit)
	} else {
		transfers, err = s.ledger.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("ledger query failed", "error", err)
		writeInternalError(w, "history query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transfers": transfers,
		"count":     len(transfers),
	})
}
