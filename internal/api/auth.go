package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenfleet/lumen-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// secondsPerMinute converts the configured TTL (minutes) to the response unit.
const secondsPerMinute = 60

// handleLogin authenticates an owner and returns a JWT access token.
//
// Unknown usernames and wrong passwords produce the same 401 so the endpoint
// does not leak which accounts exist. Inactive accounts are refused after the
// password check for the same reason.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	owner, err := s.owners.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrOwnerNotFound) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login lookup failed", "username", req.Username, "error", err)
		writeInternalError(w, "login failed")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, owner.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "owner_id", owner.ID, "error", err)
		writeInternalError(w, "login failed")
		return
	}
	if !ok || !owner.IsActive {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	token, err := auth.GenerateAccessToken(owner, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("token generation failed", "owner_id", owner.ID, "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	s.logger.Info("owner logged in", "owner_id", owner.ID, "device_id", owner.DeviceID)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * secondsPerMinute,
	})
}

// handleMe returns the authenticated owner's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := ownerClaims(r)
	if claims == nil {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	owner, err := s.owners.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrOwnerNotFound) {
			writeUnauthorized(w, "account no longer exists")
			return
		}
		s.logger.Error("owner lookup failed", "owner_id", claims.Subject, "error", err)
		writeInternalError(w, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, owner)
}
