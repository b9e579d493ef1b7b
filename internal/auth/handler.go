package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"globapp-api/pkg/phone"
)

// Handler exposes driver auth HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the auth service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	session, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	session, err := h.svc.Refresh(r.Context(), req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// writeAuthError maps service errors onto the response taxonomy. Raw tokens
// and PINs never appear in responses or logs.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, phone.ErrRequired), errors.Is(err, phone.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrDriverInactive), errors.Is(err, ErrPinNotSet):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidRefreshToken),
		errors.Is(err, ErrRevokedRefreshToken),
		errors.Is(err, ErrExpiredRefreshToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
