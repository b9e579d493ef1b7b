package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"globapp-api/internal/rides"
)

// Handler exposes payment HTTP endpoints (public API key guarded by the
// caller).
type Handler struct{ svc *Service }

// NewHandler wires a handler to the payment service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Routes returns the payment route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/options", h.Options)
	r.Post("/intent", h.CreateIntent)
	r.Post("/confirm", h.Confirm)
	r.Get("/rides/{id}", h.History)
	return r
}

func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"options": h.svc.Options()})
}

type intentRequest struct {
	RideID   string `json:"ride_id"`
	Provider string `json:"provider"`
	Ref      string `json:"ref"`
}

func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	req, rideID, ok := decodeIntentRequest(w, r)
	if !ok {
		return
	}

	intent, err := h.svc.CreateIntent(r.Context(), rideID, req.Provider)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	req, rideID, ok := decodeIntentRequest(w, r)
	if !ok {
		return
	}
	if req.Ref == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ref is required"})
		return
	}

	intent, err := h.svc.Confirm(r.Context(), rideID, req.Provider, req.Ref)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ride id"})
		return
	}

	history, err := h.svc.History(r.Context(), rideID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func decodeIntentRequest(w http.ResponseWriter, r *http.Request) (intentRequest, uuid.UUID, bool) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return req, uuid.Nil, false
	}
	rideID, err := uuid.Parse(req.RideID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ride id"})
		return req, uuid.Nil, false
	}
	return req, rideID, true
}

func writePaymentError(w http.ResponseWriter, err error) {
	var unknown *UnknownProviderError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, rides.ErrRideNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
