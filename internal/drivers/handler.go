package drivers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"globapp-api/pkg/jwt"
	"globapp-api/pkg/phone"
	"globapp-api/pkg/validation"
)

// Handler exposes driver HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the driver service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// AdminRoutes returns the dispatcher-facing driver routes (X-API-Key guarded
// by the caller).
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/pin", h.SetPin)
	r.Get("/{id}/location", h.GetLocation)
	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.List(r.Context(), 200)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]map[string]any, 0, len(ds))
	for _, d := range ds {
		out = append(out, map[string]any{
			"id":             d.ID,
			"name":           d.Name,
			"phone":          d.Phone,
			"masked_phone":   phone.Mask(d.Phone),
			"vehicle":        d.Vehicle,
			"is_active":      d.IsActive,
			"created_at_utc": d.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	d, err := h.svc.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPhoneExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidPin),
			errors.Is(err, phone.ErrRequired), errors.Is(err, phone.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":             d.ID,
		"status":         "created",
		"created_at_utc": d.CreatedAt.Format(time.RFC3339),
		"masked_phone":   phone.Mask(d.Phone),
		"pin_set":        d.PinHash != nil,
	})
}

func (h *Handler) SetPin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid driver id"})
		return
	}

	var req SetPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := h.svc.SetPin(r.Context(), id, req.Pin); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidPin):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "pin_set": true})
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid driver id"})
		return
	}

	loc, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if loc == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"driver_id":      id,
		"lat":            loc.Lat,
		"lng":            loc.Lng,
		"heading_deg":    loc.HeadingDeg,
		"speed_mph":      loc.SpeedMph,
		"accuracy_m":     loc.AccuracyM,
		"updated_at_utc": loc.UpdatedAt.Format(time.RFC3339),
	})
}

// UpsertLocation handles PUT /api/v1/driver/location for the authenticated
// driver.
func (h *Handler) UpsertLocation(w http.ResponseWriter, r *http.Request) {
	driverID := jwt.GetDriverID(r.Context())

	var up LocationUpsert
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !validation.ValidateCoordinates(up.Lat, up.Lng) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}

	updatedAt, err := h.svc.UpsertLocation(r.Context(), driverID, up)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"driver_id":      driverID,
		"updated_at_utc": updatedAt.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
