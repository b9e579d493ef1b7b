package rides

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"globapp-api/pkg/jwt"
	"globapp-api/pkg/phone"
)

// Handler exposes ride HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the ride service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// PublicRoutes returns rider-facing routes (public API key guarded by the
// caller).
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/quote", h.Quote)
	r.Post("/", h.Create)
	return r
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	q, err := h.svc.Quote(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	ride, err := h.svc.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRider), errors.Is(err, ErrInvalidAddress),
			errors.Is(err, phone.ErrRequired), errors.Is(err, phone.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ride_id":                  ride.ID,
		"status":                   ride.Status,
		"created_at_utc":           ride.CreatedAt.Format(time.RFC3339),
		"rider_phone_masked":       phone.Mask(ride.RiderPhone),
		"estimated_price_usd":      ride.EstimatedPriceUSD,
		"estimated_distance_miles": ride.EstimatedDistanceMiles,
		"estimated_duration_min":   ride.EstimatedDurationMin,
		"service_type":             ride.ServiceType,
	})
}

// UpdateStatus handles POST /api/v1/driver/rides/{id}/status for the
// authenticated driver.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	driverID := jwt.GetDriverID(r.Context())
	rideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ride id"})
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	ride, err := h.svc.UpdateStatus(r.Context(), rideID, driverID, req.Status)
	if err != nil {
		writeStatusError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"ride_id":   ride.ID,
		"driver_id": driverID,
		"status":    ride.Status,
	})
}

// AssignedRide handles GET /api/v1/driver/assigned-ride.
func (h *Handler) AssignedRide(w http.ResponseWriter, r *http.Request) {
	driverID := jwt.GetDriverID(r.Context())

	ride, err := h.svc.AssignedRide(r.Context(), driverID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if ride == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, driverRideView(ride))
}

// ListMine handles GET /api/v1/driver/rides.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	driverID := jwt.GetDriverID(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	rs, err := h.svc.ListMine(r.Context(), driverID, r.URL.Query().Get("status"), limit)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]map[string]any, 0, len(rs))
	for i := range rs {
		out = append(out, driverRideView(&rs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// driverRideView is the driver-app projection of a ride: the rider's phone
// is masked, never exposed raw.
func driverRideView(r *Ride) map[string]any {
	return map[string]any{
		"ride_id":            r.ID,
		"rider_name":         r.RiderName,
		"rider_phone_masked": phone.Mask(r.RiderPhone),
		"pickup":             r.Pickup,
		"dropoff":            r.Dropoff,
		"service_type":       r.ServiceType,
		"status":             r.Status,
		"created_at_utc":     formatTime(&r.CreatedAt),
		"assigned_at_utc":    formatTime(r.AssignedAt),
		"enroute_at_utc":     formatTime(r.EnrouteAt),
		"arrived_at_utc":     formatTime(r.ArrivedAt),
		"in_progress_at_utc": formatTime(r.InProgressAt),
		"completed_at_utc":   formatTime(r.CompletedAt),
		"cancelled_at_utc":   formatTime(r.CancelledAt),
	}
}

// writeStatusError maps status-machine errors onto the response taxonomy:
// validation problems are 400, ownership is 403, missing rides 404, and
// state conflicts 409.
func writeStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRideNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNotAssigned),
		errors.Is(err, ErrInvalidTransitionSource):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrAlreadyTerminal), errors.Is(err, ErrStatusRegression):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
