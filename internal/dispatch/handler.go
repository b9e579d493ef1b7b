package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"globapp-api/internal/drivers"
	"globapp-api/internal/rides"
	"globapp-api/pkg/phone"
)

// Handler exposes the dispatcher HTTP endpoints (admin API key guarded by
// the caller).
type Handler struct{ svc *Service }

// NewHandler wires a handler to the dispatch service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Routes returns the dispatcher route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/rides", h.RidesByStatus)
	r.Post("/rides/{id}/assign", h.Assign)
	r.Get("/active-rides", h.ActiveRides)
	r.Get("/driver-presence", h.DriverPresence)
	r.Get("/available-drivers", h.AvailableDrivers)
	return r
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	rideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ride id"})
		return
	}

	var req struct {
		DriverID string `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid driver id"})
		return
	}

	ride, err := h.svc.Assign(r.Context(), rideID, driverID)
	if err != nil {
		writeAssignError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"ride_id":         ride.ID,
		"driver_id":       driverID,
		"status":          ride.Status,
		"assigned_at_utc": formatTime(ride.AssignedAt),
	})
}

func (h *Handler) RidesByStatus(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}

	rs, err := h.svc.RidesByStatus(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		if errors.Is(err, rides.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]map[string]any, 0, len(rs))
	for i := range rs {
		out = append(out, queueRideView(&rs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ActiveRides(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}

	active, err := h.svc.ActiveRides(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]map[string]any, 0, len(active))
	for i := range active {
		a := &active[i]
		view := queueRideView(&a.Ride)
		view["driver_name"] = a.DriverName
		view["vehicle"] = a.Vehicle
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DriverPresence(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 100)
	if !ok {
		return
	}

	board, err := h.svc.DriverPresence(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) AvailableDrivers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 100)
	if !ok {
		return
	}

	pool, err := h.svc.AvailableDrivers(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// queueRideView is the ops-console projection of a ride: the rider's phone
// is masked even for admins.
func queueRideView(r *rides.Ride) map[string]any {
	return map[string]any{
		"ride_id":             r.ID,
		"rider_name":          r.RiderName,
		"rider_phone_masked":  phone.Mask(r.RiderPhone),
		"pickup":              r.Pickup,
		"dropoff":             r.Dropoff,
		"service_type":        r.ServiceType,
		"estimated_price_usd": r.EstimatedPriceUSD,
		"status":              r.Status,
		"assigned_driver_id":  r.AssignedDriverID,
		"created_at_utc":      r.CreatedAt.Format(time.RFC3339),
		"assigned_at_utc":     formatTime(r.AssignedAt),
	}
}

func writeAssignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rides.ErrRideNotFound), errors.Is(err, drivers.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotAssignable), errors.Is(err, ErrDriverBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrDriverInactive):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 500 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
		return 0, false
	}
	return n, true
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
