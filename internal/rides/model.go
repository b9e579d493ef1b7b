package rides

import (
	"time"

	"github.com/google/uuid"
)

// Ride lifecycle states.
const (
	StatusRequested  = "requested"
	StatusAssigned   = "assigned"
	StatusEnroute    = "enroute"
	StatusArrived    = "arrived"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// statusOrder defines forward progression for driver transitions. Cancelled
// is deliberately absent: it is reachable from any non-terminal state and
// exempt from ordering.
var statusOrder = map[string]int{
	StatusAssigned:   1,
	StatusEnroute:    2,
	StatusArrived:    3,
	StatusInProgress: 4,
	StatusCompleted:  5,
}

// allowedUpdates is the set of statuses a driver may request.
var allowedUpdates = map[string]bool{
	StatusAssigned:   true,
	StatusEnroute:    true,
	StatusArrived:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// KnownStatus reports whether s names any lifecycle state.
func KnownStatus(s string) bool {
	return s == StatusRequested || allowedUpdates[s]
}

// IsTerminal reports whether a status permits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Ride represents a ride record. Each milestone timestamp is written at most
// once, the first time the ride reaches that status.
type Ride struct {
	ID                     uuid.UUID  `json:"ride_id"`
	RiderName              string     `json:"rider_name"`
	RiderPhoneRaw          string     `json:"-"`
	RiderPhone             string     `json:"-"`
	Pickup                 string     `json:"pickup"`
	Dropoff                string     `json:"dropoff"`
	ServiceType            string     `json:"service_type"`
	EstimatedDistanceMiles float64    `json:"estimated_distance_miles"`
	EstimatedDurationMin   float64    `json:"estimated_duration_min"`
	EstimatedPriceUSD      float64    `json:"estimated_price_usd"`
	Status                 string     `json:"status"`
	AssignedDriverID       *uuid.UUID `json:"assigned_driver_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at_utc"`
	AssignedAt             *time.Time `json:"assigned_at_utc,omitempty"`
	EnrouteAt              *time.Time `json:"enroute_at_utc,omitempty"`
	ArrivedAt              *time.Time `json:"arrived_at_utc,omitempty"`
	InProgressAt           *time.Time `json:"in_progress_at_utc,omitempty"`
	CompletedAt            *time.Time `json:"completed_at_utc,omitempty"`
	CancelledAt            *time.Time `json:"cancelled_at_utc,omitempty"`
}

// QuoteRequest is the body for POST /api/v1/rides/quote.
type QuoteRequest struct {
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
	ServiceType string `json:"service_type"`
}

// CreateRequest is the body for POST /api/v1/rides.
type CreateRequest struct {
	RiderName   string `json:"rider_name"`
	RiderPhone  string `json:"rider_phone"`
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
	ServiceType string `json:"service_type"`
}

// StatusUpdateRequest is the body for POST /api/v1/driver/rides/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
