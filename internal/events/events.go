package events

// RideRequestedEvent is published to ride.requested.
type RideRequestedEvent struct {
	RideID      string `json:"ride_id"`
	RiderName   string `json:"rider_name"`
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
	ServiceType string `json:"service_type"`
	RequestedAt string `json:"requested_at"`
}

// RideAssignedEvent is published to ride.assigned.
type RideAssignedEvent struct {
	RideID     string `json:"ride_id"`
	DriverID   string `json:"driver_id"`
	DriverName string `json:"driver_name"`
	AssignedAt string `json:"assigned_at"`
}

// RideStatusChangedEvent is published to ride.status_changed on every
// driver-side transition.
type RideStatusChangedEvent struct {
	RideID    string `json:"ride_id"`
	DriverID  string `json:"driver_id"`
	Status    string `json:"status"`
	ChangedAt string `json:"changed_at"`
}
