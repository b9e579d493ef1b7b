package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeRideBooked     = "ride_booked"
	TypeRideAssigned   = "ride_assigned"
	TypeRideEnroute    = "ride_enroute"
	TypeRideArrived    = "ride_arrived"
	TypeRideInProgress = "ride_in_progress"
	TypeRideCompleted  = "ride_completed"
	TypeRideCancelled  = "ride_cancelled"
)

var statusNotificationType = map[string]string{
	"enroute":     TypeRideEnroute,
	"arrived":     TypeRideArrived,
	"in_progress": TypeRideInProgress,
	"completed":   TypeRideCompleted,
	"cancelled":   TypeRideCancelled,
}

// RideEvent carries the display fields notification messages interpolate.
type RideEvent struct {
	RideID     uuid.UUID
	DriverID   *uuid.UUID
	DriverName string
	RiderName  string
	Pickup     string
	Dropoff    string
}

// Notifier fans a ride event out into per-recipient notifications through
// the sink.
type Notifier struct {
	sink Sink
}

// NewNotifier creates a notifier writing through the given sink.
func NewNotifier(sink Sink) *Notifier { return &Notifier{sink: sink} }

// RideBooked records booking notifications for the rider and the dispatch
// board.
func (n *Notifier) RideBooked(ctx context.Context, ev RideEvent) {
	rideRef := ev.RideID
	n.record(ctx, ev, TypeRideBooked, "Ride Booked", RecipientRider, &rideRef,
		fmt.Sprintf("Your ride from %s to %s has been booked. We're finding you a driver.", ev.Pickup, ev.Dropoff))
	n.record(ctx, ev, TypeRideBooked, "Ride Booked", RecipientAdmin, nil,
		fmt.Sprintf("New ride request: %s from %s to %s", ev.RiderName, ev.Pickup, ev.Dropoff))
}

// RideAssigned records assignment notifications for rider, driver and admin.
func (n *Notifier) RideAssigned(ctx context.Context, ev RideEvent) {
	rideRef := ev.RideID
	n.record(ctx, ev, TypeRideAssigned, "Ride Assigned", RecipientRider, &rideRef,
		fmt.Sprintf("Your driver %s is on the way! They'll arrive shortly.", ev.DriverName))
	n.record(ctx, ev, TypeRideAssigned, "Ride Assigned", RecipientDriver, ev.DriverID,
		fmt.Sprintf("You've been assigned a ride: %s from %s to %s", ev.RiderName, ev.Pickup, ev.Dropoff))
	n.record(ctx, ev, TypeRideAssigned, "Ride Assigned", RecipientAdmin, nil,
		fmt.Sprintf("Ride assigned: %s assigned to %s's ride", ev.DriverName, ev.RiderName))
}

// RideStatusChanged records notifications for a driver-side status
// transition. Unknown statuses are ignored. Admins are only notified for
// terminal transitions.
func (n *Notifier) RideStatusChanged(ctx context.Context, ev RideEvent, status string) {
	typ, ok := statusNotificationType[status]
	if !ok {
		return
	}

	riderMsg, driverMsg, title := statusMessages(ev, status)
	rideRef := ev.RideID
	n.record(ctx, ev, typ, title, RecipientRider, &rideRef, riderMsg)
	n.record(ctx, ev, typ, title, RecipientDriver, ev.DriverID, driverMsg)
	if status == "completed" || status == "cancelled" {
		n.record(ctx, ev, typ, title, RecipientAdmin, nil,
			fmt.Sprintf("Ride %s: %s's ride with %s", status, ev.RiderName, ev.DriverName))
	}
}

func statusMessages(ev RideEvent, status string) (rider, driver, title string) {
	switch status {
	case "enroute":
		return fmt.Sprintf("Your driver %s is on the way to %s", ev.DriverName, ev.Pickup),
			fmt.Sprintf("You're en route to pick up %s", ev.RiderName),
			"Driver En Route"
	case "arrived":
		return fmt.Sprintf("Your driver %s has arrived at %s", ev.DriverName, ev.Pickup),
			"You've arrived at the pickup location",
			"Driver Arrived"
	case "in_progress":
		return fmt.Sprintf("Your ride with %s has started. Enjoy your trip!", ev.DriverName),
			fmt.Sprintf("Ride in progress with %s", ev.RiderName),
			"Ride Started"
	case "completed":
		return "Your ride has been completed. Thank you for riding with GlobApp!",
			fmt.Sprintf("Ride completed with %s", ev.RiderName),
			"Ride Completed"
	default: // cancelled
		return "Your ride has been cancelled.",
			fmt.Sprintf("Ride cancelled: %s's ride", ev.RiderName),
			"Ride Cancelled"
	}
}

func (n *Notifier) record(ctx context.Context, ev RideEvent, typ, title, recipientType string, recipientID *uuid.UUID, message string) {
	n.sink.Record(ctx, &Notification{
		ID:            uuid.New(),
		RideID:        ev.RideID,
		DriverID:      ev.DriverID,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Type:          typ,
		Title:         title,
		Message:       message,
		Channel:       "in_app",
		Status:        "pending",
		Metadata: map[string]string{
			"rider_name":  ev.RiderName,
			"driver_name": ev.DriverName,
			"pickup":      ev.Pickup,
			"dropoff":     ev.Dropoff,
		},
		CreatedAt: time.Now().UTC(),
	})
}
