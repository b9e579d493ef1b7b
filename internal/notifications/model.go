package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Recipient types.
const (
	RecipientRider  = "rider"
	RecipientDriver = "driver"
	RecipientAdmin  = "admin"
)

// Notification is one message for one recipient about one ride event.
type Notification struct {
	ID            uuid.UUID
	RideID        uuid.UUID
	DriverID      *uuid.UUID
	RecipientType string
	RecipientID   *uuid.UUID
	Type          string
	Title         string
	Message       string
	Channel       string
	Status        string
	Metadata      map[string]string
	CreatedAt     time.Time
}
