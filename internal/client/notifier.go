package client

import (
	"context"
	"time"

	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/ecopanier/backend/pkg/xredis"
)

const reservationEventChannel = "reservation-events"

const (
	EventReserved  = "reserved"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
	EventConverted = "converted_to_free"
	EventLost      = "marked_lost"
)

type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id,omitempty"`
	LotID         string    `json:"lot_id"`
	UserID        string    `json:"user_id,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	At            time.Time `json:"at"`
}

// Notifier is a fire-and-forget sink for lifecycle events. Delivery failures
// are logged and never surfaced to the mutation that triggered them.
type Notifier interface {
	Publish(ctx context.Context, event ReservationEvent)
}

type redisNotifier struct {
	redisClient xredis.Client
}

func NewRedisNotifier(redisClient xredis.Client) *redisNotifier {
	return &redisNotifier{redisClient: redisClient}
}

func (n *redisNotifier) Publish(ctx context.Context, event ReservationEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	if err := n.redisClient.Publish(ctx, reservationEventChannel, event); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish %s event of lot %s: %v",
			event.Type, event.LotID, err)
	}
}
