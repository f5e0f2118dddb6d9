// Package notify carries notable application events to the outside world.
// The workflow writes each event into the outbox inside its transaction; the
// relay publishes committed rows to Kafka for the SMS and email senders.
package notify

import (
	"context"
	"log/slog"
	"time"

	"homestay/pkg/domain"
)

// EventType names what happened.
type EventType string

const (
	EventStatusChanged       EventType = "status_changed"
	EventCertificateIssued   EventType = "certificate_issued"
	EventCorrectionRequested EventType = "correction_requested"
	EventParentSuperseded    EventType = "parent_superseded"
	EventPaymentFailed       EventType = "payment_failed"
)

// Event is the transport-neutral notification payload.
type Event struct {
	Type              EventType            `json:"type"`
	ApplicationID     domain.ApplicationID `json:"applicationId"`
	ApplicationNumber string               `json:"applicationNumber,omitempty"`
	OwnerID           domain.UserID        `json:"ownerId"`
	ActorID           domain.UserID        `json:"actorId"`
	PreviousStatus    string               `json:"previousStatus,omitempty"`
	NewStatus         string               `json:"newStatus,omitempty"`
	Feedback          string               `json:"feedback,omitempty"`
	CertificateNumber string               `json:"certificateNumber,omitempty"`
	OccurredAt        time.Time            `json:"occurredAt"`
}

// LogNotifier writes events to the structured log. It is the default
// notifier when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.logger.InfoContext(ctx, "application event",
		"log_type", "notification",
		"event_type", event.Type,
		"application_id", event.ApplicationID,
		"application_number", event.ApplicationNumber,
		"owner_id", event.OwnerID,
		"previous_status", event.PreviousStatus,
		"new_status", event.NewStatus,
		"certificate_number", event.CertificateNumber,
	)
	return nil
}
