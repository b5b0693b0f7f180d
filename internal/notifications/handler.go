package notifications

import (
	"context"
	"fmt"
	"strings"

	"hallbook/pkg/kafka"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

// Notification is a rendered message addressed to one requester.
type Notification struct {
	RecipientID string
	EventType   string
	BookingID   string
	Subject     string
	Body        string
}

// Deliverer sends a rendered notification over some channel.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

type Handler struct {
	deliverer Deliverer
	log       *logger.Logger
}

func NewHandler(deliverer Deliverer, log *logger.Logger) *Handler {
	return &Handler{
		deliverer: deliverer,
		log:       log.Component("notifications"),
	}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent failures and
// go to the DLQ; unknown event types are skipped.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("invalid booking event payload", err)
	}

	n, ok := Render(event)
	if !ok {
		h.log.Debug("Skipping unsupported booking event", "event_type", event.EventType, "event_id", msg.GetEventID())
		return nil
	}

	if err := h.deliverer.Deliver(ctx, n); err != nil {
		return fmt.Errorf("failed to deliver %s notification for booking %s: %w", event.EventType, event.BookingID, err)
	}
	return nil
}

// Render builds the message for event. It reports false for event types that do
// not produce a notification.
func Render(event model.BookingEvent) (Notification, bool) {
	resource := event.ResourceName
	if resource == "" {
		resource = "the requested resource"
	}

	var subject, headline string
	switch event.EventType {
	case model.EventBookingCreated:
		subject = fmt.Sprintf("Booking confirmed: %s", resource)
		headline = fmt.Sprintf("Your booking of %s has been received.", resource)
	case model.EventBookingCancelled:
		subject = fmt.Sprintf("Booking cancelled: %s", resource)
		headline = fmt.Sprintf("Your booking of %s has been cancelled.", resource)
	default:
		return Notification{}, false
	}

	var body strings.Builder
	body.WriteString(headline)
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "Booking ID: %s\n", event.BookingID)
	if event.ResourceType != "" {
		fmt.Fprintf(&body, "Resource type: %s\n", event.ResourceType)
	}
	fmt.Fprintf(&body, "Dates: %s to %s\n", event.StartDate, event.EndDate)
	fmt.Fprintf(&body, "Purpose: %s\n", event.Purpose)
	fmt.Fprintf(&body, "Attendees: %d\n", event.AttendeeCount)
	fmt.Fprintf(&body, "Status: %s\n", event.Status)

	return Notification{
		RecipientID: event.RequesterID,
		EventType:   event.EventType,
		BookingID:   event.BookingID,
		Subject:     subject,
		Body:        body.String(),
	}, true
}

// LogDeliverer writes notifications to the log. Real delivery channels plug in
// behind Deliverer.
type LogDeliverer struct {
	log *logger.Logger
}

func NewLogDeliverer(log *logger.Logger) *LogDeliverer {
	return &LogDeliverer{log: log.Component("delivery")}
}

func (d *LogDeliverer) Deliver(ctx context.Context, n Notification) error {
	d.log.Info("Notification delivered",
		"recipient_id", n.RecipientID,
		"event_type", n.EventType,
		"booking_id", n.BookingID,
		"subject", n.Subject,
	)
	return nil
}
