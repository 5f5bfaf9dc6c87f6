package domain

import (
	"context"
	"time"
)

// Event represents a relay audit event.
// Type examples: "relay.email.sent", "relay.sms.rejected"
// Meta may contain reason, recipients count, upstream status, etc.
// Recipient addresses and variable values never go in Meta.
type Event struct {
	Type       string
	Channel    string
	TemplateID string
	Meta       map[string]string
	Time       time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
