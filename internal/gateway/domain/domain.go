package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Gateway forwards fully built payloads to the messaging provider.
// Implementations make exactly one attempt per call.
type Gateway interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
	SendSMS(ctx context.Context, msg SMSMessage) error
}

// Address is a provider email identity.
type Address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

// EmailMessage is one entry of the Mailjet v3.1 "Messages" list.
// To is forwarded verbatim so that callers may pass any recipient fields the
// provider understands (Name, Vars, ...).
type EmailMessage struct {
	TemplateID             int               `json:"TemplateID"`
	TemplateLanguage       bool              `json:"TemplateLanguage"`
	From                   Address           `json:"From"`
	To                     []json.RawMessage `json:"To"`
	TrackOpens             string            `json:"TrackOpens,omitempty"`
	TrackClicks            string            `json:"TrackClicks,omitempty"`
	TemplateErrorReporting *Address          `json:"TemplateErrorReporting,omitempty"`
	Variables              map[string]string `json:"Variables,omitempty"`
	CustomCampaign         json.RawMessage   `json:"CustomCampaign,omitempty"`
}

// EmailRequest is the body of POST /v3.1/send.
type EmailRequest struct {
	Messages []EmailMessage `json:"Messages"`
}

// SMSMessage is the body of POST /v4/sms-send.
type SMSMessage struct {
	Text string `json:"Text"`
	From string `json:"From"`
	To   string `json:"To"`
}

// UpstreamError is returned when the provider answered with an error status.
// Body and ContentType are kept verbatim so they can be surfaced to the caller.
type UpstreamError struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, truncate(string(e.Body), 256))
}

// ErrNotConfigured is returned when the credentials for a channel are missing.
type ErrNotConfigured struct {
	Channel string
}

func (e ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s provider credentials are not configured", e.Channel)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
