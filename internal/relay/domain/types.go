package domain

import (
	"context"
	"net/http"
	"regexp"

	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Caller-visible success messages.
const (
	MsgNoEmailSent = "No email sent"
	MsgMailSent    = "Mail sent"
	MsgNoSMSSent   = "No SMS sent"
	MsgSMSSent     = "SMS sent"
)

// TrackingDisabled is the Mailjet value turning open/click tracking off.
const TrackingDisabled = "disabled"

// Policy is the immutable rule set both pipelines are evaluated against.
// It is built once at start-up and only read afterwards.
type Policy struct {
	// TemplateAllowList restricts email templates; empty allows all.
	TemplateAllowList map[string]struct{}
	// MaxRecipients caps the email audience; 0 is unlimited.
	MaxRecipients int
	// MaxVariableLength caps each variable value in characters; 0 is unlimited.
	MaxVariableLength int
	// PhonePattern must match SMS recipients from their first character; nil disables the check.
	PhonePattern *regexp.Regexp

	Sender          gdomain.Address
	AdminEmail      string
	SMSSender       string
	DisableTracking bool

	// SMSTemplates maps a template id to its body; presence authorizes the id.
	SMSTemplates map[string]string
}

// TemplateAllowed reports whether an email template id passes the allow-list.
func (p Policy) TemplateAllowed(id string) bool {
	if len(p.TemplateAllowList) == 0 {
		return true
	}
	_, ok := p.TemplateAllowList[id]
	return ok
}

// SMSTemplate returns the body configured for id.
func (p Policy) SMSTemplate(id string) (string, bool) {
	t, ok := p.SMSTemplates[id]
	return t, ok && t != ""
}

// Outcome is the caller-visible result of a successful pipeline run.
type Outcome struct {
	Status  int
	Message string
	// Sent is false for silent no-ops.
	Sent bool
}

func noop(msg string) Outcome { return Outcome{Status: http.StatusOK, Message: msg} }
func sent(msg string) Outcome { return Outcome{Status: http.StatusOK, Message: msg, Sent: true} }

var (
	OutcomeNoEmail   = noop(MsgNoEmailSent)
	OutcomeEmailSent = sent(MsgMailSent)
	OutcomeNoSMS     = noop(MsgNoSMSSent)
	OutcomeSMSSent   = sent(MsgSMSSent)
)

// Service runs the email and SMS pipelines. body is the raw inbound request body.
type Service interface {
	SendEmail(ctx context.Context, templateID string, body []byte) (Outcome, error)
	SendSMS(ctx context.Context, templateID string, body []byte) (Outcome, error)
}
