package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	"github.com/corvusHold/relay/internal/relay/domain"
)

func (s *Service) sendEmail(ctx context.Context, templateID string, body []byte, recipients *int) (domain.Outcome, error) {
	if !s.policy.TemplateAllowed(templateID) {
		return domain.Outcome{}, domain.NotFound()
	}

	req := parseBody(body)
	to := req.value("To")
	if !truthy(to) {
		return domain.OutcomeNoEmail, nil
	}
	if _, ok := to.([]any); !ok {
		return domain.Outcome{}, domain.Malformed(domain.ReasonBadRecipientFormat)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(req.raw("To"), &list); err != nil {
		return domain.Outcome{}, domain.Malformed(domain.ReasonBadRecipientFormat)
	}
	*recipients = len(list)
	if max := s.policy.MaxRecipients; max > 0 && len(list) > max {
		return domain.Outcome{}, domain.PolicyViolation(domain.ReasonTooManyRecipients)
	}

	tid, err := strconv.Atoi(strings.TrimSpace(templateID))
	if err != nil {
		return domain.Outcome{}, domain.Malformed(domain.ReasonTemplateNotInt)
	}
	msg := gdomain.EmailMessage{
		TemplateID:       tid,
		TemplateLanguage: true,
		From:             s.policy.Sender,
		To:               list,
	}
	if s.policy.DisableTracking {
		msg.TrackOpens = domain.TrackingDisabled
		msg.TrackClicks = domain.TrackingDisabled
	}
	if s.policy.AdminEmail != "" {
		msg.TemplateErrorReporting = &gdomain.Address{Email: s.policy.AdminEmail}
	}

	vars, err := SanitizeVariables(req.value("Variables"), s.policy.MaxVariableLength)
	if err != nil {
		return domain.Outcome{}, err
	}
	if vars != nil {
		msg.Variables = vars
	}
	if truthy(req.value("CustomCampaign")) {
		msg.CustomCampaign = req.raw("CustomCampaign")
	}

	if err := s.forward(ctx, func(ctx context.Context) error { return s.gw.SendEmail(ctx, msg) }); err != nil {
		return domain.Outcome{}, err
	}
	return domain.OutcomeEmailSent, nil
}
