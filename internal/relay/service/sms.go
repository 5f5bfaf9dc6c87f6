package service

import (
	"context"
	"regexp"

	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	"github.com/corvusHold/relay/internal/relay/domain"
)

func (s *Service) sendSMS(ctx context.Context, templateID string, body []byte, recipients *int) (domain.Outcome, error) {
	tmpl, ok := s.policy.SMSTemplate(templateID)
	if !ok {
		return domain.Outcome{}, domain.NotFound()
	}

	req := parseBody(body)
	to := req.value("To")
	if !truthy(to) {
		return domain.OutcomeNoSMS, nil
	}
	recipient, ok := to.(string)
	if !ok {
		return domain.Outcome{}, domain.Malformed(domain.ReasonBadRecipientFormat)
	}
	*recipients = 1
	if !matchesFromStart(s.policy.PhonePattern, recipient) {
		return domain.Outcome{}, domain.PolicyViolation(domain.ReasonRecipientForbidden)
	}

	vars, err := SanitizeVariables(req.value("Variables"), s.policy.MaxVariableLength)
	if err != nil {
		return domain.Outcome{}, err
	}
	text := tmpl
	if vars != nil {
		if text, err = FormatNamed(tmpl, vars); err != nil {
			return domain.Outcome{}, domain.Internal("sms template formatting failed", err)
		}
	}

	msg := gdomain.SMSMessage{Text: text, From: s.policy.SMSSender, To: recipient}
	if err := s.forward(ctx, func(ctx context.Context) error { return s.gw.SendSMS(ctx, msg) }); err != nil {
		return domain.Outcome{}, err
	}
	return domain.OutcomeSMSSent, nil
}

// matchesFromStart reports whether re matches s at offset zero. Trailing
// characters are accepted unless the pattern itself ends with $.
func matchesFromStart(re *regexp.Regexp, s string) bool {
	if re == nil {
		return true
	}
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
