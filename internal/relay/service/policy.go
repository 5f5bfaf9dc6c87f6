package service

import (
	"github.com/corvusHold/relay/internal/config"
	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	"github.com/corvusHold/relay/internal/relay/domain"
)

// NewPolicy derives the relay rules from configuration.
func NewPolicy(cfg config.Config) domain.Policy {
	p := domain.Policy{
		MaxRecipients:     cfg.NumRecipients,
		MaxVariableLength: cfg.VarMaxSize,
		PhonePattern:      cfg.TelPatternRE,
		Sender:            gdomain.Address{Email: cfg.MailSenderEmail, Name: cfg.MailSenderName},
		AdminEmail:        cfg.AdminEmail,
		SMSSender:         cfg.SMSSender,
		DisableTracking:   cfg.MailDisableTracking,
		SMSTemplates:      make(map[string]string, len(cfg.SMSTemplates)),
	}
	if len(cfg.TemplateAllowList) > 0 {
		p.TemplateAllowList = make(map[string]struct{}, len(cfg.TemplateAllowList))
		for _, id := range cfg.TemplateAllowList {
			p.TemplateAllowList[id] = struct{}{}
		}
	}
	for id, body := range cfg.SMSTemplates {
		p.SMSTemplates[id] = body
	}
	return p
}
