package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	evdomain "github.com/corvusHold/relay/internal/events/domain"
	evsvc "github.com/corvusHold/relay/internal/events/service"
	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	"github.com/corvusHold/relay/internal/metrics"
	"github.com/corvusHold/relay/internal/relay/domain"
)

type Service struct {
	policy domain.Policy
	gw     gdomain.Gateway
	pub    evdomain.Publisher
	log    zerolog.Logger
}

var _ domain.Service = (*Service)(nil)

func New(policy domain.Policy, gw gdomain.Gateway) *Service {
	return &Service{policy: policy, gw: gw, pub: evsvc.NewLogger(), log: zerolog.Nop()}
}

// SetPublisher allows tests or callers to override the event publisher.
func (s *Service) SetPublisher(p evdomain.Publisher) { s.pub = p }

// SetLogger sets the fallback logger used when the context carries none.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

// Policy returns the rule set the service was built with.
func (s *Service) Policy() domain.Policy { return s.policy }

func (s *Service) SendEmail(ctx context.Context, templateID string, body []byte) (domain.Outcome, error) {
	var recipients int
	out, err := s.sendEmail(ctx, templateID, body, &recipients)
	s.record(ctx, domain.ChannelEmail, templateID, recipients, out, err)
	return out, err
}

func (s *Service) SendSMS(ctx context.Context, templateID string, body []byte) (domain.Outcome, error) {
	var recipients int
	out, err := s.sendSMS(ctx, templateID, body, &recipients)
	s.record(ctx, domain.ChannelSMS, templateID, recipients, out, err)
	return out, err
}

// forward calls the gateway detached from ctx cancellation: once a message
// has been accepted for delivery a disconnecting caller must not abort it.
func (s *Service) forward(ctx context.Context, call func(context.Context) error) error {
	err := call(context.WithoutCancel(ctx))
	if err == nil {
		return nil
	}
	var upErr *gdomain.UpstreamError
	if errors.As(err, &upErr) {
		return domain.Upstream(upErr.StatusCode, upErr.Body, upErr.ContentType)
	}
	var nc gdomain.ErrNotConfigured
	if errors.As(err, &nc) {
		return domain.Internal("provider credentials missing", err)
	}
	return domain.Unreachable(err)
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

func (s *Service) record(ctx context.Context, channel, templateID string, recipients int, out domain.Outcome, err error) {
	outcome, verb := "noop", "noop"
	meta := map[string]string{}
	if recipients > 0 {
		meta["recipients"] = strconv.Itoa(recipients)
	}
	switch {
	case err != nil:
		kind := domain.KindOf(err)
		outcome = kind.String()
		verb = "rejected"
		if kind == domain.KindUpstream || kind == domain.KindInternal {
			verb = "failed"
		}
		meta["reason"] = kind.String()
		if e, ok := domain.AsError(err); ok && e.UpstreamStatus > 0 {
			meta["upstream_status"] = strconv.Itoa(e.UpstreamStatus)
		}
	case out.Sent:
		outcome, verb = "sent", "sent"
	}
	metrics.IncMessageOutcome(channel, outcome)

	l := s.logger(ctx)
	ev := l.Debug()
	if verb == "failed" {
		ev = l.Warn().Err(err)
	}
	ev.Str("channel", channel).Str("template_id", templateID).Str("outcome", outcome).Msg("relay")

	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:       "relay." + channel + "." + verb,
		Channel:    channel,
		TemplateID: templateID,
		Meta:       meta,
		Time:       time.Now(),
	})
}
