package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/corvusHold/relay/internal/config"
	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
	"github.com/corvusHold/relay/internal/metrics"
	"github.com/corvusHold/relay/internal/version"
)

// Ensure Mailjet implements domain.Gateway
var _ gdomain.Gateway = (*Mailjet)(nil)

const (
	sendEmailPath = "/v3.1/send"
	sendSMSPath   = "/v4/sms-send"

	// maxErrorBody caps how much of a provider error body is kept in memory.
	maxErrorBody = 64 << 10
)

type Mailjet struct {
	baseURL   string
	apiKey    string
	apiSecret string
	smsToken  string
	http      *http.Client
}

func NewMailjet(cfg config.Config) *Mailjet {
	return &Mailjet{
		baseURL:   cfg.MailjetAPIURL,
		apiKey:    cfg.MailjetAPIKeyPublic,
		apiSecret: cfg.MailjetSecret,
		smsToken:  cfg.MailjetSMSToken,
		http:      &http.Client{Timeout: cfg.ProviderTimeout},
	}
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func (m *Mailjet) WithHTTPClient(c *http.Client) *Mailjet { m.http = c; return m }

func (m *Mailjet) SendEmail(ctx context.Context, msg gdomain.EmailMessage) error {
	if m.apiKey == "" || m.apiSecret == "" {
		return gdomain.ErrNotConfigured{Channel: "email"}
	}
	return m.post(ctx, "email", sendEmailPath, gdomain.EmailRequest{Messages: []gdomain.EmailMessage{msg}}, func(req *http.Request) {
		req.SetBasicAuth(m.apiKey, m.apiSecret)
	})
}

func (m *Mailjet) SendSMS(ctx context.Context, msg gdomain.SMSMessage) error {
	if m.smsToken == "" {
		return gdomain.ErrNotConfigured{Channel: "sms"}
	}
	return m.post(ctx, "sms", sendSMSPath, msg, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+m.smsToken)
	})
}

func (m *Mailjet) post(ctx context.Context, channel, path string, payload any, auth func(*http.Request)) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	auth(req)

	start := time.Now()
	resp, err := m.http.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest(channel, "error", time.Since(start).Seconds())
		return fmt.Errorf("mailjet %s request: %w", channel, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveProviderRequest(channel, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		zerolog.Ctx(ctx).Warn().
			Str("channel", channel).
			Int("status", resp.StatusCode).
			Msg("provider rejected message")
		return &gdomain.UpstreamError{
			StatusCode:  resp.StatusCode,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
