package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/relay/internal/config"
	gdomain "github.com/corvusHold/relay/internal/gateway/domain"
)

func newTestMailjet(cfg config.Config) (*Mailjet, *httpmock.MockTransport) {
	if cfg.MailjetAPIURL == "" {
		cfg.MailjetAPIURL = "https://api.mailjet.com"
	}
	mt := httpmock.NewMockTransport()
	return NewMailjet(cfg).WithHTTPClient(&http.Client{Transport: mt}), mt
}

type captured struct {
	auth string
	ct   string
	body []byte
}

func captureResponder(c *captured, status int, body string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		c.auth = req.Header.Get("Authorization")
		c.ct = req.Header.Get("Content-Type")
		c.body, _ = io.ReadAll(req.Body)
		return httpmock.NewStringResponse(status, body), nil
	}
}

func TestMailjet_SendEmail_BasicAuthAndBody(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetAPIKeyPublic: "my-public-api-key", MailjetSecret: "my-secret-api-key"})
	var got captured
	mt.RegisterResponder(http.MethodPost, "https://api.mailjet.com/v3.1/send", captureResponder(&got, 200, `{"Messages":[]}`))

	err := m.SendEmail(context.Background(), gdomain.EmailMessage{
		TemplateID:       123,
		TemplateLanguage: true,
		From:             gdomain.Address{Email: "mytestadmin@mailjetproxy.com", Name: "My Test Admin"},
		To:               []json.RawMessage{json.RawMessage(`{"Email":"pascal@example.com"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mt.GetTotalCallCount())
	// base64("my-public-api-key:my-secret-api-key")
	assert.Equal(t, "Basic bXktcHVibGljLWFwaS1rZXk6bXktc2VjcmV0LWFwaS1rZXk=", got.auth)
	assert.Equal(t, "application/json", got.ct)
	assert.JSONEq(t, `{"Messages":[{
		"From":{"Email":"mytestadmin@mailjetproxy.com","Name":"My Test Admin"},
		"TemplateID":123,
		"TemplateLanguage":true,
		"To":[{"Email":"pascal@example.com"}]
	}]}`, string(got.body))
}

func TestMailjet_SendSMS_BearerAuthAndBody(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetSMSToken: "my-secret-api-token"})
	var got captured
	mt.RegisterResponder(http.MethodPost, "https://api.mailjet.com/v4/sms-send", captureResponder(&got, 200, `{}`))

	err := m.SendSMS(context.Background(), gdomain.SMSMessage{Text: "Hi buddy", From: "My Test Sender", To: "+33601020304"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer my-secret-api-token", got.auth)
	assert.JSONEq(t, `{"From":"My Test Sender","Text":"Hi buddy","To":"+33601020304"}`, string(got.body))
}

func TestMailjet_UpstreamErrorKeepsStatusAndBody(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetSMSToken: "tok"})
	mt.RegisterResponder(http.MethodPost, "https://api.mailjet.com/v4/sms-send",
		func(req *http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(http.StatusBadRequest, `{"ErrorMessage":"Invalid To"}`)
			resp.Header.Set("Content-Type", "application/json")
			return resp, nil
		})

	err := m.SendSMS(context.Background(), gdomain.SMSMessage{Text: "x", To: "+33601020304"})
	var upErr *gdomain.UpstreamError
	require.True(t, errors.As(err, &upErr), "expected UpstreamError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
	assert.Equal(t, `{"ErrorMessage":"Invalid To"}`, string(upErr.Body))
	assert.Equal(t, "application/json", upErr.ContentType)
}

func TestMailjet_TransportError(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetAPIKeyPublic: "p", MailjetSecret: "s"})
	mt.RegisterResponder(http.MethodPost, "https://api.mailjet.com/v3.1/send", httpmock.NewErrorResponder(errors.New("connection refused")))

	err := m.SendEmail(context.Background(), gdomain.EmailMessage{TemplateID: 1})
	require.Error(t, err)
	var upErr *gdomain.UpstreamError
	assert.False(t, errors.As(err, &upErr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMailjet_MissingCredentialsNoCall(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetSMSToken: "only-sms"})

	err := m.SendEmail(context.Background(), gdomain.EmailMessage{TemplateID: 1})
	var nc gdomain.ErrNotConfigured
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "email", nc.Channel)

	m2, mt2 := newTestMailjet(config.Config{MailjetAPIKeyPublic: "p", MailjetSecret: "s"})
	err = m2.SendSMS(context.Background(), gdomain.SMSMessage{})
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "sms", nc.Channel)

	assert.Zero(t, mt.GetTotalCallCount())
	assert.Zero(t, mt2.GetTotalCallCount())
}

func TestMailjet_CustomBaseURL(t *testing.T) {
	m, mt := newTestMailjet(config.Config{MailjetAPIURL: "https://sandbox.example.test", MailjetSMSToken: "tok"})
	mt.RegisterResponder(http.MethodPost, "https://sandbox.example.test/v4/sms-send", httpmock.NewStringResponder(201, `{}`))

	require.NoError(t, m.SendSMS(context.Background(), gdomain.SMSMessage{Text: "x", To: "y"}))
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
