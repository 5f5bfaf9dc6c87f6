package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_HTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound(), http.StatusNotFound},
		{Malformed(ReasonBadRecipientFormat), http.StatusUnprocessableEntity},
		{PolicyViolation(ReasonTooManyRecipients), http.StatusForbidden},
		{Upstream(http.StatusUnauthorized, []byte("nope"), "text/plain"), http.StatusUnauthorized},
		{Unreachable(errors.New("dial tcp")), http.StatusBadGateway},
		{Internal("template", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s: expected %d got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestAsError_Wrapped(t *testing.T) {
	err := fmt.Errorf("send sms: %w", PolicyViolation(ReasonRecipientForbidden))
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("expected typed error to be found")
	}
	if e.Message != ReasonRecipientForbidden {
		t.Fatalf("unexpected message %q", e.Message)
	}
	if KindOf(err) != KindPolicy {
		t.Fatalf("expected policy kind")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatalf("untyped errors must be internal")
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("formatting", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
}

func TestPolicy_TemplateAllowed(t *testing.T) {
	open := Policy{}
	if !open.TemplateAllowed("anything") {
		t.Fatalf("empty allow-list must allow all")
	}
	p := Policy{TemplateAllowList: map[string]struct{}{"123": {}}}
	if !p.TemplateAllowed("123") || p.TemplateAllowed("124") {
		t.Fatalf("allow-list not enforced")
	}
}

func TestPolicy_SMSTemplate(t *testing.T) {
	p := Policy{SMSTemplates: map[string]string{"alert": "Hi", "blank": ""}}
	if body, ok := p.SMSTemplate("alert"); !ok || body != "Hi" {
		t.Fatalf("expected alert template")
	}
	if _, ok := p.SMSTemplate("blank"); ok {
		t.Fatalf("blank template must not authorize")
	}
	if _, ok := p.SMSTemplate("missing"); ok {
		t.Fatalf("missing template must not authorize")
	}
}
