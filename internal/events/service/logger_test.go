package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/relay/internal/events/domain"
)

func TestLogger_Publish(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	err := NewLogger().Publish(ctx, domain.Event{
		Type:       "relay.sms.sent",
		Channel:    "sms",
		TemplateID: "alert",
		Meta:       map[string]string{"recipients": "1"},
		Time:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"type":"relay.sms.sent"`)
	assert.Contains(t, out, `"template_id":"alert"`)
	assert.Contains(t, out, `"recipients":"1"`)
}
