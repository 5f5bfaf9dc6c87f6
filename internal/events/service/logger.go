package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/corvusHold/relay/internal/events/domain"
)

// Logger is a simple Publisher that logs events.
// In production, replace with a queue or external sink.
type Logger struct{}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	zerolog.Ctx(ctx).Info().
		Str("type", e.Type).
		Str("channel", e.Channel).
		Str("template_id", e.TemplateID).
		Fields(map[string]any{"meta": e.Meta}).
		Time("ts", e.Time).
		Msg("event")
	return nil
}
