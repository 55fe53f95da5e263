package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"remindd/internal/event"
)

// Notification is one fire request handed to the sink.
type Notification struct {
	EventID    uint64
	Title      string
	Body       string
	Importance event.Importance
	Channel    string
}

// Sink delivers notifications to the user. Delivery is best effort: the
// engine logs errors and proceeds, so a missed popup never leaves an event
// stuck.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// LogSink writes each fire request as a structured log line. It stands in
// for the system delivery transport, which lives outside the engine.
type LogSink struct {
	Log *zerolog.Logger
}

func (s *LogSink) Notify(ctx context.Context, n Notification) error {
	s.Log.Info().
		Uint64("event_id", n.EventID).
		Str("channel", n.Channel).
		Str("importance", string(n.Importance)).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("notification")
	return nil
}
