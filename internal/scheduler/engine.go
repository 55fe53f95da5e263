package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"remindd/internal/event"
)

// Engine owns every state transition an event goes through after creation:
// the periodic due scan, the confirmation/advance path and the auto-mark
// watchdog all run here against the shared store.
type Engine struct {
	Store Store
	Sink  Sink
	Log   *zerolog.Logger

	// GracePeriod is how long a fired reminder waits for the user before the
	// watchdog confirms it automatically.
	GracePeriod time.Duration
	// IntraReminderDelay is the spacing between escalated reminders of the
	// same occurrence.
	IntraReminderDelay time.Duration

	// Now is the clock; nil means time.Now. Injectable for tests.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Run drives the periodic tick and watchdog passes until ctx is cancelled,
// then waits for any in-flight pass to finish.
func (e *Engine) Run(ctx context.Context, tickEvery, watchdogEvery time.Duration) error {
	c := cron.New()
	if _, err := c.AddFunc("@every "+tickEvery.String(), func() {
		if err := e.Tick(ctx); err != nil {
			e.Log.Error().Err(err).Msg("scheduler tick failed")
		}
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc("@every "+watchdogEvery.String(), func() {
		if err := e.Watchdog(ctx); err != nil {
			e.Log.Error().Err(err).Msg("watchdog pass failed")
		}
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Tick runs one due scan. Events already stopped or awaiting confirmation
// never come back from ListDue, so a tick retried with no time elapsed is a
// no-op. Tolerates irregular invocation: anything overdue, however old, is
// simply due now.
func (e *Engine) Tick(ctx context.Context) error {
	now := e.now()
	due, err := e.Store.ListDue(ctx, now)
	if err != nil {
		return err
	}
	for _, ev := range due {
		if err := e.fire(ctx, ev, now); err != nil {
			e.Log.Error().Err(err).Uint64("event_id", ev.ID).Msg("reminder fire failed")
		}
	}
	return nil
}

// fire emits the notification for a due event and flips it into
// AwaitingConfirmation. next_notify is deliberately left alone here: it only
// moves on confirmation or auto-mark, so at most one notification per event
// is ever outstanding.
func (e *Engine) fire(ctx context.Context, ev event.Event, now time.Time) error {
	if ev.State(now) != event.StateDue {
		return nil
	}

	e.deliver(ctx, ev)

	for {
		err := e.Store.Update(ctx, ev.ID, ev.Version, map[string]any{
			"notified":                true,
			"repeat_count":            ev.RepeatCount + 1,
			"pending_auto_mark":       true,
			"pending_auto_mark_since": now,
		})
		if err == nil || err == event.ErrNotFound {
			// a record deleted between scan and act is a benign no-op
			return nil
		}
		if err != event.ErrConflict {
			return err
		}

		// Lost the race: re-read and re-decide against the fresh record.
		// The notification is never re-sent on this path.
		fresh, err := e.Store.Get(ctx, ev.ID)
		if err == event.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if fresh.State(now) != event.StateDue {
			return nil
		}
		ev = fresh
	}
}

func (e *Engine) deliver(ctx context.Context, ev event.Event) {
	title := ev.Name + " (" + string(ev.Importance) + ")"
	body := "starts at " + ev.StartTime.Format("15:04 02/01/2006")
	if ev.Location != "" {
		body += " at " + ev.Location
	}

	channels := ev.Channels
	if len(channels) == 0 {
		channels = []string{"popup"}
	}
	for _, ch := range channels {
		err := e.Sink.Notify(ctx, Notification{
			EventID:    ev.ID,
			Title:      title,
			Body:       body,
			Importance: ev.Importance,
			Channel:    ch,
		})
		if err != nil {
			// best effort: a lost notification must not stall the event
			e.Log.Error().Err(err).
				Uint64("event_id", ev.ID).
				Str("channel", ch).
				Msg("notification delivery failed")
		}
	}
}

// Watchdog confirms reminders the user has ignored past the grace period,
// running the exact same advance logic as an explicit acknowledgment.
func (e *Engine) Watchdog(ctx context.Context) error {
	cutoff := e.now().Add(-e.GracePeriod)
	expired, err := e.Store.ListExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, ev := range expired {
		if err := e.Confirm(ctx, ev.ID); err != nil {
			e.Log.Error().Err(err).Uint64("event_id", ev.ID).Msg("auto-mark failed")
		}
	}
	return nil
}
