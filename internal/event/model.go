package event

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Importance decides how many reminders one occurrence receives.
type Importance string

const (
	ImportanceNormal    Importance = "normal"
	ImportanceImportant Importance = "important"
	ImportanceCritical  Importance = "critical"
)

// Recurrence decides how the start time advances once an occurrence has
// used up its reminders.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Event is the sole persisted entity. Scheduling state lives in plain
// columns rather than in-process timers so it survives restarts; State
// derives the machine state from them.
type Event struct {
	ID uint64 `gorm:"primaryKey"`

	Name     string `gorm:"type:text;not null"`
	Location string `gorm:"type:text;not null;default:''"`

	StartTime           time.Time `gorm:"type:timestamptz;not null"`
	RemindBeforeMinutes int       `gorm:"not null;default:0"`

	Importance Importance `gorm:"type:text;not null;default:'normal'"`
	Recurrence Recurrence `gorm:"type:text;not null;default:'none'"`

	Channels pq.StringArray `gorm:"type:text[];not null;default:'{popup}'"`

	RepeatCount          int        `gorm:"not null;default:0"`
	NextNotify           *time.Time `gorm:"type:timestamptz"`
	Notified             bool       `gorm:"not null;default:false"`
	PendingAutoMark      bool       `gorm:"not null;default:false"`
	PendingAutoMarkSince *time.Time `gorm:"type:timestamptz"`
	IsStopped            bool       `gorm:"not null;default:false"`

	// Version is the optimistic concurrency token. Every write goes through
	// a compare-and-set on (id, version); see Repo.Update.
	Version uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// State is the scheduling state derived from the stored flags.
type State string

const (
	StateIdle                 State = "idle"
	StateDue                  State = "due"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateStopped              State = "stopped"
)

// State derives the machine state. Precedence matters: a stopped event is
// Stopped no matter what else is set, and a pending event belongs to the
// confirmation path, never the due scan.
func (e *Event) State(now time.Time) State {
	switch {
	case e.IsStopped:
		return StateStopped
	case e.PendingAutoMark:
		return StateAwaitingConfirmation
	case e.NextNotify != nil && !e.NextNotify.After(now):
		return StateDue
	default:
		return StateIdle
	}
}

// ReminderAt returns when the current occurrence's first reminder should
// fire, floored at now so an already-past offset becomes immediately due
// instead of persisting a timestamp in the past.
func (e *Event) ReminderAt(now time.Time) time.Time {
	at := e.StartTime.Add(-time.Duration(e.RemindBeforeMinutes) * time.Minute)
	if at.Before(now) {
		return now
	}
	return at
}

// ParseImportance normalizes a stored or user-supplied importance value.
// Unknown values fall back to normal; ok reports whether the input was a
// recognized variant (empty counts as recognized and means the default).
func ParseImportance(s string) (Importance, bool) {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceNormal, "":
		return ImportanceNormal, true
	case ImportanceImportant:
		return ImportanceImportant, true
	case ImportanceCritical:
		return ImportanceCritical, true
	default:
		return ImportanceNormal, false
	}
}

// ParseRecurrence normalizes a stored or user-supplied recurrence value.
// Unknown values fall back to none.
func ParseRecurrence(s string) (Recurrence, bool) {
	switch Recurrence(strings.ToLower(strings.TrimSpace(s))) {
	case RecurrenceNone, "":
		return RecurrenceNone, true
	case RecurrenceDaily:
		return RecurrenceDaily, true
	case RecurrenceWeekly:
		return RecurrenceWeekly, true
	case RecurrenceMonthly:
		return RecurrenceMonthly, true
	default:
		return RecurrenceNone, false
	}
}
