package event

import (
	"testing"
	"time"
)

func TestStateDerivation(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		ev   Event
		want State
	}{
		{"idle without next_notify", Event{}, StateIdle},
		{"idle with future next_notify", Event{NextNotify: &future}, StateIdle},
		{"due at exactly now", Event{NextNotify: &now}, StateDue},
		{"due in the past", Event{NextNotify: &past}, StateDue},
		{"awaiting confirmation", Event{NextNotify: &past, PendingAutoMark: true}, StateAwaitingConfirmation},
		{"stopped wins over everything", Event{IsStopped: true, NextNotify: &past, PendingAutoMark: true}, StateStopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.State(now); got != tt.want {
				t.Errorf("State() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReminderAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	ev := Event{StartTime: now.Add(time.Hour), RemindBeforeMinutes: 15}
	if got, want := ev.ReminderAt(now), now.Add(45*time.Minute); !got.Equal(want) {
		t.Errorf("ReminderAt = %v, want %v", got, want)
	}

	// offset landing in the past floors to now
	late := Event{StartTime: now.Add(5 * time.Minute), RemindBeforeMinutes: 30}
	if got := late.ReminderAt(now); !got.Equal(now) {
		t.Errorf("past reminder time: got %v, want %v", got, now)
	}
}

func TestParseImportance(t *testing.T) {
	tests := []struct {
		in     string
		want   Importance
		wantOK bool
	}{
		{"normal", ImportanceNormal, true},
		{"Important", ImportanceImportant, true},
		{" CRITICAL ", ImportanceCritical, true},
		{"", ImportanceNormal, true},
		{"severe", ImportanceNormal, false},
	}
	for _, tt := range tests {
		got, ok := ParseImportance(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseImportance(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		in     string
		want   Recurrence
		wantOK bool
	}{
		{"none", RecurrenceNone, true},
		{"Daily", RecurrenceDaily, true},
		{"weekly", RecurrenceWeekly, true},
		{" monthly ", RecurrenceMonthly, true},
		{"", RecurrenceNone, true},
		{"fortnightly", RecurrenceNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseRecurrence(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRecurrence(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
