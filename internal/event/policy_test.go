package event

import "testing"

func TestReminderBudget(t *testing.T) {
	tests := []struct {
		imp  Importance
		want int
	}{
		{ImportanceNormal, 1},
		{ImportanceImportant, 2},
		{ImportanceCritical, 3},
		{"severe", 1}, // unknown falls back to normal
		{"", 1},
	}
	for _, tt := range tests {
		if got := ReminderBudget(tt.imp); got != tt.want {
			t.Errorf("ReminderBudget(%q) = %d, want %d", tt.imp, got, tt.want)
		}
	}
}
