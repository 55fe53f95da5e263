package event

// ReminderBudget maps importance to the total number of reminders one
// occurrence receives. Total over all inputs: anything unrecognized gets
// the normal budget.
func ReminderBudget(i Importance) int {
	switch i {
	case ImportanceImportant:
		return 2
	case ImportanceCritical:
		return 3
	default:
		return 1
	}
}
