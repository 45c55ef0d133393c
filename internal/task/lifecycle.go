package task

import "time"

// transitions is the complete set of legal status moves. Anything absent,
// including a move to the current status, is rejected.
var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress},
	StatusInProgress: {StatusPaused, StatusCompleted},
	StatusPaused:     {StatusInProgress},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s.
func NextStatuses(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

// applyStatus moves t to newStatus and maintains the timestamp invariants:
// CompletedAt is set exactly when the task enters Completed.
func applyStatus(t *Task, newStatus Status, now time.Time) {
	t.Status = newStatus
	t.UpdatedAt = now
	if newStatus == StatusCompleted {
		ts := now
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
}
