package reservation

import "cabana/internal/model"

// transitions is the only place legal status edges are defined.
// IN_PROGRESS is known and occupying but has no edges in or out.
var transitions = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCheckedIn, model.StatusCancelled},
	model.StatusCheckedIn: {model.StatusCheckedOut, model.StatusCancelled},
}

// CanTransition checks if moving from one status to another is allowed.
func CanTransition(from, to model.Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s in one step.
func AllowedTransitions(s model.Status) []model.Status {
	return append([]model.Status(nil), transitions[s]...)
}
