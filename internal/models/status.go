package models

import "fmt"

// Status is the lifecycle state of a presentation's generation run.
type Status string

const (
	// StatusGenerating means a stream session currently owns the record.
	StatusGenerating Status = "generating"
	// StatusCompleted means every expected slide was generated.
	StatusCompleted Status = "completed"
	// StatusDraft means the run stopped early with at least one usable
	// slide persisted. Draft presentations are resumable.
	StatusDraft Status = "draft"
	// StatusFailed means the run stopped with zero usable output.
	StatusFailed Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusGenerating, StatusCompleted, StatusDraft, StatusFailed:
		return true
	}
	return false
}

// allowedTransitions lists, per target status, the prior states a record
// may be in. New records are inserted directly as "generating".
var allowedTransitions = map[Status][]Status{
	StatusCompleted:  {StatusGenerating},
	StatusDraft:      {StatusGenerating},
	StatusFailed:     {StatusGenerating},
	StatusGenerating: {StatusDraft, StatusFailed}, // resume path only
}

// AllowedPriorStatuses returns the set of states from which a transition
// to the given status is legal. Used by the store to guard UPDATEs.
func AllowedPriorStatuses(to Status) []Status {
	return allowedTransitions[to]
}

// CanTransition reports whether from -> to is a legal status transition.
// Notably completed is terminal: a completed presentation never re-enters
// generating, not even through the resume path.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned when a status write would violate the
// transition table.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
