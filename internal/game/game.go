// Package game holds the state machines for each exercise level.
package game

import "context"

// Tally counts answers over a round.
type Tally struct {
	Correct   int
	Incorrect int
}

// Progress is the position within a question set.
type Progress struct {
	Index int
	Total int
}

// FailureRecorder receives the correct words the user missed.
type FailureRecorder interface {
	RecordFailures(ctx context.Context, topicID, phrase string, words []string)
}
