package game

import (
	"github.com/verte-zerg/habitdrill/internal/answer"
	"github.com/verte-zerg/habitdrill/internal/model"
)

// HintFailedMessage replaces the hint when the request fails.
const HintFailedMessage = "Failed to get a hint. Please try again."

// RecallResult partitions the lines submitted for one topic.
type RecallResult struct {
	// Correct holds the canonical phrase for each recalled line.
	Correct []string
	// Incorrect holds submitted lines as typed.
	Incorrect []string
	// Missing holds phrases not recalled, in corpus order.
	Missing []string
}

// ClassifyRecall grades a free-text block against topic. Lines are
// de-duplicated by normalized form, keeping the first occurrence.
func ClassifyRecall(topic model.Topic, text string) RecallResult {
	canonical := make(map[string]string, len(topic.Phrases))
	for _, p := range topic.Phrases {
		canonical[answer.Normalize(p)] = p
	}

	var res RecallResult
	seen := map[string]bool{}
	hit := map[string]bool{}
	for _, line := range answer.Lines(text) {
		norm := answer.Normalize(line)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		if phrase, ok := canonical[norm]; ok {
			res.Correct = append(res.Correct, phrase)
			hit[norm] = true
			continue
		}
		res.Incorrect = append(res.Incorrect, line)
	}
	for _, p := range topic.Phrases {
		if !hit[answer.Normalize(p)] {
			res.Missing = append(res.Missing, p)
		}
	}
	return res
}

type hintState int

const (
	hintAvailable hintState = iota
	hintLoading
	hintGiven
)

// Recall asks for every phrase of each topic in turn.
type Recall struct {
	items  []model.RecallItem
	index  int
	result *RecallResult

	hint      string
	hintState hintState
	hintEpoch uint64

	tally Tally
}

// NewRecall starts a round over items.
func NewRecall(items []model.RecallItem) *Recall {
	return &Recall{items: items}
}

// Current returns the active topic.
func (r *Recall) Current() (model.RecallItem, bool) {
	if r.index >= len(r.items) {
		return model.RecallItem{}, false
	}
	return r.items[r.index], true
}

// Check grades text for the active topic. Only the first check per topic
// counts; an empty submission is ignored.
func (r *Recall) Check(text string) (RecallResult, bool) {
	item, ok := r.Current()
	if !ok || r.result != nil || len(answer.Lines(text)) == 0 {
		return RecallResult{}, false
	}
	res := ClassifyRecall(item.Topic, text)
	r.result = &res
	r.tally.Correct += len(res.Correct)
	r.tally.Incorrect += len(res.Missing)
	return res, true
}

// Result returns the grading of the active topic once checked.
func (r *Recall) Result() (RecallResult, bool) {
	if r.result == nil {
		return RecallResult{}, false
	}
	return *r.result, true
}

// BeginHint starts a hint request and returns its epoch. It is refused
// while a request is in flight, after a hint was shown, or once the topic
// has been checked.
func (r *Recall) BeginHint() (uint64, bool) {
	if !r.HintAvailable() {
		return 0, false
	}
	r.hintEpoch++
	r.hintState = hintLoading
	r.hint = ""
	return r.hintEpoch, true
}

// ResolveHint applies the answer to the request numbered epoch. A failure
// shows HintFailedMessage and allows another attempt.
func (r *Recall) ResolveHint(epoch uint64, hint string, err error) bool {
	if epoch != r.hintEpoch || r.hintState != hintLoading {
		return false
	}
	if err != nil {
		r.hint = HintFailedMessage
		r.hintState = hintAvailable
		return true
	}
	r.hint = hint
	r.hintState = hintGiven
	return true
}

// Hint returns the text to show under the topic, if any.
func (r *Recall) Hint() string { return r.hint }

// HintLoading reports whether a hint request is in flight.
func (r *Recall) HintLoading() bool { return r.hintState == hintLoading }

// HintAvailable reports whether BeginHint would be accepted.
func (r *Recall) HintAvailable() bool {
	_, ok := r.Current()
	return ok && r.result == nil && r.hintState == hintAvailable
}

// Advance moves to the next topic after a check. Any hint in flight is
// abandoned.
func (r *Recall) Advance() bool {
	if r.result == nil || r.index >= len(r.items) {
		return false
	}
	r.index++
	r.result = nil
	r.hint = ""
	r.hintState = hintAvailable
	r.hintEpoch++
	return true
}

// IsComplete reports whether every topic has been visited.
func (r *Recall) IsComplete() bool { return r.index >= len(r.items) }

// Tally counts recalled phrases as correct and missing ones as incorrect.
func (r *Recall) Tally() Tally { return r.tally }

// Progress reports the active topic index.
func (r *Recall) Progress() Progress {
	return Progress{Index: r.index, Total: len(r.items)}
}
