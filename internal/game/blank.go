package game

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/habitdrill/internal/answer"
	"github.com/verte-zerg/habitdrill/internal/model"
)

// LoadFailedMessage is shown when a blank question set could not be built.
const LoadFailedMessage = "Failed to generate questions. Please try again or check your API key."

// Phase is the lifecycle state of a Blank round.
type Phase int

const (
	PhaseLoading Phase = iota
	PhasePresenting
	PhaseSubmitted
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Blank runs a fill-in-the-blank round. The question set arrives
// asynchronously; Begin and Load pair up through an epoch so a late result
// from an abandoned request is dropped.
type Blank struct {
	recorder FailureRecorder

	epoch   uint64
	phase   Phase
	items   []model.BlankItem
	index   int
	inputs  []string
	results []bool
	errMsg  string
	tally   Tally
}

// NewBlank returns a round waiting for Begin. rec may be nil.
func NewBlank(rec FailureRecorder) *Blank {
	return &Blank{recorder: rec, phase: PhaseLoading}
}

// Begin discards the current set and starts waiting for a new one.
func (b *Blank) Begin() uint64 {
	b.epoch++
	b.phase = PhaseLoading
	b.items = nil
	b.index = 0
	b.inputs = nil
	b.results = nil
	b.errMsg = ""
	b.tally = Tally{}
	return b.epoch
}

// Abandon invalidates any outstanding load without starting a new one.
func (b *Blank) Abandon() {
	b.epoch++
}

// Epoch returns the id of the outstanding or latest load.
func (b *Blank) Epoch() uint64 { return b.epoch }

// Load applies a generated set. It returns false when epoch is stale.
func (b *Blank) Load(epoch uint64, items []model.BlankItem, err error) bool {
	if epoch != b.epoch || b.phase != PhaseLoading {
		return false
	}
	if err != nil {
		b.phase = PhaseFailed
		b.errMsg = LoadFailedMessage
		b.items = nil
		return true
	}
	b.items = items
	b.index = 0
	b.present()
	return true
}

func (b *Blank) present() {
	item, ok := b.Current()
	if !ok {
		b.phase = PhaseCompleted
		b.inputs = nil
		b.results = nil
		return
	}
	b.phase = PhasePresenting
	b.inputs = make([]string, item.BlankCount())
	b.results = nil
}

// Phase returns the lifecycle state.
func (b *Blank) Phase() Phase { return b.phase }

// Err returns the user-facing message after a failed load.
func (b *Blank) Err() string { return b.errMsg }

// Current returns the active question.
func (b *Blank) Current() (model.BlankItem, bool) {
	if b.index >= len(b.items) {
		return model.BlankItem{}, false
	}
	return b.items[b.index], true
}

// SetInput sets the text typed into blank i.
func (b *Blank) SetInput(i int, value string) bool {
	if b.phase != PhasePresenting || i < 0 || i >= len(b.inputs) {
		return false
	}
	b.inputs[i] = value
	return true
}

// Inputs returns the text typed so far, one entry per blank.
func (b *Blank) Inputs() []string { return b.inputs }

// CanSubmit reports whether every blank holds non-space text.
func (b *Blank) CanSubmit() bool {
	if b.phase != PhasePresenting || len(b.inputs) == 0 {
		return false
	}
	return lo.EveryBy(b.inputs, func(s string) bool { return strings.TrimSpace(s) != "" })
}

// Submit grades the inputs. Missed words are passed to the recorder as the
// correct answer, not what the user typed.
func (b *Blank) Submit(ctx context.Context) ([]bool, bool) {
	if !b.CanSubmit() {
		return nil, false
	}
	item, _ := b.Current()
	results := make([]bool, len(item.CorrectAnswers))
	var failed []string
	for i, want := range item.CorrectAnswers {
		results[i] = answer.Equal(b.inputs[i], want)
		if !results[i] {
			failed = append(failed, want)
		}
	}
	if len(failed) == 0 {
		b.tally.Correct++
	} else {
		b.tally.Incorrect++
		if b.recorder != nil {
			b.recorder.RecordFailures(ctx, item.TopicID, item.OriginalPhrase, failed)
		}
	}
	b.results = results
	b.phase = PhaseSubmitted
	return results, true
}

// Results returns per-blank grades after Submit.
func (b *Blank) Results() []bool { return b.results }

// Advance moves past a graded question.
func (b *Blank) Advance() bool {
	if b.phase != PhaseSubmitted {
		return false
	}
	b.index++
	b.present()
	return true
}

// CommitAction tells what Commit did.
type CommitAction int

const (
	CommitNone CommitAction = iota
	CommitSubmitted
	CommitAdvanced
)

// Commit submits a filled question or advances a graded one.
func (b *Blank) Commit(ctx context.Context) CommitAction {
	switch b.phase {
	case PhasePresenting:
		if _, ok := b.Submit(ctx); ok {
			return CommitSubmitted
		}
	case PhaseSubmitted:
		if b.Advance() {
			return CommitAdvanced
		}
	}
	return CommitNone
}

// IsComplete reports whether the loaded set has been worked through.
func (b *Blank) IsComplete() bool { return b.phase == PhaseCompleted }

// Tally returns fully correct and incorrect questions so far.
func (b *Blank) Tally() Tally { return b.tally }

// Progress reports the active question index.
func (b *Blank) Progress() Progress {
	return Progress{Index: b.index, Total: len(b.items)}
}
