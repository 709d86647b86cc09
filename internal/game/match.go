package game

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// FlashDuration is how long a wrong drop stays highlighted.
const FlashDuration = 500 * time.Millisecond

// DropResult describes the outcome of Match.Drop.
type DropResult int

const (
	DropIgnored DropResult = iota
	DropCorrect
	DropIncorrect
)

// Match sorts shuffled phrases into their topics.
type Match struct {
	topics []model.Topic
	owners map[string]string
	pool   []string
	placed map[string][]string
	total  int

	flash    string
	flashSeq int
	tally    Tally
}

// NewMatch starts a round over items, which are placed in pool order.
func NewMatch(topics []model.Topic, items []model.MatchItem) *Match {
	return &Match{
		topics: topics,
		owners: lo.Associate(items, func(it model.MatchItem) (string, string) { return it.Phrase, it.TopicID }),
		pool:   lo.Map(items, func(it model.MatchItem, _ int) string { return it.Phrase }),
		placed: map[string][]string{},
		total:  len(items),
	}
}

// Topics returns the drop targets.
func (m *Match) Topics() []model.Topic { return m.topics }

// Pool returns the phrases still waiting to be placed.
func (m *Match) Pool() []string { return m.pool }

// Placed returns the phrases correctly placed in topicID, sorted.
func (m *Match) Placed(topicID string) []string { return m.placed[topicID] }

// Drop places phrase into topicID. A wrong drop leaves every list as it
// was and flags the phrase; the returned sequence number identifies that
// flash for ClearFlash.
func (m *Match) Drop(phrase, topicID string) (DropResult, int) {
	if !lo.Contains(m.pool, phrase) {
		return DropIgnored, 0
	}
	if m.owners[phrase] != topicID {
		m.tally.Incorrect++
		m.flashSeq++
		m.flash = phrase
		return DropIncorrect, m.flashSeq
	}
	m.tally.Correct++
	m.pool = lo.Without(m.pool, phrase)
	placed := append(m.placed[topicID], phrase)
	sort.Strings(placed)
	m.placed[topicID] = placed
	if m.flash == phrase {
		m.flash = ""
	}
	return DropCorrect, 0
}

// Flash returns the phrase currently highlighted as a wrong drop.
func (m *Match) Flash() string { return m.flash }

// ClearFlash removes the highlight set by the drop numbered seq. Older
// timers do not clear a newer flash.
func (m *Match) ClearFlash(seq int) {
	if seq == m.flashSeq {
		m.flash = ""
	}
}

// IsComplete reports whether every phrase has been placed.
func (m *Match) IsComplete() bool {
	placed := lo.SumBy(lo.Values(m.placed), func(p []string) int { return len(p) })
	return len(m.pool) == 0 && placed == m.total
}

// Tally returns correct and incorrect drops so far.
func (m *Match) Tally() Tally { return m.tally }

// Progress reports placed phrases out of the total.
func (m *Match) Progress() Progress {
	return Progress{Index: m.total - len(m.pool), Total: m.total}
}
