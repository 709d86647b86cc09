// Package model defines shared data structures.
package model

import "time"

// Topic is one category of the curriculum with its phrases.
type Topic struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// Curriculum is a named set of topics.
type Curriculum struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Topics []Topic `yaml:"topics" json:"topics"`
}

// PhraseCount returns the number of phrases across all topics.
func (c Curriculum) PhraseCount() int {
	n := 0
	for _, t := range c.Topics {
		n += len(t.Phrases)
	}
	return n
}

// Level selects the exercise mode.
type Level int

const (
	LevelMatch Level = iota + 1
	LevelChoice
	LevelBlank
	LevelRecall
)

// Label returns the short name shown in level pickers.
func (l Level) Label() string {
	switch l {
	case LevelMatch:
		return "Level 1: Match"
	case LevelChoice:
		return "Level 2: Identify"
	case LevelBlank:
		return "Level 3: Complete"
	case LevelRecall:
		return "Level 4: Recall"
	default:
		return "Unknown level"
	}
}

// Description returns the one-line instruction for the level.
func (l Level) Description() string {
	switch l {
	case LevelMatch:
		return "Drag and drop phrases into the correct categories"
	case LevelChoice:
		return "Select the correct phrase from a list of options"
	case LevelBlank:
		return "Fill in the blanks for each phrase"
	case LevelRecall:
		return "Type out all phrases for a category from memory"
	default:
		return ""
	}
}

// Valid reports whether l is one of the four levels.
func (l Level) Valid() bool {
	return l >= LevelMatch && l <= LevelRecall
}

// PhrasePerformance holds the failure history for one phrase.
type PhrasePerformance struct {
	FailedWords map[string]int `json:"failedWords"`
}

// PerformanceData maps topic id to phrase to its failure history.
type PerformanceData map[string]map[string]PhrasePerformance

// Clone returns a deep copy of the data.
func (p PerformanceData) Clone() PerformanceData {
	out := make(PerformanceData, len(p))
	for topicID, phrases := range p {
		cp := make(map[string]PhrasePerformance, len(phrases))
		for phrase, perf := range phrases {
			words := make(map[string]int, len(perf.FailedWords))
			for w, n := range perf.FailedWords {
				words[w] = n
			}
			cp[phrase] = PhrasePerformance{FailedWords: words}
		}
		out[topicID] = cp
	}
	return out
}

// FailedWords returns the failure counts for a phrase, or nil.
func (p PerformanceData) FailedWords(topicID, phrase string) map[string]int {
	phrases, ok := p[topicID]
	if !ok {
		return nil
	}
	return phrases[phrase].FailedWords
}

// Question is one item of a generated question set.
type Question interface {
	question()
}

// MatchItem is a phrase waiting to be placed into its owning topic.
type MatchItem struct {
	Phrase  string `json:"phrase"`
	TopicID string `json:"topicId"`
}

// ChoiceItem asks which option belongs to the topic.
type ChoiceItem struct {
	TopicTitle    string   `json:"topicTitle"`
	CorrectPhrase string   `json:"correctPhrase"`
	Options       []string `json:"options"`
}

// Part is one segment of a blanked phrase: literal text or a blank.
type Part struct {
	Text  string `json:"text,omitempty"`
	Blank bool   `json:"blank,omitempty"`
}

// BlankItem is a phrase with some words replaced by blanks.
// The number of blank parts equals len(CorrectAnswers).
type BlankItem struct {
	ID             string   `json:"id"`
	OriginalPhrase string   `json:"originalPhrase"`
	TopicID        string   `json:"topicId"`
	TopicTitle     string   `json:"topicTitle"`
	Parts          []Part   `json:"parts"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// BlankCount returns the number of blank parts.
func (b BlankItem) BlankCount() int {
	n := 0
	for _, p := range b.Parts {
		if p.Blank {
			n++
		}
	}
	return n
}

// RecallItem asks for every phrase of a topic.
type RecallItem struct {
	Topic Topic `json:"topic"`
}

func (MatchItem) question()  {}
func (ChoiceItem) question() {}
func (BlankItem) question()  {}
func (RecallItem) question() {}

// BlankRequest is sent to the text-generation service for one phrase.
type BlankRequest struct {
	TopicTitle    string
	Phrase        string
	StruggleWords []string
}

// BlankResult is the service answer for a BlankRequest.
type BlankResult struct {
	BlankedPhrase string   `json:"blankedPhrase"`
	BlankedWords  []string `json:"blankedWords"`
}

// Config defines practice settings.
type Config struct {
	Curriculum string
	Level      Level
	Seed       int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Curriculum  string
	Level       Level
	Since       *time.Time
	Last        int
	CurveWindow int
	TopWords    int
}

// SessionStats captures a completed exercise round.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Curriculum string
	Level      Level
	Correct    int
	Incorrect  int
	DurationMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Curriculum string
	Level      Level
	Correct    int
	Incorrect  int
	DurationMs int64
}

// WordStruggle is one failed word with its count, used in reports.
type WordStruggle struct {
	TopicID string
	Phrase  string
	Word    string
	Count   int
}
