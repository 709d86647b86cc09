package game

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// Choice walks through multiple-choice questions. The first selection per
// question is final.
type Choice struct {
	items    []model.ChoiceItem
	index    int
	selected string
	answered bool
	tally    Tally
}

// NewChoice starts a round over items.
func NewChoice(items []model.ChoiceItem) *Choice {
	return &Choice{items: items}
}

// Current returns the active question.
func (c *Choice) Current() (model.ChoiceItem, bool) {
	if c.index >= len(c.items) {
		return model.ChoiceItem{}, false
	}
	return c.items[c.index], true
}

// Select answers the active question. ok is false when the question was
// already answered or option is not one of its options.
func (c *Choice) Select(option string) (correct, ok bool) {
	item, exists := c.Current()
	if !exists || c.answered || !lo.Contains(item.Options, option) {
		return false, false
	}
	c.selected = option
	c.answered = true
	correct = option == item.CorrectPhrase
	if correct {
		c.tally.Correct++
	} else {
		c.tally.Incorrect++
	}
	return correct, true
}

// Selected returns the chosen option once the question is answered.
func (c *Choice) Selected() (string, bool) {
	return c.selected, c.answered
}

// Advance moves to the next question after an answer.
func (c *Choice) Advance() bool {
	if !c.answered || c.index >= len(c.items) {
		return false
	}
	c.index++
	c.selected = ""
	c.answered = false
	return true
}

// IsComplete reports whether every question has been answered and passed.
func (c *Choice) IsComplete() bool { return c.index >= len(c.items) }

// Tally returns correct and incorrect answers so far.
func (c *Choice) Tally() Tally { return c.tally }

// Progress reports the active question index.
func (c *Choice) Progress() Progress {
	return Progress{Index: c.index, Total: len(c.items)}
}
