// Package generator builds question sets for each exercise level.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/stats"
)

// BlankMarker is the token the text service puts where a word was removed.
const BlankMarker = "[BLANK]"

// DistractorCount is the number of wrong options per choice question.
const DistractorCount = 3

const maxConcurrentBlanks = 4

// ErrBlankMismatch is returned when a blanked phrase does not line up with
// its answers.
var ErrBlankMismatch = errors.New("blank markers do not match blanked words")

// Blanker turns a phrase into a fill-in-the-blank variant.
type Blanker interface {
	BlankPhrase(ctx context.Context, req model.BlankRequest) (model.BlankResult, error)
}

// Generator produces randomized question sets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Fork returns an independent Generator seeded from g. Use it to hand
// randomness to another goroutine.
func (g *Generator) Fork() *Generator {
	return NewSeeded(g.rnd.Int63())
}

// Match flattens every phrase with its owning topic and shuffles them.
func (g *Generator) Match(topics []model.Topic) []model.MatchItem {
	items := lo.FlatMap(topics, func(t model.Topic, _ int) []model.MatchItem {
		return lo.Map(t.Phrases, func(p string, _ int) model.MatchItem {
			return model.MatchItem{Phrase: p, TopicID: t.ID}
		})
	})
	shuffle(g.rnd, items)
	return items
}

// Choice builds one question per phrase with up to DistractorCount wrong
// options drawn from the other phrases. Options and questions are shuffled.
func (g *Generator) Choice(topics []model.Topic) []model.ChoiceItem {
	pool := allPhrases(topics)
	var items []model.ChoiceItem
	for _, t := range topics {
		for _, phrase := range t.Phrases {
			options := g.sample(lo.Without(pool, phrase), DistractorCount)
			options = append(options, phrase)
			shuffle(g.rnd, options)
			items = append(items, model.ChoiceItem{
				TopicTitle:    t.Title,
				CorrectPhrase: phrase,
				Options:       options,
			})
		}
	}
	shuffle(g.rnd, items)
	return items
}

// Blanks asks b for a blanked variant of every phrase, biased toward the
// words in perf the user failed before. Any failure aborts the whole batch.
func (g *Generator) Blanks(ctx context.Context, topics []model.Topic, perf model.PerformanceData, b Blanker) ([]model.BlankItem, error) {
	type job struct {
		topic  model.Topic
		phrase string
	}
	jobs := lo.FlatMap(topics, func(t model.Topic, _ int) []job {
		return lo.Map(t.Phrases, func(p string, _ int) job { return job{topic: t, phrase: p} })
	})

	items := make([]model.BlankItem, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentBlanks)
	for i, j := range jobs {
		eg.Go(func() error {
			req := model.BlankRequest{
				TopicTitle:    j.topic.Title,
				Phrase:        j.phrase,
				StruggleWords: stats.SelectStruggleWords(perf.FailedWords(j.topic.ID, j.phrase), 0),
			}
			res, err := b.BlankPhrase(egCtx, req)
			if err != nil {
				return fmt.Errorf("blank %s/%q: %w", j.topic.ID, j.phrase, err)
			}
			item, err := BuildBlankItem(j.topic, j.phrase, res)
			if err != nil {
				return fmt.Errorf("blank %s/%q: %w", j.topic.ID, j.phrase, err)
			}
			items[i] = item
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	shuffle(g.rnd, items)
	return items, nil
}

// Recall returns one item per topic in corpus order.
func (g *Generator) Recall(topics []model.Topic) []model.RecallItem {
	return lo.Map(topics, func(t model.Topic, _ int) model.RecallItem {
		return model.RecallItem{Topic: t}
	})
}

// Generate builds the question set for level. b is only used for LevelBlank.
func (g *Generator) Generate(ctx context.Context, level model.Level, topics []model.Topic, perf model.PerformanceData, b Blanker) ([]model.Question, error) {
	switch level {
	case model.LevelMatch:
		return questions(g.Match(topics)), nil
	case model.LevelChoice:
		return questions(g.Choice(topics)), nil
	case model.LevelBlank:
		if b == nil {
			return nil, fmt.Errorf("level %d needs a text generation service", level)
		}
		items, err := g.Blanks(ctx, topics, perf, b)
		if err != nil {
			return nil, err
		}
		return questions(items), nil
	case model.LevelRecall:
		return questions(g.Recall(topics)), nil
	default:
		return nil, fmt.Errorf("unknown level %d", level)
	}
}

// BuildBlankItem validates res against phrase and assembles the question.
func BuildBlankItem(topic model.Topic, phrase string, res model.BlankResult) (model.BlankItem, error) {
	parts, err := ParseBlankedPhrase(res.BlankedPhrase, len(res.BlankedWords))
	if err != nil {
		return model.BlankItem{}, err
	}
	for _, w := range res.BlankedWords {
		if strings.TrimSpace(w) == "" {
			return model.BlankItem{}, fmt.Errorf("%w: empty blanked word", ErrBlankMismatch)
		}
	}
	return model.BlankItem{
		ID:             fmt.Sprintf("%s-%s", topic.ID, uuid.NewString()),
		OriginalPhrase: phrase,
		TopicID:        topic.ID,
		TopicTitle:     topic.Title,
		Parts:          parts,
		CorrectAnswers: append([]string(nil), res.BlankedWords...),
	}, nil
}

// ParseBlankedPhrase splits blanked on BlankMarker into trimmed literal
// parts interleaved with blanks. Empty literal parts are dropped. The
// number of markers must equal answers and be at least one.
func ParseBlankedPhrase(blanked string, answers int) ([]model.Part, error) {
	segments := strings.Split(blanked, BlankMarker)
	blanks := len(segments) - 1
	if blanks == 0 {
		return nil, fmt.Errorf("%w: no %s in %q", ErrBlankMismatch, BlankMarker, blanked)
	}
	if blanks != answers {
		return nil, fmt.Errorf("%w: %d markers, %d words", ErrBlankMismatch, blanks, answers)
	}
	parts := make([]model.Part, 0, len(segments)+blanks)
	for i, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, model.Part{Text: seg})
		}
		if i < blanks {
			parts = append(parts, model.Part{Blank: true})
		}
	}
	return parts, nil
}

// sample picks up to n items from pool uniformly without replacement.
func (g *Generator) sample(pool []string, n int) []string {
	cp := append([]string(nil), pool...)
	n = min(n, len(cp))
	for i := 0; i < n; i++ {
		j := i + g.rnd.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}

func shuffle[T any](rnd *rand.Rand, items []T) {
	rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func allPhrases(topics []model.Topic) []string {
	return lo.FlatMap(topics, func(t model.Topic, _ int) []string { return t.Phrases })
}

func questions[T model.Question](items []T) []model.Question {
	return lo.Map(items, func(item T, _ int) model.Question { return item })
}
