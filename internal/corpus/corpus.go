// Package corpus loads the built-in curricula.
package corpus

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// Curriculum ids shipped with the binary.
const (
	FiveSeeingHabits   = "5s"
	TenPointCommentary = "10s"
)

//go:embed data/*.yaml
var curriculumData embed.FS

// ErrUnknownCurriculum is returned by Get for ids that are not built in.
var ErrUnknownCurriculum = errors.New("unknown curriculum")

var builtin = mustLoad(curriculumData)

// Get returns a copy of the curriculum with the given id.
func Get(id string) (model.Curriculum, error) {
	for _, c := range builtin {
		if c.ID == id {
			return clone(c), nil
		}
	}
	return model.Curriculum{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownCurriculum, id, strings.Join(IDs(), ", "))
}

// All returns copies of every curriculum in id order.
func All() []model.Curriculum {
	out := make([]model.Curriculum, len(builtin))
	for i, c := range builtin {
		out[i] = clone(c)
	}
	return out
}

// IDs lists the built-in curriculum ids.
func IDs() []string {
	ids := make([]string, len(builtin))
	for i, c := range builtin {
		ids[i] = c.ID
	}
	return ids
}

// Toggle returns the id of the other curriculum.
func Toggle(id string) string {
	if id == FiveSeeingHabits {
		return TenPointCommentary
	}
	return FiveSeeingHabits
}

func mustLoad(fsys fs.FS) []model.Curriculum {
	curricula, err := Load(fsys)
	if err != nil {
		panic(fmt.Sprintf("habitdrill: load curricula: %v", err))
	}
	return curricula
}

// Load decodes every YAML file under data/ in fsys and validates it.
func Load(fsys fs.FS) ([]model.Curriculum, error) {
	entries, err := fs.ReadDir(fsys, "data")
	if err != nil {
		return nil, err
	}
	var result []model.Curriculum
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		b, err := fs.ReadFile(fsys, "data/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var c model.Curriculum
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := Validate(c); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Validate checks that ids are unique and every topic has phrases.
func Validate(c model.Curriculum) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("curriculum id is required")
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("curriculum %s has no topics", c.ID)
	}
	seen := map[string]struct{}{}
	for _, t := range c.Topics {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("curriculum %s: topic id is required", c.ID)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("curriculum %s: duplicate topic id %q", c.ID, t.ID)
		}
		seen[t.ID] = struct{}{}
		if len(t.Phrases) == 0 {
			return fmt.Errorf("curriculum %s: topic %s has no phrases", c.ID, t.ID)
		}
		for _, p := range t.Phrases {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("curriculum %s: topic %s has an empty phrase", c.ID, t.ID)
			}
		}
	}
	return nil
}

func clone(c model.Curriculum) model.Curriculum {
	topics := make([]model.Topic, len(c.Topics))
	for i, t := range c.Topics {
		topics[i] = model.Topic{
			ID:      t.ID,
			Title:   t.Title,
			Phrases: append([]string(nil), t.Phrases...),
		}
	}
	return model.Curriculum{ID: c.ID, Title: c.Title, Topics: topics}
}
