package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/verte-zerg/habitdrill/internal/config"
	"github.com/verte-zerg/habitdrill/internal/corpus"
	"github.com/verte-zerg/habitdrill/internal/model"
)

var commentedKey = regexp.MustCompile(`^# ([a-z-]+ = )`)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()

	commented := filepath.Join(dir, "commented.toml")
	if err := os.WriteFile(commented, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(commented)
	if err != nil {
		t.Fatalf("load commented template: %v", err)
	}
	if cfg.Practice.Set != nil {
		t.Fatalf("expected commented set to be nil")
	}

	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		lines = append(lines, commentedKey.ReplaceAllString(line, "$1"))
	}
	enabled := filepath.Join(dir, "enabled.toml")
	if err := os.WriteFile(enabled, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = config.LoadConfig(enabled)
	if err != nil {
		t.Fatalf("load enabled template: %v", err)
	}
	if cfg.Practice.Set == nil || *cfg.Practice.Set != defaultSet {
		t.Fatalf("expected set %q, got %v", defaultSet, cfg.Practice.Set)
	}
	if cfg.Practice.Level == nil || *cfg.Practice.Level != defaultLevel {
		t.Fatalf("expected level %d, got %v", defaultLevel, cfg.Practice.Level)
	}
	if _, err := cfg.AI.TimeoutDuration(); err != nil {
		t.Fatalf("timeout: %v", err)
	}
}

func TestWriteSetsListsTopics(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSets(&buf, corpus.All(), false); err != nil {
		t.Fatalf("writeSets: %v", err)
	}
	out := buf.String()
	for _, c := range corpus.All() {
		if !strings.Contains(out, c.Title) {
			t.Fatalf("expected %q in output:\n%s", c.Title, out)
		}
		for _, topic := range c.Topics {
			if !strings.Contains(out, topic.Title) {
				t.Fatalf("expected topic %q in output", topic.Title)
			}
		}
	}
	if strings.Contains(out, "    - ") {
		t.Fatalf("did not expect phrases without --phrases")
	}

	buf.Reset()
	if err := writeSets(&buf, corpus.All(), true); err != nil {
		t.Fatalf("writeSets: %v", err)
	}
	c, err := corpus.Get(corpus.FiveSeeingHabits)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(buf.String(), "    - "+c.Topics[0].Phrases[0]) {
		t.Fatalf("expected first phrase in output")
	}
}

func TestValidatePractice(t *testing.T) {
	if err := validatePractice(model.Config{Curriculum: corpus.TenPointCommentary, Level: model.LevelRecall}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validatePractice(model.Config{Curriculum: "7s", Level: model.LevelMatch}); err == nil {
		t.Fatalf("expected unknown curriculum error")
	}
	if err := validatePractice(model.Config{Curriculum: corpus.FiveSeeingHabits, Level: 5}); err == nil {
		t.Fatalf("expected level error")
	}
}

func TestBuildStatsConfig(t *testing.T) {
	t.Cleanup(func() {
		statsSet, statsLevel, statsSince, statsLast, statsCurveWindow, statsTop = "", 0, "", 0, defaultCurveWindow, defaultTopWords
	})

	statsSet, statsLevel, statsSince, statsLast, statsCurveWindow, statsTop = corpus.FiveSeeingHabits, 2, "2026-01-02", 5, 0, 3
	cfg, err := buildStatsConfig()
	if err != nil {
		t.Fatalf("buildStatsConfig: %v", err)
	}
	if cfg.Level != model.LevelChoice || cfg.Last != 5 || cfg.TopWords != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CurveWindow != 1 {
		t.Fatalf("expected curve window clamped to 1, got %d", cfg.CurveWindow)
	}
	if cfg.Since == nil || cfg.Since.Day() != 2 {
		t.Fatalf("expected since date, got %v", cfg.Since)
	}

	statsSince = "yesterday"
	if _, err := buildStatsConfig(); err == nil {
		t.Fatalf("expected since parse error")
	}
	statsSince, statsLevel = "", 9
	if _, err := buildStatsConfig(); err == nil {
		t.Fatalf("expected level error")
	}
}
