package tui

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/habitdrill/internal/ai"
	"github.com/verte-zerg/habitdrill/internal/corpus"
	"github.com/verte-zerg/habitdrill/internal/game"
	"github.com/verte-zerg/habitdrill/internal/generator"
	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/performance"
	"github.com/verte-zerg/habitdrill/internal/store"
)

type fakeService struct {
	hint string
}

func (f *fakeService) BlankPhrase(context.Context, model.BlankRequest) (model.BlankResult, error) {
	return model.BlankResult{BlankedPhrase: "REMEMBER [BLANK]", BlankedWords: []string{"x"}}, nil
}

func (f *fakeService) Hint(context.Context, string) (string, error) {
	return f.hint, nil
}

type harness struct {
	m    *Model
	st   *store.Store
	perf *performance.Store
}

func newHarness(t *testing.T, level model.Level, svc ai.Service) harness {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "habitdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	perf := performance.New(st, nil)
	m := NewModel(Options{
		Config: model.Config{Curriculum: corpus.FiveSeeingHabits, Level: level},
		Store:  st,
		Perf:   perf,
		Gen:    generator.NewSeeded(1),
		AI:     svc,
	})
	return harness{m: m, st: st, perf: perf}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestThemeTogglePersists(t *testing.T) {
	h := newHarness(t, model.LevelMatch, nil)
	if h.m.styles.name != themeDark {
		t.Fatalf("expected dark default, got %s", h.m.styles.name)
	}
	h.m.Update(key("ctrl+t"))
	value, ok, err := h.st.Get(context.Background(), store.KeyTheme)
	if err != nil || !ok || value != themeLight {
		t.Fatalf("theme not persisted: %q ok=%v err=%v", value, ok, err)
	}
	again := NewModel(Options{Config: model.Config{Curriculum: corpus.FiveSeeingHabits}, Store: h.st})
	if again.styles.name != themeLight {
		t.Fatalf("theme not restored, got %s", again.styles.name)
	}
}

func TestLevelAndSetKeys(t *testing.T) {
	h := newHarness(t, model.LevelMatch, nil)
	h.m.Update(key("2"))
	if h.m.level != model.LevelChoice || h.m.choice == nil {
		t.Fatalf("level key ignored: %v", h.m.level)
	}
	h.m.Update(key("tab"))
	if h.m.curriculum.ID != corpus.TenPointCommentary {
		t.Fatalf("set not toggled: %s", h.m.curriculum.ID)
	}
	if !strings.Contains(h.m.View(), h.m.curriculum.Title) {
		t.Fatalf("header does not show the set title")
	}
}

func TestMatchWrongDropFlashes(t *testing.T) {
	h := newHarness(t, model.LevelMatch, nil)
	m := h.m
	phrase := m.match.Pool()[0]
	owner := -1
	for i, topic := range m.curriculum.Topics {
		if slices.Contains(topic.Phrases, phrase) {
			owner = i
		}
	}
	m.matchTarget = (owner + 1) % len(m.curriculum.Topics)

	_, cmd := m.Update(key("enter"))
	if cmd == nil || m.match.Flash() != phrase {
		t.Fatalf("expected flash for %q", phrase)
	}
	m.Update(flashDoneMsg{seq: 1})
	if m.match.Flash() != "" {
		t.Fatalf("flash not cleared")
	}

	m.matchTarget = owner
	m.Update(key("enter"))
	if placed := m.match.Placed(m.curriculum.Topics[owner].ID); len(placed) != 1 || placed[0] != phrase {
		t.Fatalf("phrase not placed: %v", placed)
	}
}

func TestChoiceRoundRecordsSession(t *testing.T) {
	h := newHarness(t, model.LevelChoice, nil)
	m := h.m
	answered := 0
	for {
		item, ok := m.choice.Current()
		if !ok {
			break
		}
		idx := slices.Index(item.Options, item.CorrectPhrase)
		m.Update(key(string(rune('a' + idx))))
		m.Update(key("enter"))
		answered++
	}
	if !m.isComplete() {
		t.Fatalf("round not complete after %d answers", answered)
	}
	if !strings.Contains(m.View(), "You've finished the quiz!") {
		t.Fatalf("completion message missing")
	}
	sessions, err := h.st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Correct != answered || sessions[0].Incorrect != 0 {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
	if sessions[0].Level != model.LevelChoice || sessions[0].Curriculum != corpus.FiveSeeingHabits {
		t.Fatalf("session not tagged: %+v", sessions[0])
	}
	if !m.hasLast || m.lastAcc != 1 {
		t.Fatalf("footer not updated: %v %v", m.hasLast, m.lastAcc)
	}
}

func stayBackItem() model.BlankItem {
	return model.BlankItem{
		ID:             "get-big-picture-1",
		OriginalPhrase: "REMEMBER STAY BACK AND SEE IT ALL",
		TopicID:        "get-big-picture",
		TopicTitle:     "GET THE BIG PICTURE",
		Parts:          []model.Part{{Text: "REMEMBER"}, {Blank: true}, {Text: "AND SEE IT ALL"}},
		CorrectAnswers: []string{"stay back"},
	}
}

func TestBlankRoundFlow(t *testing.T) {
	h := newHarness(t, model.LevelBlank, &fakeService{})
	m := h.m
	if m.blank.Phase() != game.PhaseLoading || m.Init() == nil {
		t.Fatalf("expected loading with a pending load")
	}
	m.Update(blanksLoadedMsg{epoch: m.blank.Epoch() + 5, items: []model.BlankItem{stayBackItem()}})
	if m.blank.Phase() != game.PhaseLoading {
		t.Fatalf("stale set applied")
	}

	wrong := stayBackItem()
	wrong.ID = "get-big-picture-2"
	m.Update(blanksLoadedMsg{epoch: m.blank.Epoch(), items: []model.BlankItem{stayBackItem(), wrong}})
	if m.blank.Phase() != game.PhasePresenting || len(m.blankInputs) != 1 {
		t.Fatalf("set not presented: %v", m.blank.Phase())
	}

	m.Update(key("Stay Back"))
	m.Update(key("enter"))
	if m.blank.Phase() != game.PhaseSubmitted || !allTrue(m.blank.Results()) {
		t.Fatalf("expected correct submission, got %v %v", m.blank.Phase(), m.blank.Results())
	}
	if len(h.perf.Get(context.Background())) != 0 {
		t.Fatalf("failure recorded for a correct answer")
	}

	m.Update(key("enter"))
	m.Update(key("stay front"))
	m.Update(key("enter"))
	counts := h.perf.Get(context.Background()).FailedWords("get-big-picture", "REMEMBER STAY BACK AND SEE IT ALL")
	if counts["stay back"] != 1 {
		t.Fatalf("expected recorded failure, got %v", counts)
	}
	if !strings.Contains(m.View(), "(stay back)") {
		t.Fatalf("correct answer not shown after a miss")
	}

	m.Update(key("enter"))
	if !m.isComplete() {
		t.Fatalf("expected completion")
	}
	sessions, _ := h.st.ListSessions(context.Background(), model.StatsConfig{Level: model.LevelBlank})
	if len(sessions) != 1 || sessions[0].Correct != 1 || sessions[0].Incorrect != 1 {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestBlankWithoutServiceFails(t *testing.T) {
	h := newHarness(t, model.LevelBlank, nil)
	if h.m.blank.Phase() != game.PhaseFailed {
		t.Fatalf("expected failure, got %v", h.m.blank.Phase())
	}
	if !strings.Contains(h.m.View(), game.LoadFailedMessage) {
		t.Fatalf("failure message not shown")
	}
}

func TestRecallCheckAndHint(t *testing.T) {
	h := newHarness(t, model.LevelRecall, &fakeService{hint: "Think about where you look."})
	m := h.m

	_, cmd := m.Update(key("ctrl+g"))
	if !m.recall.HintLoading() {
		t.Fatalf("hint not loading")
	}
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
	if m.recall.Hint() != "Think about where you look." {
		t.Fatalf("hint not shown: %q", m.recall.Hint())
	}
	if _, cmd := m.Update(key("ctrl+g")); cmd != nil {
		t.Fatalf("second hint requested")
	}

	m.recallInput.SetValue("remember find a safe path well ahead\nwrong line")
	m.Update(key("ctrl+s"))
	res, ok := m.recall.Result()
	if !ok {
		t.Fatalf("check ignored")
	}
	if len(res.Correct) != 1 || len(res.Incorrect) != 1 || len(res.Missing) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	m.Update(key("enter"))
	if m.recall.Progress().Index != 1 || m.recall.Hint() != "" {
		t.Fatalf("did not advance to a fresh topic")
	}
}

func TestLeavingBlankLevelDiscardsPendingSet(t *testing.T) {
	h := newHarness(t, model.LevelBlank, &fakeService{})
	m := h.m
	pending := m.blank.Epoch()

	m.Update(key("1"))
	if m.level != model.LevelMatch || m.match == nil {
		t.Fatalf("level key ignored: %v", m.level)
	}
	started := m.startedAt.Add(-time.Minute)
	m.startedAt = started

	m.Update(blanksLoadedMsg{epoch: pending, items: []model.BlankItem{stayBackItem()}})
	if m.blank.Phase() == game.PhasePresenting || m.blankInputs != nil {
		t.Fatalf("superseded set applied: %v", m.blank.Phase())
	}
	if !m.startedAt.Equal(started) {
		t.Fatalf("match round start time moved")
	}

	m.Update(key("3"))
	m.Update(blanksLoadedMsg{epoch: pending, items: []model.BlankItem{stayBackItem()}})
	if m.blank.Phase() != game.PhaseLoading {
		t.Fatalf("old set applied to a new blank round: %v", m.blank.Phase())
	}
}

func TestRecallHintUnavailableAfterCheck(t *testing.T) {
	h := newHarness(t, model.LevelRecall, &fakeService{hint: "Look ahead."})
	m := h.m

	m.recallInput.SetValue("remember find a safe path well ahead")
	m.Update(key("ctrl+s"))
	if _, ok := m.recall.Result(); !ok {
		t.Fatalf("check ignored")
	}
	if _, cmd := m.Update(key("ctrl+g")); cmd != nil || m.recall.HintLoading() {
		t.Fatalf("hint requested after feedback was shown")
	}
	if strings.Contains(m.View(), "ctrl+g hint") {
		t.Fatalf("hint key still advertised after check")
	}
}
