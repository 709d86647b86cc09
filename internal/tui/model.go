// Package tui provides the Bubble Tea exercise interface.
package tui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/habitdrill/internal/ai"
	"github.com/verte-zerg/habitdrill/internal/corpus"
	"github.com/verte-zerg/habitdrill/internal/game"
	"github.com/verte-zerg/habitdrill/internal/generator"
	"github.com/verte-zerg/habitdrill/internal/model"
	statsPkg "github.com/verte-zerg/habitdrill/internal/stats"
	"github.com/verte-zerg/habitdrill/internal/store"
)

var errNoService = errors.New("no text generation service configured")

// SessionStore persists finished rounds and the theme.
type SessionStore interface {
	InsertSession(ctx context.Context, stats model.SessionStats) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Performance tracks missed words across rounds.
type Performance interface {
	Get(ctx context.Context) model.PerformanceData
	RecordFailures(ctx context.Context, topicID, phrase string, words []string)
}

// Speaker reads text aloud.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Options wires the model to its collaborators. Store is required; AI and
// Speaker may be nil, which disables the features that need them.
type Options struct {
	Config  model.Config
	Store   SessionStore
	Perf    Performance
	Gen     *generator.Generator
	AI      ai.Service
	Speaker Speaker
	Logger  *log.Logger
	Timeout time.Duration
}

type blanksLoadedMsg struct {
	epoch uint64
	items []model.BlankItem
	err   error
}

type hintMsg struct {
	epoch uint64
	text  string
	err   error
}

type flashDoneMsg struct {
	seq int
}

type spokenMsg struct {
	text string
	err  error
}

// Model implements the Bubble Tea exercise UI.
type Model struct {
	store   SessionStore
	perf    Performance
	gen     *generator.Generator
	ai      ai.Service
	speaker Speaker
	logger  *log.Logger
	timeout time.Duration

	curriculum model.Curriculum
	level      model.Level
	styles     styles

	width  int
	height int

	startedAt time.Time
	recorded  bool
	status    string
	pending   tea.Cmd

	match       *game.Match
	matchCursor int
	matchTarget int

	choice       *game.Choice
	choiceCursor int

	blank       *game.Blank
	blankInputs []textinput.Model
	blankFocus  int
	blankCancel context.CancelFunc

	recall      *game.Recall
	recallInput textarea.Model

	spinner spinner.Model

	lastAcc      float64
	allAcc       float64
	hasLast      bool
	allCorrect   int
	allIncorrect int
}

// NewModel constructs the exercise model and prepares the first round.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gen == nil {
		opts.Gen = generator.New()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = ai.DefaultTimeout
	}
	m := &Model{
		store:   opts.Store,
		perf:    opts.Perf,
		gen:     opts.Gen,
		ai:      opts.AI,
		speaker: opts.Speaker,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		level:   opts.Config.Level,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if !m.level.Valid() {
		m.level = model.LevelMatch
	}
	m.curriculum = m.loadCurriculum(opts.Config.Curriculum)
	m.styles = newStyles(m.loadTheme())
	m.pending = m.startRound()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmd := m.pending
	m.pending = nil
	return cmd
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.recall != nil {
			m.recallInput.SetWidth(m.contentWidth())
		}
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
		return m, m.handleLevelKey(msg)
	case blanksLoadedMsg:
		return m, m.applyBlanks(msg)
	case hintMsg:
		m.applyHint(msg)
		return m, nil
	case flashDoneMsg:
		if m.match != nil {
			m.match.ClearFlash(msg.seq)
		}
		return m, nil
	case spokenMsg:
		if msg.err != nil {
			m.logger.Warn("speech failed", "text", msg.text, "err", msg.err)
			m.status = "Speech failed. See the log for details."
		}
		return m, nil
	case spinner.TickMsg:
		if !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, m.forwardToInputs(msg)
	}
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+r":
		return m.startRound(), true
	case "ctrl+t":
		m.toggleTheme()
		return nil, true
	case "ctrl+o":
		m.switchCurriculum()
		return m.startRound(), true
	case "ctrl+l":
		m.level = m.level%model.LevelRecall + 1
		return m.startRound(), true
	case "ctrl+p":
		return m.speakFocused(), true
	}
	if m.typing() {
		return nil, false
	}
	switch key := msg.String(); key {
	case "q", "esc":
		return tea.Quit, true
	case "tab":
		m.switchCurriculum()
		return m.startRound(), true
	case "1", "2", "3", "4":
		m.level = model.Level(key[0] - '0')
		return m.startRound(), true
	case "s":
		return m.speakFocused(), true
	case "r":
		if m.isComplete() || (m.level == model.LevelBlank && m.blank.Phase() == game.PhaseFailed) {
			return m.startRound(), true
		}
	}
	return nil, false
}

func (m *Model) handleLevelKey(msg tea.KeyMsg) tea.Cmd {
	switch m.level {
	case model.LevelMatch:
		return m.updateMatch(msg)
	case model.LevelChoice:
		m.updateChoice(msg)
		return nil
	case model.LevelBlank:
		return m.updateBlank(msg)
	case model.LevelRecall:
		return m.updateRecall(msg)
	default:
		return nil
	}
}

// typing reports whether printable keys belong to a text field.
func (m *Model) typing() bool {
	switch m.level {
	case model.LevelBlank:
		return m.blank != nil && m.blank.Phase() == game.PhasePresenting
	case model.LevelRecall:
		if m.recall == nil || m.recall.IsComplete() {
			return false
		}
		_, checked := m.recall.Result()
		return !checked
	default:
		return false
	}
}

func (m *Model) waiting() bool {
	switch m.level {
	case model.LevelBlank:
		return m.blank != nil && m.blank.Phase() == game.PhaseLoading
	case model.LevelRecall:
		return m.recall != nil && m.recall.HintLoading()
	default:
		return false
	}
}

func (m *Model) startRound() tea.Cmd {
	m.cancelLoad()
	if m.blank != nil && m.level != model.LevelBlank {
		m.blank.Abandon()
	}
	m.recorded = false
	m.status = ""
	m.startedAt = time.Now()
	m.loadFooterStats()

	topics := m.curriculum.Topics
	switch m.level {
	case model.LevelMatch:
		m.match = game.NewMatch(topics, m.gen.Match(topics))
		m.matchCursor = 0
		m.matchTarget = 0
	case model.LevelChoice:
		m.choice = game.NewChoice(m.gen.Choice(topics))
		m.choiceCursor = 0
	case model.LevelBlank:
		return m.startBlank()
	case model.LevelRecall:
		m.recall = game.NewRecall(m.gen.Recall(topics))
		m.recallInput = m.newRecallInput()
		return m.recallInput.Focus()
	}
	return nil
}

func (m *Model) startBlank() tea.Cmd {
	if m.blank == nil {
		m.blank = game.NewBlank(m.perf)
	}
	epoch := m.blank.Begin()
	m.blankInputs = nil
	m.blankFocus = 0
	if m.ai == nil {
		m.logger.Warn("fill-in-the-blank needs a text generation service")
		m.blank.Load(epoch, nil, errNoService)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.blankCancel = cancel
	gen := m.gen.Fork()
	topics := m.curriculum.Topics
	perf := m.perf
	svc := m.ai
	load := func() tea.Msg {
		defer cancel()
		var data model.PerformanceData
		if perf != nil {
			data = perf.Get(ctx)
		}
		items, err := gen.Blanks(ctx, topics, data, svc)
		return blanksLoadedMsg{epoch: epoch, items: items, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

func (m *Model) cancelLoad() {
	if m.blankCancel != nil {
		m.blankCancel()
		m.blankCancel = nil
	}
}

func (m *Model) applyBlanks(msg blanksLoadedMsg) tea.Cmd {
	if m.level != model.LevelBlank || m.blank == nil || !m.blank.Load(msg.epoch, msg.items, msg.err) {
		m.logger.Debug("discarding stale question set", "epoch", msg.epoch)
		return nil
	}
	m.cancelLoad()
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			m.logger.Debug("question generation canceled")
		} else {
			m.logger.Error("failed to generate questions", "err", msg.err)
		}
		return nil
	}
	m.logger.Debug("generated questions", "count", len(msg.items))
	m.startedAt = time.Now()
	return m.prepareBlankInputs()
}

func (m *Model) prepareBlankInputs() tea.Cmd {
	item, ok := m.blank.Current()
	if !ok {
		m.blankInputs = nil
		m.finishRound()
		return nil
	}
	m.blankInputs = make([]textinput.Model, item.BlankCount())
	for i := range m.blankInputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = "…"
		ti.Width = blankInputWidth
		ti.CharLimit = 40
		m.blankInputs[i] = ti
	}
	m.blankFocus = 0
	return m.blankInputs[0].Focus()
}

func (m *Model) focusBlank(i int) tea.Cmd {
	n := len(m.blankInputs)
	if n == 0 {
		return nil
	}
	m.blankInputs[m.blankFocus].Blur()
	m.blankFocus = (i%n + n) % n
	return m.blankInputs[m.blankFocus].Focus()
}

func (m *Model) newRecallInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "One phrase per line"
	ta.ShowLineNumbers = false
	ta.SetWidth(m.contentWidth())
	ta.SetHeight(8)
	return ta
}

func (m *Model) forwardToInputs(msg tea.Msg) tea.Cmd {
	switch m.level {
	case model.LevelBlank:
		if m.blankFocus < len(m.blankInputs) {
			var cmd tea.Cmd
			m.blankInputs[m.blankFocus], cmd = m.blankInputs[m.blankFocus].Update(msg)
			return cmd
		}
	case model.LevelRecall:
		if m.typing() {
			var cmd tea.Cmd
			m.recallInput, cmd = m.recallInput.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) updateMatch(msg tea.KeyMsg) tea.Cmd {
	if m.match == nil || m.match.IsComplete() {
		return nil
	}
	pool := m.match.Pool()
	topics := m.curriculum.Topics
	switch msg.String() {
	case "up", "k":
		m.matchCursor = max(0, m.matchCursor-1)
	case "down", "j":
		m.matchCursor = min(len(pool)-1, m.matchCursor+1)
	case "left", "h":
		m.matchTarget = (m.matchTarget + len(topics) - 1) % len(topics)
	case "right", "l":
		m.matchTarget = (m.matchTarget + 1) % len(topics)
	case "enter", " ":
		if m.matchCursor >= len(pool) {
			return nil
		}
		res, seq := m.match.Drop(pool[m.matchCursor], topics[m.matchTarget].ID)
		switch res {
		case game.DropIncorrect:
			return tea.Tick(game.FlashDuration, func(time.Time) tea.Msg {
				return flashDoneMsg{seq: seq}
			})
		case game.DropCorrect:
			m.matchCursor = max(0, min(m.matchCursor, len(m.match.Pool())-1))
			if m.match.IsComplete() {
				m.finishRound()
			}
		}
	}
	return nil
}

func (m *Model) updateChoice(msg tea.KeyMsg) {
	if m.choice == nil {
		return
	}
	item, ok := m.choice.Current()
	if !ok {
		return
	}
	key := msg.String()
	if _, answered := m.choice.Selected(); answered {
		switch key {
		case "enter", "n", "right", " ":
			m.choice.Advance()
			m.choiceCursor = 0
			if m.choice.IsComplete() {
				m.finishRound()
			}
		}
		return
	}
	switch key {
	case "up", "k":
		m.choiceCursor = max(0, m.choiceCursor-1)
	case "down", "j":
		m.choiceCursor = min(len(item.Options)-1, m.choiceCursor+1)
	case "a", "b", "c", "d":
		if idx := int(key[0] - 'a'); idx < len(item.Options) {
			m.choiceCursor = idx
			m.choice.Select(item.Options[idx])
		}
	case "enter", " ":
		if m.choiceCursor < len(item.Options) {
			m.choice.Select(item.Options[m.choiceCursor])
		}
	}
}

func (m *Model) updateBlank(msg tea.KeyMsg) tea.Cmd {
	if m.blank == nil {
		return nil
	}
	switch m.blank.Phase() {
	case game.PhasePresenting:
		switch msg.String() {
		case "tab", "down":
			return m.focusBlank(m.blankFocus + 1)
		case "shift+tab", "up":
			return m.focusBlank(m.blankFocus - 1)
		case "enter":
			if m.blank.Commit(context.Background()) == game.CommitSubmitted {
				for i := range m.blankInputs {
					m.blankInputs[i].Blur()
				}
			}
			return nil
		}
		if m.blankFocus >= len(m.blankInputs) {
			return nil
		}
		var cmd tea.Cmd
		m.blankInputs[m.blankFocus], cmd = m.blankInputs[m.blankFocus].Update(msg)
		m.blank.SetInput(m.blankFocus, m.blankInputs[m.blankFocus].Value())
		return cmd
	case game.PhaseSubmitted:
		switch msg.String() {
		case "enter", "n":
			if m.blank.Commit(context.Background()) == game.CommitAdvanced {
				return m.prepareBlankInputs()
			}
		}
	}
	return nil
}

func (m *Model) updateRecall(msg tea.KeyMsg) tea.Cmd {
	if m.recall == nil || m.recall.IsComplete() {
		return nil
	}
	key := msg.String()
	if _, checked := m.recall.Result(); checked {
		switch key {
		case "enter", "n":
			m.recall.Advance()
			if m.recall.IsComplete() {
				m.finishRound()
				return nil
			}
			m.recallInput = m.newRecallInput()
			return m.recallInput.Focus()
		}
		return nil
	}
	if key == "ctrl+g" {
		return m.requestHint()
	}
	if key == "ctrl+s" {
		if _, ok := m.recall.Check(m.recallInput.Value()); ok {
			m.recallInput.Blur()
		}
		return nil
	}
	var cmd tea.Cmd
	m.recallInput, cmd = m.recallInput.Update(msg)
	return cmd
}

func (m *Model) requestHint() tea.Cmd {
	item, ok := m.recall.Current()
	if !ok {
		return nil
	}
	epoch, ok := m.recall.BeginHint()
	if !ok {
		return nil
	}
	if m.ai == nil {
		m.recall.ResolveHint(epoch, "", errNoService)
		return nil
	}
	svc := m.ai
	title := item.Topic.Title
	timeout := m.timeout
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := svc.Hint(ctx, title)
		return hintMsg{epoch: epoch, text: text, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m *Model) applyHint(msg hintMsg) {
	if m.recall == nil || !m.recall.ResolveHint(msg.epoch, msg.text, msg.err) {
		m.logger.Debug("discarding stale hint", "epoch", msg.epoch)
		return
	}
	if msg.err != nil {
		m.logger.Warn("failed to get hint", "err", msg.err)
	}
}

func (m *Model) speakFocused() tea.Cmd {
	title := m.focusedTitle()
	if title == "" {
		return nil
	}
	if m.speaker == nil {
		m.status = "Speech is not available with the current provider."
		return nil
	}
	sp := m.speaker
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return spokenMsg{text: title, err: sp.Say(ctx, title)}
	}
}

func (m *Model) focusedTitle() string {
	switch m.level {
	case model.LevelMatch:
		if m.matchTarget < len(m.curriculum.Topics) {
			return m.curriculum.Topics[m.matchTarget].Title
		}
	case model.LevelChoice:
		if item, ok := m.choice.Current(); ok {
			return item.TopicTitle
		}
	case model.LevelBlank:
		if item, ok := m.blank.Current(); ok {
			return item.TopicTitle
		}
	case model.LevelRecall:
		if item, ok := m.recall.Current(); ok {
			return item.Topic.Title
		}
	}
	return ""
}

func (m *Model) loadCurriculum(id string) model.Curriculum {
	c, err := corpus.Get(id)
	if err == nil {
		return c
	}
	m.logger.Warn("unknown curriculum, using default", "set", id, "err", err)
	c, err = corpus.Get(corpus.FiveSeeingHabits)
	if err != nil {
		m.logger.Error("builtin curriculum missing", "err", err)
	}
	return c
}

func (m *Model) switchCurriculum() {
	m.curriculum = m.loadCurriculum(corpus.Toggle(m.curriculum.ID))
}

func (m *Model) loadTheme() string {
	value, ok, err := m.store.Get(context.Background(), store.KeyTheme)
	if err != nil {
		m.logger.Warn("failed to load theme", "err", err)
		return themeDark
	}
	if _, known := palettes[value]; !ok || !known {
		return themeDark
	}
	return value
}

func (m *Model) toggleTheme() {
	m.styles = newStyles(otherTheme(m.styles.name))
	if err := m.store.Set(context.Background(), store.KeyTheme, m.styles.name); err != nil {
		m.logger.Warn("failed to save theme", "err", err)
	}
}

func (m *Model) isComplete() bool {
	switch m.level {
	case model.LevelMatch:
		return m.match != nil && m.match.IsComplete()
	case model.LevelChoice:
		return m.choice != nil && m.choice.IsComplete()
	case model.LevelBlank:
		return m.blank != nil && m.blank.IsComplete()
	case model.LevelRecall:
		return m.recall != nil && m.recall.IsComplete()
	default:
		return false
	}
}

func (m *Model) tally() game.Tally {
	switch m.level {
	case model.LevelMatch:
		if m.match != nil {
			return m.match.Tally()
		}
	case model.LevelChoice:
		if m.choice != nil {
			return m.choice.Tally()
		}
	case model.LevelBlank:
		if m.blank != nil {
			return m.blank.Tally()
		}
	case model.LevelRecall:
		if m.recall != nil {
			return m.recall.Tally()
		}
	}
	return game.Tally{}
}

func (m *Model) progress() game.Progress {
	switch m.level {
	case model.LevelMatch:
		if m.match != nil {
			return m.match.Progress()
		}
	case model.LevelChoice:
		if m.choice != nil {
			return m.choice.Progress()
		}
	case model.LevelBlank:
		if m.blank != nil {
			return m.blank.Progress()
		}
	case model.LevelRecall:
		if m.recall != nil {
			return m.recall.Progress()
		}
	}
	return game.Progress{}
}

func (m *Model) finishRound() {
	if m.recorded {
		return
	}
	m.recorded = true
	m.cancelLoad()
	tally := m.tally()
	if tally.Correct+tally.Incorrect == 0 {
		return
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:  m.startedAt,
		EndedAt:    endedAt,
		Curriculum: m.curriculum.ID,
		Level:      m.level,
		Correct:    tally.Correct,
		Incorrect:  tally.Incorrect,
		DurationMs: endedAt.Sub(m.startedAt).Milliseconds(),
	}
	if _, err := m.store.InsertSession(context.Background(), stats); err != nil {
		m.logger.Error("failed to save session", "err", err)
	}
	m.lastAcc, _ = statsPkg.SessionMetrics(stats.Correct, stats.Incorrect, stats.DurationMs)
	m.hasLast = true
	m.allCorrect += stats.Correct
	m.allIncorrect += stats.Incorrect
	m.allAcc, _ = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, 0)
}

func (m *Model) loadFooterStats() {
	m.lastAcc, m.allAcc, m.hasLast = 0, 0, false
	m.allCorrect, m.allIncorrect = 0, 0
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{
		Curriculum: m.curriculum.ID,
		Level:      m.level,
	})
	if err != nil {
		m.logger.Warn("failed to load session stats", "err", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastAcc, _ = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
	}
	m.allAcc, _ = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, 0)
}
