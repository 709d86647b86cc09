// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/habitdrill/internal/corpus"
	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
	tabStruggles
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// PerformanceSource exposes the recorded word failures.
type PerformanceSource interface {
	Get(ctx context.Context) model.PerformanceData
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store stats.SessionLister
	perf  PerformanceSource
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st stats.SessionLister, perf PerformanceSource, cfg model.StatsConfig) *Model {
	sessions := newTable(sessionColumns())
	struggles := newTable(struggleColumns(40))
	m := &Model{
		store:    st,
		perf:     perf,
		cfg:      cfg,
		tabs:     []string{"Overview", "Sessions", "Struggles"},
		overview: viewport.New(0, 0),
		tables: map[int]*table.Model{
			tabSessions:  &sessions,
			tabStruggles: &struggles,
		},
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "c":
			m.cfg.Curriculum = nextCurriculum(m.cfg.Curriculum)
			m.refreshReport()
			return m, nil
		case "v":
			m.cfg.Level = nextLevel(m.cfg.Level)
			m.refreshReport()
			return m, nil
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if t, ok := m.tables[m.activeTab]; ok {
			*t, cmd = t.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	m.tables[tabStruggles].SetColumns(struggleColumns(m.width))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	for i, t := range m.tables {
		if i == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	set := m.cfg.Curriculum
	if set == "" {
		set = "any"
	}
	level := "any"
	if m.cfg.Level.Valid() {
		level = fmt.Sprintf("%d", m.cfg.Level)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: set=%s  level=%s  last=%s  window=%d", set, level, last, m.cfg.CurveWindow)
	return headerStyle.Render(runewidth.Truncate(summary, max(1, m.width), "…"))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Set: c  Level: v  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabSessions:
		if len(m.report.Sessions) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(m.tables[tabSessions].View())
	case tabStruggles:
		if len(m.report.Struggles) == 0 {
			return "No failed words recorded."
		}
		return tableMutedStyle.Render(m.tables[tabStruggles].View())
	default:
		return m.overview.View()
	}
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	var perf model.PerformanceData
	if m.perf != nil {
		perf = m.perf.Get(ctx)
	}
	report, err := stats.BuildReport(ctx, m.store, perf, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSessions].SetRows(sessionRows(report.Sessions))
	m.tables[tabStruggles].SetRows(struggleRows(report.Struggles))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
}

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, sessions); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	if err := stats.RenderCurves(&buf, sessions, window, width); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Set", Width: 4},
		{Title: "Level", Width: 18},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Accuracy", Width: 8},
		{Title: "Duration", Width: 8},
	}
}

func sessionRows(sessions []model.SessionAggregate) []table.Row {
	// Newest first.
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range lo.Reverse(append([]model.SessionAggregate(nil), sessions...)) {
		acc, _ := stats.SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Curriculum,
			s.Level.Label(),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%d", s.Incorrect),
			fmt.Sprintf("%.1f%%", acc*100),
			formatDuration(s.DurationMs),
		})
	}
	return rows
}

func struggleColumns(width int) []table.Column {
	fixed := 16 + 8 + 24
	return []table.Column{
		{Title: "Word", Width: 16},
		{Title: "Failures", Width: 8},
		{Title: "Topic", Width: 24},
		{Title: "Phrase", Width: max(20, width-fixed-4)},
	}
}

func struggleRows(struggles []model.WordStruggle) []table.Row {
	return lo.Map(struggles, func(s model.WordStruggle, _ int) table.Row {
		return table.Row{s.Word, fmt.Sprintf("%d", s.Count), s.TopicID, s.Phrase}
	})
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func nextCurriculum(current string) string {
	options := append([]string{""}, corpus.IDs()...)
	idx := lo.IndexOf(options, current)
	return options[(idx+1)%len(options)]
}

func nextLevel(current model.Level) model.Level {
	if current >= model.LevelRecall || current < 0 {
		return 0
	}
	return current + 1
}

func nextCurveWindow(n int) int {
	switch {
	case n < 5:
		return 5
	case n < 10:
		return 10
	case n < 20:
		return 20
	default:
		return n + 10
	}
}

func prevCurveWindow(n int) int {
	switch {
	case n > 20:
		return n - 10
	case n > 10:
		return 10
	case n > 5:
		return 5
	default:
		return 1
	}
}

func fitLines(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	clip := lipgloss.NewStyle().MaxWidth(width)
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = clip.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
