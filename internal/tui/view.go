package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/habitdrill/internal/game"
	"github.com/verte-zerg/habitdrill/internal/model"
)

const (
	blankInputWidth  = 12
	defaultWidth     = 80
	minContentWidth  = 24
	matchVisibleRows = 12
)

func completeMessage(level model.Level) string {
	switch level {
	case model.LevelMatch:
		return "You've matched all the phrases correctly."
	case model.LevelChoice:
		return "You've finished the quiz!"
	case model.LevelBlank:
		return "You've completed the fill-in-the-blank challenge!"
	case model.LevelRecall:
		return "You've completed the final recall challenge!"
	default:
		return "Done."
	}
}

func (m *Model) contentWidth() int {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}
	return max(minContentWidth, int(float64(width)*0.70))
}

// View implements tea.Model.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", m.renderBody())
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	title := m.styles.title.Render(fmt.Sprintf("%s · %s", m.curriculum.Title, m.level.Label()))
	lines := []string{title, m.styles.subtitle.Render(m.level.Description())}
	if m.status != "" {
		lines = append(lines, m.styles.pending.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody() string {
	if m.isComplete() {
		return m.renderComplete()
	}
	switch m.level {
	case model.LevelMatch:
		return m.renderMatch()
	case model.LevelChoice:
		return m.renderChoice()
	case model.LevelBlank:
		return m.renderBlank()
	case model.LevelRecall:
		return m.renderRecall()
	default:
		return ""
	}
}

func (m *Model) renderComplete() string {
	tally := m.tally()
	lines := []string{
		m.styles.correct.Render(completeMessage(m.level)),
		m.styles.text.Render(fmt.Sprintf("Correct %d · Incorrect %d", tally.Correct, tally.Incorrect)),
		"",
		m.styles.pending.Render("press r to play again · 1-4 change level · tab switch set"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderMatch() string {
	colWidth := max(10, m.contentWidth()/2-4)
	pool := m.match.Pool()

	start := 0
	if m.matchCursor >= matchVisibleRows {
		start = m.matchCursor - matchVisibleRows + 1
	}
	end := min(len(pool), start+matchVisibleRows)
	var left []string
	for i := start; i < end; i++ {
		phrase := pool[i]
		style := m.styles.text
		prefix := "  "
		if i == m.matchCursor {
			style = m.styles.current
			prefix = "> "
		}
		if phrase == m.match.Flash() {
			style = m.styles.incorrect
		}
		left = append(left, style.Render(prefix+truncate(phrase, colWidth-2)))
	}
	if len(pool) > end {
		left = append(left, m.styles.pending.Render(fmt.Sprintf("  … %d more", len(pool)-end)))
	}

	var right []string
	for i, t := range m.curriculum.Topics {
		placed := m.match.Placed(t.ID)
		label := fmt.Sprintf("%s (%d/%d)", t.Title, len(placed), len(t.Phrases))
		if i != m.matchTarget {
			right = append(right, m.styles.pending.Render("  "+truncate(label, colWidth-2)))
			continue
		}
		right = append(right, m.styles.current.Render("▸ "+truncate(label, colWidth-2)))
		for _, p := range placed {
			right = append(right, m.styles.correct.Render("    "+truncate(p, colWidth-4)))
		}
	}

	pools := m.styles.active.Width(colWidth).Render(strings.Join(left, "\n"))
	targets := m.styles.panel.Width(colWidth).Render(strings.Join(right, "\n"))
	help := m.styles.pending.Render("↑/↓ phrase · ←/→ category · enter drop")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, pools, " ", targets),
		help,
	)
}

func (m *Model) renderChoice() string {
	item, ok := m.choice.Current()
	if !ok {
		return ""
	}
	width := m.contentWidth()
	selected, answered := m.choice.Selected()
	prompt := wrapCells(joinCells(
		textCells("Which phrase belongs to", m.styles.text.Render),
		textCells(item.TopicTitle, m.styles.title.Render),
	), width)
	lines := []string{prompt, ""}
	for i, opt := range item.Options {
		label := fmt.Sprintf("%c) %s", 'a'+i, opt)
		style := m.styles.text
		prefix := "  "
		switch {
		case answered && opt == item.CorrectPhrase:
			style = m.styles.correct
			prefix = "✓ "
		case answered && opt == selected:
			style = m.styles.incorrect
			prefix = "✗ "
		case !answered && i == m.choiceCursor:
			style = m.styles.current
			prefix = "> "
		}
		lines = append(lines, style.Render(prefix+truncate(label, width-2)))
	}
	lines = append(lines, "")
	if answered {
		if selected == item.CorrectPhrase {
			lines = append(lines, m.styles.correct.Render("Correct!"))
		} else {
			lines = append(lines, m.styles.incorrect.Render("Incorrect."))
		}
		lines = append(lines, m.styles.pending.Render("enter next"))
	} else {
		lines = append(lines, m.styles.pending.Render("a-d or ↑/↓ + enter to answer"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBlank() string {
	switch m.blank.Phase() {
	case game.PhaseLoading:
		return m.spinner.View() + m.styles.pending.Render(" Generating questions...")
	case game.PhaseFailed:
		return strings.Join([]string{
			m.styles.incorrect.Render(m.blank.Err()),
			"",
			m.styles.pending.Render("press r to try again"),
		}, "\n")
	}
	item, ok := m.blank.Current()
	if !ok {
		return ""
	}
	submitted := m.blank.Phase() == game.PhaseSubmitted
	results := m.blank.Results()

	var cells []cell
	blank := 0
	for _, part := range item.Parts {
		if !part.Blank {
			cells = joinCells(cells, textCells(part.Text, m.styles.text.Render))
			continue
		}
		var rendered string
		switch {
		case !submitted:
			rendered = "[" + m.blankInputs[blank].View() + "]"
		case results[blank]:
			rendered = m.styles.correct.Render(m.blankInputs[blank].Value())
		default:
			typed := strings.TrimSpace(m.blankInputs[blank].Value())
			rendered = m.styles.incorrect.Render(typed) + " " +
				m.styles.correct.Render("("+item.CorrectAnswers[blank]+")")
		}
		cells = joinCells(cells, []cell{blockCell(rendered, lipgloss.Width(rendered))})
		blank++
	}

	lines := []string{
		m.styles.title.Render(item.TopicTitle),
		"",
		wrapCells(cells, m.contentWidth()),
		"",
	}
	if submitted {
		if allTrue(results) {
			lines = append(lines, m.styles.correct.Render("Correct!"))
		} else {
			lines = append(lines, m.styles.incorrect.Render("Not quite."))
		}
		lines = append(lines, m.styles.pending.Render("enter next"))
	} else {
		lines = append(lines, m.styles.pending.Render("tab next blank · enter check"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRecall() string {
	item, ok := m.recall.Current()
	if !ok {
		return ""
	}
	topic := item.Topic
	lines := []string{
		m.styles.title.Render(topic.Title),
		m.styles.pending.Render(fmt.Sprintf("Type all %d phrases for this category.", len(topic.Phrases))),
		"",
	}
	switch {
	case m.recall.HintLoading():
		lines = append(lines, m.spinner.View()+m.styles.pending.Render(" Getting a hint..."), "")
	case m.recall.Hint() != "":
		hint := wrapCells(textCells(m.recall.Hint(), m.styles.subtitle.Render), m.contentWidth())
		lines = append(lines, hint, "")
	}

	res, checked := m.recall.Result()
	if !checked {
		lines = append(lines, m.recallInput.View(), "",
			m.styles.pending.Render("ctrl+s check · ctrl+g hint"))
		return strings.Join(lines, "\n")
	}
	for _, p := range res.Correct {
		lines = append(lines, m.styles.correct.Render("✓ "+p))
	}
	for _, p := range res.Incorrect {
		lines = append(lines, m.styles.incorrect.Render("✗ "+p))
	}
	if len(res.Missing) > 0 {
		lines = append(lines, "", m.styles.pending.Render("Missing:"))
		for _, p := range res.Missing {
			lines = append(lines, m.styles.text.Render("· "+p))
		}
	}
	lines = append(lines, "", m.styles.pending.Render("enter next"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	p := m.progress()
	shown := p.Index
	if m.level != model.LevelMatch && p.Index < p.Total {
		shown++
	}
	segments := []string{fmt.Sprintf("Progress %d/%d", shown, p.Total)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f%%", m.allAcc*100))
	segments = append(segments, "ctrl+t theme · ctrl+c quit")
	return m.styles.footer.Render(strings.Join(segments, "  "))
}

func allTrue(results []bool) bool {
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}
