package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is a rendered fragment that is never split across lines.
type cell struct {
	s       string
	width   int
	isSpace bool
}

var spaceCell = cell{s: " ", width: 1, isSpace: true}

// textCells splits text into styled words separated by space cells.
func textCells(text string, render func(...string) string) []cell {
	words := strings.Fields(text)
	out := make([]cell, 0, len(words)*2)
	for i, w := range words {
		if i > 0 {
			out = append(out, spaceCell)
		}
		out = append(out, cell{s: render(w), width: runewidth.StringWidth(w)})
	}
	return out
}

// blockCell keeps an already rendered fragment, such as a text input, whole.
func blockCell(rendered string, width int) cell {
	return cell{s: rendered, width: width}
}

func joinCells(groups ...[]cell) []cell {
	var out []cell
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, spaceCell)
		}
		out = append(out, g...)
	}
	return out
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapCells breaks cells into lines no wider than width, preferring to
// break at spaces. A cell wider than width gets a line of its own.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderCells(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}

func lineWidthOf(line []cell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// truncate shortens s to width terminal columns with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
