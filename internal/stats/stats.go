package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/habitdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and answers per minute for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (accuracy, perMinute float64) {
	total := correct + incorrect
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	if durationMs > 0 {
		perMinute = float64(total) / (float64(durationMs) / 60000.0)
	}
	return accuracy, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := lo.Min(values)
	maxVal := lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints overall and per-level totals for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	correct := lo.SumBy(sessions, func(s model.SessionAggregate) int { return s.Correct })
	incorrect := lo.SumBy(sessions, func(s model.SessionAggregate) int { return s.Incorrect })
	duration := lo.SumBy(sessions, func(s model.SessionAggregate) int64 { return s.DurationMs })
	acc, pace := SessionMetrics(correct, incorrect, duration)

	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Answers: %d correct, %d incorrect", correct, incorrect),
		fmt.Sprintf("Accuracy: %.1f%%", acc*100),
		fmt.Sprintf("Pace: %.1f answers/min", pace),
		"",
	}

	byLevel := lo.GroupBy(sessions, func(s model.SessionAggregate) model.Level { return s.Level })
	headers := []string{"Level", "Sessions", "Accuracy"}
	var rows [][]string
	for level := model.LevelMatch; level <= model.LevelRecall; level++ {
		group, ok := byLevel[level]
		if !ok {
			continue
		}
		c := lo.SumBy(group, func(s model.SessionAggregate) int { return s.Correct })
		i := lo.SumBy(group, func(s model.SessionAggregate) int { return s.Incorrect })
		levelAcc, _ := SessionMetrics(c, i, 0)
		rows = append(rows, []string{
			level.Label(),
			fmt.Sprintf("%d", len(group)),
			fmt.Sprintf("%.1f%%", levelAcc*100),
		})
	}
	lines = append(lines, formatTable(headers, rows, map[int]bool{1: true, 2: true})...)
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints a smoothed accuracy sparkline sized to totalWidth.
// totalWidth <= 0 uses the terminal width.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := lo.Map(sessions, func(s model.SessionAggregate, _ int) float64 {
		acc, _ := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		return acc * 100
	})
	accs = MovingAverage(accs, window)
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	line := Sparkline(downsample(accs, SparkWidthFor(totalWidth)))
	if _, err := fmt.Fprintf(w, "Accuracy trend (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%5.1f%% |%s| %5.1f%%\n\n", accs[0], line, accs[len(accs)-1]); err != nil {
		return err
	}
	return nil
}

// RenderStruggleTable prints the most failed words.
func RenderStruggleTable(w io.Writer, struggles []model.WordStruggle, phraseWidth int) error {
	if len(struggles) == 0 {
		_, err := fmt.Fprintln(w, "No failed words recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most Failed Words"); err != nil {
		return err
	}
	headers := []string{"Word", "Failures", "Topic", "Phrase"}
	rows := lo.Map(struggles, func(s model.WordStruggle, _ int) []string {
		return []string{s.Word, fmt.Sprintf("%d", s.Count), s.TopicID, truncateCell(s.Phrase, phraseWidth)}
	})
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
