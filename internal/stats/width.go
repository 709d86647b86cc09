package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	minSparkWidth = 10
	sparkFrame    = len("100.0% || 100.0%")
)

// SparkWidthFor returns the sparkline width that fits totalWidth columns.
func SparkWidthFor(totalWidth int) int {
	return max(totalWidth-sparkFrame, minSparkWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// downsample averages values into at most width buckets.
func downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
