package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "habitdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		id, err := st.InsertSession(ctx, model.SessionStats{
			StartedAt:  start,
			EndedAt:    end,
			Curriculum: "5s",
			Level:      model.LevelChoice,
			Correct:    10,
			Incorrect:  5,
			DurationMs: end.Sub(start).Milliseconds(),
		})
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	perf := model.PerformanceData{
		"aim-high": {"p": {FailedWords: map[string]int{"target": 2, "dartboard": 5}}},
	}
	report, err := BuildReport(ctx, st, perf, model.StatsConfig{Curriculum: "5s", Last: 2, TopWords: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.Struggles) != 1 || report.Struggles[0].Word != "dartboard" {
		t.Fatalf("unexpected struggles: %+v", report.Struggles)
	}
}

func TestSessionMetrics(t *testing.T) {
	acc, pace := SessionMetrics(15, 5, 60000)
	if acc != 0.75 {
		t.Fatalf("expected accuracy 0.75, got %v", acc)
	}
	if pace != 20 {
		t.Fatalf("expected 20 answers/min, got %v", pace)
	}
	if acc, pace := SessionMetrics(0, 0, 0); acc != 0 || pace != 0 {
		t.Fatalf("expected zero metrics, got %v %v", acc, pace)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRenderSummaryAndCurves(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Level: model.LevelMatch, Correct: 15, DurationMs: 60000},
		{Level: model.LevelBlank, Correct: 5, Incorrect: 5, DurationMs: 60000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderCurves(&buf, sessions, 1, 40); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Sessions: 2", "Accuracy: 80.0%", "Level 1: Match", "Level 3: Complete", "50.0%", "Accuracy trend"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("summary missing %q:\n%s", needle, out)
		}
	}
}

func TestDownsample(t *testing.T) {
	got := downsample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample: %v", got)
	}
	if len(downsample([]float64{1, 2}, 10)) != 2 {
		t.Fatalf("short series should be unchanged")
	}
}
