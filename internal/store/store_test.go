package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/habitdrill/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "habitdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestKeyValueRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, KeyTheme); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := st.Get(ctx, KeyTheme)
	if err != nil || !ok || value != "light" {
		t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
	}
	if err := st.Delete(ctx, KeyTheme); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, KeyTheme); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, ok, _ := st.Get(ctx, KeyTheme); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	rows := []model.SessionStats{
		{Curriculum: "5s", Level: model.LevelMatch, Correct: 15},
		{Curriculum: "5s", Level: model.LevelBlank, Correct: 10, Incorrect: 5},
		{Curriculum: "10s", Level: model.LevelBlank, Correct: 20},
	}
	for i, r := range rows {
		r.StartedAt = base.Add(time.Duration(i) * time.Hour)
		r.EndedAt = r.StartedAt.Add(time.Minute)
		r.DurationMs = time.Minute.Milliseconds()
		if _, err := st.InsertSession(ctx, r); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if !all[0].EndedAt.Before(all[2].EndedAt) {
		t.Fatalf("sessions not ordered oldest first")
	}

	fives, err := st.ListSessions(ctx, model.StatsConfig{Curriculum: "5s"})
	if err != nil {
		t.Fatalf("list 5s: %v", err)
	}
	if len(fives) != 2 {
		t.Fatalf("expected 2 sessions for 5s, got %d", len(fives))
	}

	blanks, err := st.ListSessions(ctx, model.StatsConfig{Level: model.LevelBlank})
	if err != nil {
		t.Fatalf("list level 3: %v", err)
	}
	if len(blanks) != 2 || blanks[0].Incorrect != 5 || blanks[0].Level != model.LevelBlank {
		t.Fatalf("unexpected level filter result: %+v", blanks)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].Curriculum != "10s" {
		t.Fatalf("unexpected since filter result: %+v", recent)
	}
}
