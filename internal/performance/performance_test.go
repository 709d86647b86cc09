package performance

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/verte-zerg/habitdrill/internal/stats"
	"github.com/verte-zerg/habitdrill/internal/store"
)

type memBackend struct {
	values  map[string]string
	getErr  error
	setErr  error
	delErr  error
	sets    int
	deletes int
}

func newMemBackend() *memBackend {
	return &memBackend{values: map[string]string{}}
}

func (b *memBackend) Get(_ context.Context, key string) (string, bool, error) {
	if b.getErr != nil {
		return "", false, b.getErr
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *memBackend) Set(_ context.Context, key, value string) error {
	b.sets++
	if b.setErr != nil {
		return b.setErr
	}
	b.values[key] = value
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	b.deletes++
	if b.delErr != nil {
		return b.delErr
	}
	delete(b.values, key)
	return nil
}

func TestGetEmptyWhenAbsent(t *testing.T) {
	s := New(newMemBackend(), nil)
	if data := s.Get(context.Background()); len(data) != 0 {
		t.Fatalf("expected empty data, got %v", data)
	}
}

func TestGetEmptyWhenMalformed(t *testing.T) {
	backend := newMemBackend()
	backend.values[store.KeyPerformance] = "{not json"
	s := New(backend, nil)
	if data := s.Get(context.Background()); len(data) != 0 {
		t.Fatalf("expected empty data, got %v", data)
	}
}

func TestGetEmptyWhenBackendFails(t *testing.T) {
	backend := newMemBackend()
	backend.getErr = errors.New("disk on fire")
	s := New(backend, nil)
	if data := s.Get(context.Background()); len(data) != 0 {
		t.Fatalf("expected empty data, got %v", data)
	}
}

func TestRecordFailuresNormalizesAndCounts(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, nil)
	ctx := context.Background()

	s.RecordFailures(ctx, "get-big-picture", "REMEMBER STAY BACK AND SEE IT ALL", []string{"Stay", "stay ", "BACK"})
	s.RecordFailures(ctx, "get-big-picture", "REMEMBER STAY BACK AND SEE IT ALL", []string{"stay"})

	got := s.Get(ctx).FailedWords("get-big-picture", "REMEMBER STAY BACK AND SEE IT ALL")
	want := map[string]int{"stay": 3, "back": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected counts: %v", got)
	}
	if backend.values[store.KeyPerformance] == "" {
		t.Fatalf("expected data to be persisted")
	}

	// A fresh store over the same backend sees the persisted counts.
	reloaded := New(backend, nil).Get(ctx).FailedWords("get-big-picture", "REMEMBER STAY BACK AND SEE IT ALL")
	if !reflect.DeepEqual(reloaded, want) {
		t.Fatalf("unexpected reloaded counts: %v", reloaded)
	}
}

func TestPersistedShape(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, nil)
	s.RecordFailures(context.Background(), "t1", "Alpha", []string{"alpha"})
	want := `{"t1":{"Alpha":{"failedWords":{"alpha":1}}}}`
	if got := backend.values[store.KeyPerformance]; got != want {
		t.Fatalf("unexpected blob: %s", got)
	}
}

func TestRecordFailuresMonotonic(t *testing.T) {
	s := New(newMemBackend(), nil)
	ctx := context.Background()
	prev := 0
	for i := 0; i < 5; i++ {
		s.RecordFailures(ctx, "t", "p", []string{"w"})
		cur := s.Get(ctx).FailedWords("t", "p")["w"]
		if cur != prev+1 {
			t.Fatalf("expected count %d, got %d", prev+1, cur)
		}
		prev = cur
	}
}

func TestRecordFailuresSurvivesWriteError(t *testing.T) {
	backend := newMemBackend()
	backend.setErr = errors.New("read-only")
	s := New(backend, nil)
	ctx := context.Background()
	s.RecordFailures(ctx, "t", "p", []string{"w"})
	if backend.sets != 1 {
		t.Fatalf("expected one write attempt, got %d", backend.sets)
	}
	if n := s.Get(ctx).FailedWords("t", "p")["w"]; n != 1 {
		t.Fatalf("expected in-memory count 1, got %d", n)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New(newMemBackend(), nil)
	ctx := context.Background()
	s.RecordFailures(ctx, "t", "p", []string{"w"})
	snap := s.Get(ctx)
	s.RecordFailures(ctx, "t", "p", []string{"w"})
	if snap.FailedWords("t", "p")["w"] != 1 {
		t.Fatalf("snapshot observed a later write")
	}
	snap["t"]["p"].FailedWords["w"] = 99
	if s.Get(ctx).FailedWords("t", "p")["w"] != 2 {
		t.Fatalf("mutating a snapshot changed the store")
	}
}

func TestReset(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, nil)
	ctx := context.Background()
	s.RecordFailures(ctx, "t", "p", []string{"w"})
	s.Reset(ctx)
	if len(s.Get(ctx)) != 0 {
		t.Fatalf("expected empty data after reset")
	}
	if _, ok := backend.values[store.KeyPerformance]; ok {
		t.Fatalf("expected durable slot to be cleared")
	}
}

func TestRecordedFailuresRankByCount(t *testing.T) {
	s := New(newMemBackend(), nil)
	ctx := context.Background()
	s.RecordFailures(ctx, "t", "p", []string{"back", "stay", "stay", "see", "see"})
	got := stats.SelectStruggleWords(s.Get(ctx).FailedWords("t", "p"), 0)
	want := []string{"see", "stay", "back"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected struggle order: %v", got)
	}
}

func TestSQLiteBackend(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "habitdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	New(st, nil).RecordFailures(ctx, "t", "p", []string{"Word"})
	if n := New(st, nil).Get(ctx).FailedWords("t", "p")["word"]; n != 1 {
		t.Fatalf("expected persisted count 1, got %d", n)
	}
}
