// Package performance tracks which words the user failed for each phrase.
package performance

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/habitdrill/internal/answer"
	"github.com/verte-zerg/habitdrill/internal/model"
	"github.com/verte-zerg/habitdrill/internal/store"
)

// Backend is the durable key-value slot the store persists into.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store caches performance data in memory and mirrors it to a Backend.
// Storage errors never reach callers; they are logged and the in-memory
// copy stays authoritative for the rest of the process.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	logger  *log.Logger

	loaded bool
	data   model.PerformanceData
}

// New returns a Store persisting under store.KeyPerformance.
// A nil logger discards messages.
func New(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		backend: backend,
		key:     store.KeyPerformance,
		logger:  logger,
	}
}

// Get returns a snapshot of all performance data. Later writes do not
// affect a returned snapshot.
func (s *Store) Get(ctx context.Context) model.PerformanceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.data.Clone()
}

// RecordFailures increments the failure count of each word for the phrase
// and persists the whole mapping.
func (s *Store) RecordFailures(ctx context.Context, topicID, phrase string, words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	changed := false
	for _, w := range words {
		w = answer.NormalizeWord(w)
		if w == "" {
			continue
		}
		phrases := s.data[topicID]
		if phrases == nil {
			phrases = map[string]model.PhrasePerformance{}
			s.data[topicID] = phrases
		}
		perf := phrases[phrase]
		if perf.FailedWords == nil {
			perf.FailedWords = map[string]int{}
		}
		perf.FailedWords[w]++
		phrases[phrase] = perf
		changed = true
	}
	if !changed {
		return
	}
	s.persist(ctx)
}

// Reset clears durable storage and the in-memory copy.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to clear performance data", "err", err)
	}
	s.data = model.PerformanceData{}
	s.loaded = true
}

func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.data = model.PerformanceData{}

	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("failed to load performance data", "err", err)
		return
	}
	if !ok || raw == "" {
		return
	}
	var data model.PerformanceData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("ignoring malformed performance data", "err", err)
		return
	}
	if data != nil {
		s.data = data
	}
}

func (s *Store) persist(ctx context.Context) {
	b, err := json.Marshal(s.data)
	if err != nil {
		s.logger.Error("failed to encode performance data", "err", err)
		return
	}
	if err := s.backend.Set(ctx, s.key, string(b)); err != nil {
		s.logger.Error("failed to save performance data", "err", err)
	}
}
