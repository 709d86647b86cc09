package stats

import (
	"context"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// SessionLister reads stored session history.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions  []model.SessionAggregate
	Struggles []model.WordStruggle
}

// BuildReport loads sessions and ranks failed words for rendering.
func BuildReport(ctx context.Context, st SessionLister, perf model.PerformanceData, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return Report{
		Sessions:  sessions,
		Struggles: TopFailedWords(perf, cfg.TopWords),
	}, nil
}
