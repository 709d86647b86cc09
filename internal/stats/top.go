// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/habitdrill/internal/model"
)

// TopFailedWords flattens performance data and returns the n most failed
// words across every phrase. n <= 0 returns all of them.
func TopFailedWords(data model.PerformanceData, n int) []model.WordStruggle {
	var items []model.WordStruggle
	for topicID, phrases := range data {
		for phrase, perf := range phrases {
			for word, count := range perf.FailedWords {
				items = append(items, model.WordStruggle{
					TopicID: topicID,
					Phrase:  phrase,
					Word:    word,
					Count:   count,
				})
			}
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Word != b.Word {
			return a.Word < b.Word
		}
		if a.TopicID != b.TopicID {
			return a.TopicID < b.TopicID
		}
		return a.Phrase < b.Phrase
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}
