package stats

import (
	"sort"

	"github.com/samber/lo"
)

// SelectStruggleWords orders failed words by count, highest first, with ties
// broken alphabetically. top <= 0 keeps every word.
func SelectStruggleWords(counts map[string]int, top int) []string {
	if len(counts) == 0 {
		return nil
	}
	words := lo.Keys(counts)
	sort.Slice(words, func(i, j int) bool {
		ci, cj := counts[words[i]], counts[words[j]]
		if ci == cj {
			return words[i] < words[j]
		}
		return ci > cj
	})
	if top > 0 && top < len(words) {
		words = words[:top]
	}
	return words
}
