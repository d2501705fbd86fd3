// Package performance summarizes quiz history per topic.
package performance

import (
	"sort"

	"github.com/abhisek/edugenie/internal/store"
)

// TopicStats aggregates every attempt on one topic.
type TopicStats struct {
	Topic    string
	Score    int
	Total    int
	Attempts int
}

// Ratio is Score/Total.
func (s TopicStats) Ratio() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}

// TopicRatios groups history by topic in order of first appearance. A
// record with a zero total counts as a total of one.
func TopicRatios(history []store.QuizRecord) []TopicStats {
	index := make(map[string]int)
	stats := make([]TopicStats, 0)
	for _, rec := range history {
		i, ok := index[rec.Topic]
		if !ok {
			i = len(stats)
			index[rec.Topic] = i
			stats = append(stats, TopicStats{Topic: rec.Topic})
		}
		total := rec.Total
		if total <= 0 {
			total = 1
		}
		stats[i].Score += rec.Score
		stats[i].Total += total
		stats[i].Attempts++
	}
	return stats
}

// WeakTopics returns up to topK topics ordered weakest first. Ties keep
// discovery order. Empty history yields an empty slice.
func WeakTopics(history []store.QuizRecord, topK int) []string {
	stats := TopicRatios(history)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Ratio() < stats[j].Ratio()
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(stats) {
		topK = len(stats)
	}
	out := make([]string, 0, topK)
	for _, s := range stats[:topK] {
		out = append(out, s.Topic)
	}
	return out
}
