// Package summary computes statistical digests over a window of stored
// chat messages. The engine is stateless: every digest is recomputed fresh
// from the records it is handed.
package summary

import (
	"sort"
	"time"

	"github.com/basket/chatdigest/internal/persistence"
)

// KeywordExtractor is the analyzer capability the engine consumes.
type KeywordExtractor interface {
	ExtractKeywords(text string) []string
}

// AuthorCount is one entry of the per-author activity ranking.
type AuthorCount struct {
	Author string
	Count  int
}

// KeywordCount is one entry of the dominant-keyword ranking.
type KeywordCount struct {
	Keyword string
	Count   int
}

// Summary is the ephemeral digest of one window. Never persisted.
type Summary struct {
	WindowHours     int
	TotalMessages   int
	DistinctAuthors int
	TopAuthors      []AuthorCount
	BusiestHour     time.Time
	BusiestCount    int
	TopKeywords     []KeywordCount

	// Empty marks a window with no records; all counts are zero and the
	// presentation layer renders a "nothing found" reply.
	Empty bool
}

// Engine aggregates message records into a Summary.
type Engine struct {
	analyzer KeywordExtractor
}

func NewEngine(analyzer KeywordExtractor) *Engine {
	return &Engine{analyzer: analyzer}
}

// Summarize computes the digest for records. Input records are not
// mutated. topUsersK or topNounsK of zero yields empty rankings; K larger
// than the number of distinct entries yields all entries, no padding.
func (e *Engine) Summarize(records []persistence.Message, windowHours, topUsersK, topNounsK int) Summary {
	s := Summary{WindowHours: windowHours}
	if len(records) == 0 {
		s.Empty = true
		return s
	}

	s.TotalMessages = len(records)

	authorCounts := make(map[string]int)
	authorOrder := make(map[string]int) // first-seen rank, for tie-breaks
	hourCounts := make(map[time.Time]int)
	keywordCounts := make(map[string]int)
	keywordOrder := make(map[string]int)

	for _, rec := range records {
		if _, seen := authorCounts[rec.Author]; !seen {
			authorOrder[rec.Author] = len(authorOrder)
		}
		authorCounts[rec.Author]++

		hourCounts[rec.Timestamp.UTC().Truncate(time.Hour)]++

		// Repeats within one message each count; no per-record dedup.
		for _, kw := range e.keywordsFor(rec.Text) {
			if _, seen := keywordCounts[kw]; !seen {
				keywordOrder[kw] = len(keywordOrder)
			}
			keywordCounts[kw]++
		}
	}

	s.DistinctAuthors = len(authorCounts)
	s.TopAuthors = topAuthors(authorCounts, authorOrder, topUsersK)
	s.BusiestHour, s.BusiestCount = busiestHour(hourCounts)
	s.TopKeywords = topKeywords(keywordCounts, keywordOrder, topNounsK)
	return s
}

// keywordsFor shields the aggregation pass from a misbehaving analyzer: a
// panic on one message contributes nothing instead of aborting the digest.
func (e *Engine) keywordsFor(text string) (kws []string) {
	if e.analyzer == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			kws = nil
		}
	}()
	return e.analyzer.ExtractKeywords(text)
}

func topAuthors(counts, order map[string]int, k int) []AuthorCount {
	if k <= 0 || len(counts) == 0 {
		return nil
	}
	out := make([]AuthorCount, 0, len(counts))
	for author, n := range counts {
		out = append(out, AuthorCount{Author: author, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return order[out[i].Author] < order[out[j].Author]
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func topKeywords(counts, order map[string]int, k int) []KeywordCount {
	if k <= 0 || len(counts) == 0 {
		return nil
	}
	out := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		out = append(out, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return order[out[i].Keyword] < order[out[j].Keyword]
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func busiestHour(counts map[time.Time]int) (time.Time, int) {
	var best time.Time
	max := 0
	for hour, n := range counts {
		if n > max || (n == max && max > 0 && hour.Before(best)) {
			best = hour
			max = n
		}
	}
	return best, max
}
