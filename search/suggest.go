package search

import (
	"context"
	"sync"
	"time"

	"github.com/0xvlm/nftsearch-go/upstream"
)

// Suggester debounces free-text input and delivers collection name
// suggestions for the latest query only. Updates arriving within the
// debounce window cancel the pending lookup; results from a superseded
// lookup are dropped.
type Suggester struct {
	indexer  Indexer
	limit    int
	minChars int
	debounce time.Duration
	deliver  func(query string, suggestions []Suggestion)

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// NewSuggester creates a suggester that calls deliver with the results
// for each settled query. deliver is called from a timer goroutine.
func NewSuggester(indexer Indexer, limit, minChars int, debounce time.Duration, deliver func(string, []Suggestion)) *Suggester {
	return &Suggester{
		indexer:  indexer,
		limit:    limit,
		minChars: minChars,
		debounce: debounce,
		deliver:  deliver,
	}
}

// Update registers a keystroke. Queries shorter than the minimum length
// clear the suggestion list immediately without an upstream call.
func (s *Suggester) Update(query string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len([]rune(query)) < s.minChars {
		s.mu.Unlock()
		s.deliver(query, nil)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.lookup(seq, query)
	})
	s.mu.Unlock()
}

// Stop cancels any pending lookup.
func (s *Suggester) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Suggester) lookup(seq uint64, query string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	matches, err := s.indexer.SearchContracts(context.Background(), query, s.limit)
	if err != nil {
		suggestionsTotal.WithLabelValues(outcomeError).Inc()
		return
	}

	s.mu.Lock()
	current := seq == s.seq
	s.mu.Unlock()
	if !current {
		suggestionsTotal.WithLabelValues(outcomeStale).Inc()
		return
	}

	suggestionsTotal.WithLabelValues(outcomeOK).Inc()
	s.deliver(query, toSuggestions(matches, s.limit))
}

func toSuggestions(matches []upstream.ContractMatch, limit int) []Suggestion {
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, Suggestion{
			Name:     m.Name,
			Address:  m.Address,
			ImageURL: m.OpenSeaMetadata.ImageURL,
		})
	}
	return out
}
