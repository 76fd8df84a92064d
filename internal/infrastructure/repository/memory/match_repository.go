package memory

import (
	"context"
	"sync"

	"github.com/pitchsight/datapipe/internal/domain/fixture"
	"github.com/pitchsight/datapipe/internal/domain/odds"
)

// MatchRepository keeps canonical matches in insertion order with the same
// no-update-on-conflict semantics as the Postgres table.
type MatchRepository struct {
	mu     sync.Mutex
	order  []string
	byID   map[string]fixture.Match
	quotes map[string][]odds.Quote
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		byID:   make(map[string]fixture.Match),
		quotes: make(map[string][]odds.Quote),
	}
}

func (r *MatchRepository) InsertIgnoreExisting(_ context.Context, matches []fixture.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, match := range matches {
		if match.ID == "" {
			continue
		}
		if _, exists := r.byID[match.ID]; exists {
			continue
		}
		r.byID[match.ID] = match
		r.order = append(r.order, match.ID)
	}
	return nil
}

func (r *MatchRepository) ListScheduled(_ context.Context, limit int) ([]fixture.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fixture.Match, 0, limit)
	for _, id := range r.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		match := r.byID[id]
		if match.Status == fixture.StatusScheduled {
			out = append(out, match)
		}
	}
	return out, nil
}

func (r *MatchRepository) UpsertQuotes(_ context.Context, matchID string, quotes []odds.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make([]odds.Quote, len(quotes))
	copy(copied, quotes)
	r.quotes[matchID] = copied
	return nil
}

// All returns every stored match in insertion order. Test helper.
func (r *MatchRepository) All() []fixture.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fixture.Match, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Quotes returns the stored quotes for a match. Test helper.
func (r *MatchRepository) Quotes(matchID string) []odds.Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quotes[matchID]
}
