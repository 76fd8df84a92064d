package odds

import "context"

// Repository stores the latest quotes per match. Odds are supplementary
// data, so refreshes overwrite in place (unlike the matches table).
type Repository interface {
	UpsertQuotes(ctx context.Context, matchID string, quotes []Quote) error
}
