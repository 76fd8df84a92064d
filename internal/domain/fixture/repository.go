package fixture

import "context"

// Repository persists canonical matches.
//
// InsertIgnoreExisting must be a no-op for rows whose internal match id is
// already present: the fixture-sync job only ever inserts newly-seen
// fixtures and never rewrites existing ones.
type Repository interface {
	InsertIgnoreExisting(ctx context.Context, matches []Match) error
	ListScheduled(ctx context.Context, limit int) ([]Match, error)
}
