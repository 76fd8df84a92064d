package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchsight/datapipe/internal/domain/odds"
)

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

// UpsertQuotes stores the latest quote per bookmaker for a match. Odds
// refresh every sync window, so an existing row is overwritten with the
// newer prices.
func (r *OddsRepository) UpsertQuotes(ctx context.Context, matchID string, quotes []odds.Quote) error {
	if matchID == "" || len(quotes) == 0 {
		return nil
	}

	const query = `INSERT INTO match_odds (
		internal_match_id, bookmaker, home_price, draw_price, away_price, fetched_at
	) VALUES (
		:internal_match_id, :bookmaker, :home_price, :draw_price, :away_price, :fetched_at
	) ON CONFLICT (internal_match_id, bookmaker) DO UPDATE SET
		home_price = EXCLUDED.home_price,
		draw_price = EXCLUDED.draw_price,
		away_price = EXCLUDED.away_price,
		fetched_at = EXCLUDED.fetched_at`

	for _, quote := range quotes {
		model := matchOddsTableModel{
			InternalMatchID: matchID,
			Bookmaker:       quote.Bookmaker,
			HomePrice:       quote.Home,
			DrawPrice:       quote.Draw,
			AwayPrice:       quote.Away,
			FetchedAt:       quote.FetchedAt,
		}
		if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
			return fmt.Errorf("upsert odds %s/%s: %w", matchID, quote.Bookmaker, err)
		}
	}

	return nil
}
