package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID              int64           `db:"id"`
	InternalMatchID string          `db:"internal_match_id"`
	LeagueID        int             `db:"league_id"`
	HomeTeamID      string          `db:"home_team_id"`
	HomeTeam        string          `db:"home_team"`
	AwayTeamID      string          `db:"away_team_id"`
	AwayTeam        string          `db:"away_team"`
	KickoffAt       time.Time       `db:"kickoff_at"`
	Status          string          `db:"status"`
	HomeScore       sql.NullInt64   `db:"home_score"`
	AwayScore       sql.NullInt64   `db:"away_score"`
	XG              sql.NullFloat64 `db:"xg"`
	Injuries        []byte          `db:"injuries"`
	Weather         []byte          `db:"weather"`
	CreatedAt       time.Time       `db:"created_at"`
}

type matchOddsTableModel struct {
	InternalMatchID string    `db:"internal_match_id"`
	Bookmaker       string    `db:"bookmaker"`
	HomePrice       float64   `db:"home_price"`
	DrawPrice       float64   `db:"draw_price"`
	AwayPrice       float64   `db:"away_price"`
	FetchedAt       time.Time `db:"fetched_at"`
}

type identityMappingTableModel struct {
	Source     string    `db:"source"`
	Kind       string    `db:"kind"`
	SourceID   string    `db:"source_id"`
	InternalID string    `db:"internal_id"`
	CreatedAt  time.Time `db:"created_at"`
}
