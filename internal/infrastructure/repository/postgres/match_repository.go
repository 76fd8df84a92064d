package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/pitchsight/datapipe/internal/domain/fixture"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// InsertIgnoreExisting stores new matches in source-list order and leaves
// already-known rows untouched. A conflicting internal_match_id is a
// silent no-op, never an update.
func (r *MatchRepository) InsertIgnoreExisting(ctx context.Context, matches []fixture.Match) error {
	if len(matches) == 0 {
		return nil
	}

	const query = `INSERT INTO matches (
		internal_match_id, league_id,
		home_team_id, home_team, away_team_id, away_team,
		kickoff_at, status, home_score, away_score,
		xg, injuries, weather
	) VALUES (
		:internal_match_id, :league_id,
		:home_team_id, :home_team, :away_team_id, :away_team,
		:kickoff_at, :status, :home_score, :away_score,
		:xg, :injuries, :weather
	) ON CONFLICT (internal_match_id) DO NOTHING`

	for _, match := range matches {
		if match.ID == "" {
			continue
		}
		model, err := matchToModel(match)
		if err != nil {
			return fmt.Errorf("encode match %s: %w", match.ID, err)
		}
		if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
			return fmt.Errorf("insert match %s: %w", match.ID, err)
		}
	}

	return nil
}

func (r *MatchRepository) ListScheduled(ctx context.Context, limit int) ([]fixture.Match, error) {
	const query = `SELECT internal_match_id, league_id,
		home_team_id, home_team, away_team_id, away_team,
		kickoff_at, status, home_score, away_score, xg, injuries, weather
	FROM matches
	WHERE status = $1
	ORDER BY kickoff_at, id
	LIMIT $2`

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, fixture.StatusScheduled, limit); err != nil {
		return nil, fmt.Errorf("select scheduled matches: %w", err)
	}

	out := make([]fixture.Match, 0, len(rows))
	for _, row := range rows {
		match, err := modelToMatch(row)
		if err != nil {
			return nil, fmt.Errorf("decode match %s: %w", row.InternalMatchID, err)
		}
		out = append(out, match)
	}

	return out, nil
}

func matchToModel(match fixture.Match) (matchTableModel, error) {
	model := matchTableModel{
		InternalMatchID: match.ID,
		LeagueID:        match.LeagueID,
		HomeTeamID:      match.HomeTeamID,
		HomeTeam:        match.HomeTeam,
		AwayTeamID:      match.AwayTeamID,
		AwayTeam:        match.AwayTeam,
		KickoffAt:       match.KickoffAt,
		Status:          match.Status,
		HomeScore:       nullIntFromPtr(match.HomeScore),
		AwayScore:       nullIntFromPtr(match.AwayScore),
	}
	if match.XG != nil {
		model.XG = sql.NullFloat64{Float64: *match.XG, Valid: true}
	}
	if len(match.Injuries) > 0 {
		encoded, err := sonic.Marshal(match.Injuries)
		if err != nil {
			return matchTableModel{}, err
		}
		model.Injuries = encoded
	}
	if match.Weather != nil {
		encoded, err := sonic.Marshal(match.Weather)
		if err != nil {
			return matchTableModel{}, err
		}
		model.Weather = encoded
	}
	return model, nil
}

func modelToMatch(row matchTableModel) (fixture.Match, error) {
	match := fixture.Match{
		ID:         row.InternalMatchID,
		LeagueID:   row.LeagueID,
		HomeTeamID: row.HomeTeamID,
		HomeTeam:   row.HomeTeam,
		AwayTeamID: row.AwayTeamID,
		AwayTeam:   row.AwayTeam,
		KickoffAt:  row.KickoffAt,
		Status:     row.Status,
		HomeScore:  ptrFromNullInt(row.HomeScore),
		AwayScore:  ptrFromNullInt(row.AwayScore),
	}
	if row.XG.Valid {
		xg := row.XG.Float64
		match.XG = &xg
	}
	if len(row.Injuries) > 0 {
		if err := sonic.Unmarshal(row.Injuries, &match.Injuries); err != nil {
			return fixture.Match{}, err
		}
	}
	if len(row.Weather) > 0 {
		var weather fixture.Weather
		if err := sonic.Unmarshal(row.Weather, &weather); err != nil {
			return fixture.Match{}, err
		}
		match.Weather = &weather
	}
	return match, nil
}

func nullIntFromPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func ptrFromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
