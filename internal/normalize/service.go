// Package normalize maps source-specific identifiers into the internal
// identifier space and merges same-entity records from multiple sources
// into one canonical record.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/pitchsight/datapipe/internal/domain/fixture"
	"github.com/pitchsight/datapipe/internal/domain/identity"
	"github.com/pitchsight/datapipe/internal/domain/odds"
	"github.com/pitchsight/datapipe/internal/domain/team"
	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/source"
)

// ErrMappingConflict signals that two different external identifiers
// resolved to the same internal id. By construction this cannot happen;
// if observed it is a data-integrity fault to surface, never to paper over.
var ErrMappingConflict = crerr.New("identity mapping conflict")

type Service struct {
	mappings identity.Repository
	logger   *logging.Logger
}

func NewService(mappings identity.Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		mappings: mappings,
		logger:   logger,
	}
}

// NormalizeID resolves an upstream identifier to the internal id for its
// entity kind. The mapping is deterministic and minted at most once per
// (source, kind, sourceID): the first writer records it, every later call
// returns the stored value.
func (s *Service) NormalizeID(ctx context.Context, sourceName string, kind identity.Kind, sourceID string) (string, error) {
	sourceName = strings.TrimSpace(sourceName)
	sourceID = strings.TrimSpace(sourceID)
	if sourceName == "" || sourceID == "" {
		return "", fmt.Errorf("source name and source id are required")
	}

	prefix, ok := prefixForKind(kind)
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}

	stored, inserted, err := s.mappings.PutIfAbsent(ctx, identity.Mapping{
		Source:     sourceName,
		Kind:       kind,
		SourceID:   sourceID,
		InternalID: prefix + "_" + sourceID,
	})
	if err != nil {
		return "", fmt.Errorf("record identity mapping %s/%s/%s: %w", sourceName, kind, sourceID, err)
	}

	if inserted {
		if err := s.checkConflict(ctx, stored); err != nil {
			return "", err
		}
	}

	return stored.InternalID, nil
}

// checkConflict fails when any other external identifier already holds the
// freshly minted internal id. Under the prefix scheme that can only be a
// different upstream reusing the same raw id for an unrelated entity.
func (s *Service) checkConflict(ctx context.Context, mapping identity.Mapping) error {
	rows, err := s.mappings.ListByInternalID(ctx, mapping.Kind, mapping.InternalID)
	if err != nil {
		return fmt.Errorf("verify identity mapping %s: %w", mapping.InternalID, err)
	}

	for _, row := range rows {
		if row.Source == mapping.Source && row.SourceID == mapping.SourceID {
			continue
		}
		s.logger.ErrorContext(ctx, "identity mapping conflict detected",
			"internal_id", mapping.InternalID,
			"source", mapping.Source,
			"source_id", mapping.SourceID,
			"conflicting_source", row.Source,
			"conflicting_source_id", row.SourceID,
		)
		return fmt.Errorf("%w: internal id %s already minted for %s/%s", ErrMappingConflict, mapping.InternalID, row.Source, row.SourceID)
	}

	return nil
}

// NormalizeTeam resolves a source team reference into the canonical team
// record, minting the internal id if the team is new.
func (s *Service) NormalizeTeam(ctx context.Context, sourceName, sourceID, name string) (team.Team, error) {
	id, err := s.NormalizeID(ctx, sourceName, identity.KindTeam, sourceID)
	if err != nil {
		return team.Team{}, err
	}
	return team.Team{
		ID:          id,
		Name:        strings.TrimSpace(name),
		ExternalIDs: map[string]string{sourceName: sourceID},
	}, nil
}

func prefixForKind(kind identity.Kind) (string, bool) {
	switch kind {
	case identity.KindTeam:
		return "PSP_TEAM", true
	case identity.KindPlayer:
		return "PSP_PLAYER", true
	case identity.KindMatch:
		return "PSP_MATCH", true
	default:
		return "", false
	}
}

// PartialFixture is one source's contribution to a canonical match record.
// Zero values mean the source did not report the field.
type PartialFixture struct {
	MatchID   string
	LeagueID  int
	HomeTeam  string
	AwayTeam  string
	KickoffAt time.Time
	Status    string
	HomeScore *int
	AwayScore *int
	XG        *float64
	Injuries  []string
	Weather   *fixture.Weather
	Odds      []odds.Quote
}

// MergeFixtures combines partial records for the same entity into one
// canonical record. The caller supplies records in priority order (primary
// fixture source first, then xG, injuries, weather, odds); a field set by
// an earlier record is never overwritten by a later one.
func MergeFixtures(records []PartialFixture) PartialFixture {
	var merged PartialFixture
	for _, record := range records {
		if merged.MatchID == "" {
			merged.MatchID = record.MatchID
		}
		if merged.LeagueID == 0 {
			merged.LeagueID = record.LeagueID
		}
		if merged.HomeTeam == "" {
			merged.HomeTeam = record.HomeTeam
		}
		if merged.AwayTeam == "" {
			merged.AwayTeam = record.AwayTeam
		}
		if merged.KickoffAt.IsZero() {
			merged.KickoffAt = record.KickoffAt
		}
		if merged.Status == "" {
			merged.Status = record.Status
		}
		if merged.HomeScore == nil {
			merged.HomeScore = record.HomeScore
		}
		if merged.AwayScore == nil {
			merged.AwayScore = record.AwayScore
		}
		if merged.XG == nil {
			merged.XG = record.XG
		}
		if merged.Injuries == nil {
			merged.Injuries = record.Injuries
		}
		if merged.Weather == nil {
			merged.Weather = record.Weather
		}
		if merged.Odds == nil {
			merged.Odds = record.Odds
		}
	}
	return merged
}

// NormalizeOdds converts a provider's native price representation into the
// canonical decimal form. Unknown providers pass through unchanged with a
// warning: odds are supplementary data, so leniency beats rejection here.
func (s *Service) NormalizeOdds(quote source.OddsQuote, provider string) source.OddsQuote {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "betfair":
		if quote.Format == source.PriceFormatFractional {
			quote.Home = 1 + quote.Home
			quote.Draw = 1 + quote.Draw
			quote.Away = 1 + quote.Away
			quote.Format = source.PriceFormatDecimal
		}
	case "pinnacle", "the-odds-api", "williamhill":
		// Already decimal.
	default:
		s.logger.Warn("unknown odds provider", "provider", provider)
	}
	return quote
}
