// Package provider sits between the orchestrator and the source clients.
// Each provider owns one read path: check the cache, call the upstream on a
// miss, write the result back with the path's TTL. The cache is best-effort
// throughout; only upstream outcomes decide success or failure.
package provider

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/pitchsight/datapipe/internal/platform/cache"
	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/source"
)

const (
	fixturesTTL     = time.Hour
	matchDetailsTTL = 30 * time.Minute
)

// ErrNoFixtureSource means both the primary and the secondary fixtures
// upstream failed for one league. Fixtures are authoritative data, so the
// caller gets an explicit error instead of a silent empty slice.
var ErrNoFixtureSource = crerr.New("no fixture source available")

// PrimaryFixtureSource is the full-fidelity upstream.
type PrimaryFixtureSource interface {
	ListFixtures(ctx context.Context, leagueID int) ([]source.Fixture, error)
	GetFixture(ctx context.Context, fixtureID string) (*source.Fixture, error)
	ListLiveMatches(ctx context.Context) ([]source.Fixture, error)
}

// SecondaryFixtureSource is the degraded-mode fallback. Its results are
// served but never cached, so the primary is retried on the next request.
type SecondaryFixtureSource interface {
	ListFixtures(ctx context.Context, competition string) ([]source.Fixture, error)
}

type FixtureProvider struct {
	primary   PrimaryFixtureSource
	secondary SecondaryFixtureSource
	// competitions maps a primary-source league id to the secondary
	// source's competition code. Leagues without an entry have no fallback.
	competitions map[int]string
	cache        cache.Cache
	logger       *logging.Logger
}

func NewFixtureProvider(primary PrimaryFixtureSource, secondary SecondaryFixtureSource, competitions map[int]string, store cache.Cache, logger *logging.Logger) *FixtureProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FixtureProvider{
		primary:      primary,
		secondary:    secondary,
		competitions: competitions,
		cache:        store,
		logger:       logger,
	}
}

func fixturesKey(leagueID int) string {
	return "fixtures:league:" + strconv.Itoa(leagueID)
}

func matchKey(matchID string) string {
	return "match:" + matchID
}

// GetFixtures returns the league's fixtures, serving from cache when fresh.
// On a miss the primary source is called and its result cached for an hour;
// if the primary fails, the secondary serves a degraded response that is
// not cached. Both failing yields ErrNoFixtureSource.
func (p *FixtureProvider) GetFixtures(ctx context.Context, leagueID int) ([]source.Fixture, error) {
	key := fixturesKey(leagueID)
	if raw, ok := p.cache.Get(ctx, key); ok {
		var cached []source.Fixture
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		p.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	}

	fixtures, primaryErr := p.primary.ListFixtures(ctx, leagueID)
	if primaryErr == nil {
		p.cacheSet(ctx, key, fixtures, fixturesTTL)
		return fixtures, nil
	}
	p.logger.WarnContext(ctx, "primary fixture source failed, trying fallback",
		"league_id", leagueID,
		"error", primaryErr.Error(),
	)

	competition, ok := p.competitions[leagueID]
	if !ok || p.secondary == nil {
		return nil, crerr.Wrapf(ErrNoFixtureSource, "league %d: primary failed and no fallback mapping", leagueID)
	}

	fixtures, secondaryErr := p.secondary.ListFixtures(ctx, competition)
	if secondaryErr != nil {
		p.logger.ErrorContext(ctx, "all fixture sources exhausted",
			"league_id", leagueID,
			"primary_error", primaryErr.Error(),
			"secondary_error", secondaryErr.Error(),
		)
		return nil, crerr.Wrapf(ErrNoFixtureSource, "league %d", leagueID)
	}

	// Degraded response: serve it, never cache it.
	return fixtures, nil
}

// GetLiveMatches returns every match currently in play. Live data is
// supplementary, so an upstream failure degrades to an empty slice.
func (p *FixtureProvider) GetLiveMatches(ctx context.Context) ([]source.Fixture, error) {
	live, err := p.primary.ListLiveMatches(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "live matches unavailable", "error", err.Error())
		return []source.Fixture{}, nil
	}
	return live, nil
}

// GetMatchDetails returns one match by its upstream id, cached for 30
// minutes. Details back the authoritative match view, so upstream errors
// propagate instead of degrading.
func (p *FixtureProvider) GetMatchDetails(ctx context.Context, matchID string) (*source.Fixture, error) {
	key := matchKey(matchID)
	if raw, ok := p.cache.Get(ctx, key); ok {
		var cached source.Fixture
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		p.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	}

	match, err := p.primary.GetFixture(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match != nil {
		p.cacheSet(ctx, key, match, matchDetailsTTL)
	}
	return match, nil
}

func (p *FixtureProvider) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	encoded, err := sonic.Marshal(value)
	if err != nil {
		p.logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err.Error())
		return
	}
	p.cache.Set(ctx, key, encoded, ttl)
}
