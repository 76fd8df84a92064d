package provider

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pitchsight/datapipe/internal/platform/cache"
	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/source"
)

const oddsTTL = 5 * time.Minute

// OddsSource lists the sport's current events from the bookmaker
// aggregator. The aggregator keys events by its own id, so the provider
// joins quotes to canonical matches by team names rather than passing any
// id upstream.
type OddsSource interface {
	ListEvents(ctx context.Context) ([]source.OddsEvent, error)
}

// OddsProvider serves bookmaker quotes with a short cache window. Odds are
// supplementary data: any upstream failure degrades to an empty slice so a
// missing price never blocks a prediction or a sync run.
type OddsProvider struct {
	source OddsSource
	cache  cache.Cache
	logger *logging.Logger
}

func NewOddsProvider(src OddsSource, store cache.Cache, logger *logging.Logger) *OddsProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OddsProvider{
		source: src,
		cache:  store,
		logger: logger,
	}
}

func oddsKey(matchID string) string {
	return "odds:" + matchID
}

// GetOdds returns bookmaker quotes for one canonical match, selected from
// the aggregator's event list by home and away team names. An event absent
// from the list yields an empty slice; so does any upstream failure.
func (p *OddsProvider) GetOdds(ctx context.Context, matchID, homeTeam, awayTeam string) ([]source.OddsQuote, error) {
	key := oddsKey(matchID)
	if raw, ok := p.cache.Get(ctx, key); ok {
		var cached []source.OddsQuote
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		p.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	}

	events, err := p.source.ListEvents(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "odds unavailable", "match_id", matchID, "error", err.Error())
		return []source.OddsQuote{}, nil
	}

	quotes := selectEventQuotes(events, homeTeam, awayTeam)
	if encoded, err := sonic.Marshal(quotes); err == nil {
		p.cache.Set(ctx, key, encoded, oddsTTL)
	}
	return quotes, nil
}

func selectEventQuotes(events []source.OddsEvent, homeTeam, awayTeam string) []source.OddsQuote {
	for _, event := range events {
		if sameTeam(event.HomeTeam, homeTeam) && sameTeam(event.AwayTeam, awayTeam) {
			if event.Quotes == nil {
				return []source.OddsQuote{}
			}
			return event.Quotes
		}
	}
	return []source.OddsQuote{}
}

func sameTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
