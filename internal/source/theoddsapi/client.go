// Package theoddsapi fetches head-to-head quotes from The Odds API v4.
package theoddsapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/platform/resilience"
	"github.com/pitchsight/datapipe/internal/source"
	"github.com/pitchsight/datapipe/internal/source/httpx"
)

const SourceName = "the-odds-api"

const (
	defaultBaseURL  = "https://api.the-odds-api.com/v4"
	defaultSportKey = "soccer_epl"
	defaultRegions  = "uk"
	marketH2H       = "h2h"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	SportKey       string
	Regions        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	transport *httpx.Client
	sportKey  string
	regions   string
	now       func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sportKey := strings.TrimSpace(cfg.SportKey)
	if sportKey == "" {
		sportKey = defaultSportKey
	}
	regions := strings.TrimSpace(cfg.Regions)
	if regions == "" {
		regions = defaultRegions
	}

	return &Client{
		transport: httpx.NewClient(httpx.ClientConfig{
			HTTPClient: cfg.HTTPClient,
			BaseURL:    baseURL,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Query: map[string]string{
				"apiKey": strings.TrimSpace(cfg.APIKey),
			},
			Logger:         cfg.Logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
		sportKey: sportKey,
		regions:  regions,
		now:      time.Now,
	}
}

type oddsEvent struct {
	ID         string `json:"id"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// ListEvents returns the sport's current events with each bookmaker's h2h
// quote. The whole sport is fetched in one call: the upstream's event ids
// are unrelated to the canonical id space, so callers join quotes to
// matches by team names instead of filtering by id. The Odds API returns
// decimal prices; the format label still travels with each quote so
// normalization stays uniform across odds providers.
func (c *Client) ListEvents(ctx context.Context) ([]source.OddsEvent, error) {
	var events []oddsEvent
	path := "/sports/" + c.sportKey + "/odds"
	query := map[string]string{
		"regions": c.regions,
		"markets": marketH2H,
	}
	if err := c.transport.GetJSON(ctx, path, query, &events); err != nil {
		return nil, fmt.Errorf("fetch odds events sport=%s: %w", c.sportKey, err)
	}

	fetchedAt := c.now().UTC()
	out := make([]source.OddsEvent, 0, len(events))
	for _, event := range events {
		mapped := source.OddsEvent{
			SourceEventID: event.ID,
			HomeTeam:      event.HomeTeam,
			AwayTeam:      event.AwayTeam,
		}
		for _, bookmaker := range event.Bookmakers {
			for _, market := range bookmaker.Markets {
				if market.Key != marketH2H {
					continue
				}
				quote := source.OddsQuote{
					Bookmaker: bookmaker.Key,
					Format:    source.PriceFormatDecimal,
					FetchedAt: fetchedAt,
				}
				for _, outcome := range market.Outcomes {
					switch {
					case strings.EqualFold(outcome.Name, event.HomeTeam):
						quote.Home = outcome.Price
					case strings.EqualFold(outcome.Name, event.AwayTeam):
						quote.Away = outcome.Price
					case strings.EqualFold(outcome.Name, "Draw"):
						quote.Draw = outcome.Price
					}
				}
				if quote.Home > 0 && quote.Draw > 0 && quote.Away > 0 {
					mapped.Quotes = append(mapped.Quotes, quote)
				}
			}
		}
		out = append(out, mapped)
	}
	return out, nil
}
