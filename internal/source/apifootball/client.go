// Package apifootball is the primary fixtures upstream (API-Football v3).
package apifootball

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/platform/resilience"
	"github.com/pitchsight/datapipe/internal/source"
	"github.com/pitchsight/datapipe/internal/source/httpx"
)

const SourceName = "api-football"

const defaultBaseURL = "https://v3.football.api-sports.io"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Season         int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	transport *httpx.Client
	season    int
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	season := cfg.Season
	if season <= 0 {
		season = time.Now().UTC().Year()
	}

	return &Client{
		transport: httpx.NewClient(httpx.ClientConfig{
			HTTPClient: cfg.HTTPClient,
			BaseURL:    baseURL,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Headers: map[string]string{
				"x-apisports-key": strings.TrimSpace(cfg.APIKey),
			},
			Logger:         cfg.Logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
		season: season,
	}
}

type fixturesEnvelope struct {
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID        int64 `json:"id"`
		Timestamp int64 `json:"timestamp"`
		Status    struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
		Venue struct {
			City string `json:"city"`
		} `json:"venue"`
	} `json:"fixture"`
	League struct {
		ID int `json:"id"`
	} `json:"league"`
	Teams struct {
		Home participant `json:"home"`
		Away participant `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListFixtures returns the season's fixtures for one league.
func (c *Client) ListFixtures(ctx context.Context, leagueID int) ([]source.Fixture, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	var envelope fixturesEnvelope
	query := map[string]string{
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(c.season),
	}
	if err := c.transport.GetJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d: %w", leagueID, err)
	}

	return mapFixtures(envelope.Response), nil
}

// GetFixture returns one fixture by its upstream id, or nil when the
// upstream does not know the id.
func (c *Client) GetFixture(ctx context.Context, fixtureID string) (*source.Fixture, error) {
	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return nil, fmt.Errorf("fixture id is required")
	}

	var envelope fixturesEnvelope
	if err := c.transport.GetJSON(ctx, "/fixtures", map[string]string{"id": fixtureID}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixture id=%s: %w", fixtureID, err)
	}

	rows := mapFixtures(envelope.Response)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListLiveMatches returns every match currently in play.
func (c *Client) ListLiveMatches(ctx context.Context) ([]source.Fixture, error) {
	var envelope fixturesEnvelope
	if err := c.transport.GetJSON(ctx, "/fixtures", map[string]string{"live": "all"}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch live matches: %w", err)
	}

	return mapFixtures(envelope.Response), nil
}

func mapFixtures(items []fixtureItem) []source.Fixture {
	out := make([]source.Fixture, 0, len(items))
	for _, item := range items {
		if item.Fixture.ID <= 0 {
			continue
		}
		row := source.Fixture{
			Source:           SourceName,
			SourceMatchID:    strconv.FormatInt(item.Fixture.ID, 10),
			LeagueID:         item.League.ID,
			HomeTeamSourceID: strconv.FormatInt(item.Teams.Home.ID, 10),
			HomeTeamName:     strings.TrimSpace(item.Teams.Home.Name),
			AwayTeamSourceID: strconv.FormatInt(item.Teams.Away.ID, 10),
			AwayTeamName:     strings.TrimSpace(item.Teams.Away.Name),
			Status:           item.Fixture.Status.Short,
			HomeScore:        item.Goals.Home,
			AwayScore:        item.Goals.Away,
			Elapsed:          item.Fixture.Status.Elapsed,
			VenueCity:        strings.TrimSpace(item.Fixture.Venue.City),
		}
		if item.Fixture.Timestamp > 0 {
			row.KickoffAt = time.Unix(item.Fixture.Timestamp, 0).UTC()
		}
		out = append(out, row)
	}
	return out
}
