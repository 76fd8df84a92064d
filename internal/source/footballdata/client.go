// Package footballdata is the secondary fixtures upstream and the league
// table source (football-data.org v4). Its schema differs from the primary
// source, so fixture results coming from here are degraded-mode responses.
package footballdata

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

const SourceName = "football-data"

const defaultBaseURL = "https://api.football-data.org/v4"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	transport *httpx.Client
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		transport: httpx.NewClient(httpx.ClientConfig{
			HTTPClient: cfg.HTTPClient,
			BaseURL:    baseURL,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Headers: map[string]string{
				"X-Auth-Token": strings.TrimSpace(cfg.APIKey),
			},
			Logger:         cfg.Logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
	}
}

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64      `json:"id"`
	UTCDate     time.Time  `json:"utcDate"`
	Status      string     `json:"status"`
	HomeTeam    tableTeam  `json:"homeTeam"`
	AwayTeam    tableTeam  `json:"awayTeam"`
	Competition struct {
		ID int `json:"id"`
	} `json:"competition"`
	Score struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

type tableTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListFixtures returns the competition's matches. The competition code is
// football-data's own (e.g. "PL"), not the primary source's league id.
func (c *Client) ListFixtures(ctx context.Context, competition string) ([]source.Fixture, error) {
	competition = strings.TrimSpace(competition)
	if competition == "" {
		return nil, fmt.Errorf("competition code is required")
	}

	var envelope matchesEnvelope
	path := "/competitions/" + competition + "/matches"
	if err := c.transport.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches competition=%s: %w", competition, err)
	}

	out := make([]source.Fixture, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		if item.ID <= 0 {
			continue
		}
		out = append(out, source.Fixture{
			Source:           SourceName,
			SourceMatchID:    strconv.FormatInt(item.ID, 10),
			LeagueID:         item.Competition.ID,
			HomeTeamSourceID: strconv.FormatInt(item.HomeTeam.ID, 10),
			HomeTeamName:     strings.TrimSpace(item.HomeTeam.Name),
			AwayTeamSourceID: strconv.FormatInt(item.AwayTeam.ID, 10),
			AwayTeamName:     strings.TrimSpace(item.AwayTeam.Name),
			KickoffAt:        item.UTCDate.UTC(),
			Status:           item.Status,
			HomeScore:        item.Score.FullTime.Home,
			AwayScore:        item.Score.FullTime.Away,
		})
	}
	return out, nil
}

type standingsEnvelope struct {
	Standings []struct {
		Type  string `json:"type"`
		Table []struct {
			Position       int       `json:"position"`
			Team           tableTeam `json:"team"`
			PlayedGames    int       `json:"playedGames"`
			Won            int       `json:"won"`
			Draw           int       `json:"draw"`
			Lost           int       `json:"lost"`
			GoalDifference int       `json:"goalDifference"`
			Points         int       `json:"points"`
		} `json:"table"`
	} `json:"standings"`
}

// GetTable returns the competition's overall league table.
func (c *Client) GetTable(ctx context.Context, competition string) ([]source.TableRow, error) {
	competition = strings.TrimSpace(competition)
	if competition == "" {
		return nil, fmt.Errorf("competition code is required")
	}

	var envelope standingsEnvelope
	path := "/competitions/" + competition + "/standings"
	if err := c.transport.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings competition=%s: %w", competition, err)
	}

	for _, block := range envelope.Standings {
		if block.Type != "" && !strings.EqualFold(block.Type, "TOTAL") {
			continue
		}
		out := make([]source.TableRow, 0, len(block.Table))
		for _, row := range block.Table {
			out = append(out, source.TableRow{
				Position:     row.Position,
				TeamSourceID: strconv.FormatInt(row.Team.ID, 10),
				TeamName:     strings.TrimSpace(row.Team.Name),
				Played:       row.PlayedGames,
				Won:          row.Won,
				Draw:         row.Draw,
				Lost:         row.Lost,
				GoalDiff:     row.GoalDifference,
				Points:       row.Points,
			})
		}
		return out, nil
	}

	return nil, nil
}
