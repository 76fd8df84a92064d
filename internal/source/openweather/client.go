// Package openweather fetches current venue conditions, used to enrich
// upcoming fixtures. Weather is supplementary data; callers fail soft.
package openweather

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

const SourceName = "openweather"

const defaultBaseURL = "https://api.openweathermap.org"

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
			Query: map[string]string{
				"appid": strings.TrimSpace(cfg.APIKey),
				"units": "metric",
			},
			Logger:         cfg.Logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
	}
}

type weatherEnvelope struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// CurrentByCity returns current conditions for a city.
func (c *Client) CurrentByCity(ctx context.Context, city string) (source.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return source.Weather{}, fmt.Errorf("city is required")
	}

	var envelope weatherEnvelope
	query := map[string]string{"q": city}
	if err := c.transport.GetJSON(ctx, "/data/2.5/weather", query, &envelope); err != nil {
		return source.Weather{}, fmt.Errorf("fetch weather city=%s: %w", city, err)
	}

	out := source.Weather{
		TempC:   envelope.Main.Temp,
		WindKph: envelope.Wind.Speed * 3.6, // m/s on the wire
	}
	if len(envelope.Weather) > 0 {
		out.Condition = envelope.Weather[0].Main
	}
	return out, nil
}
