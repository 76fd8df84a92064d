package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentByCity_MapsWireShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		require.Equal(t, "London", r.URL.Query().Get("q"))
		require.Equal(t, "secret", r.URL.Query().Get("appid"))
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{
			"weather": [{"main": "Rain"}],
			"main": {"temp": 12.5},
			"wind": {"speed": 6.0}
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "secret"})

	conditions, err := client.CurrentByCity(context.Background(), "London")
	require.NoError(t, err)
	require.Equal(t, "Rain", conditions.Condition)
	require.InDelta(t, 12.5, conditions.TempC, 0.001)
	require.InDelta(t, 21.6, conditions.WindKph, 0.001)
}

func TestCurrentByCity_RequiresCity(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0", APIKey: "secret"})

	_, err := client.CurrentByCity(context.Background(), " ")
	require.Error(t, err)
}

func TestCurrentByCity_EmptyConditionsList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"weather": [], "main": {"temp": 3.0}, "wind": {"speed": 0}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "secret"})

	conditions, err := client.CurrentByCity(context.Background(), "Oslo")
	require.NoError(t, err)
	require.Empty(t, conditions.Condition)
	require.InDelta(t, 3.0, conditions.TempC, 0.001)
}
