// Package app wires configuration, storage, source clients, providers, and
// the orchestrator into a runnable pipeline. Construction is explicit so
// every dependency is visible at the call site.
package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/pitchsight/datapipe/internal/config"
	"github.com/pitchsight/datapipe/internal/infrastructure/repository/postgres"
	"github.com/pitchsight/datapipe/internal/normalize"
	"github.com/pitchsight/datapipe/internal/pipeline"
	"github.com/pitchsight/datapipe/internal/platform/cache"
	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/platform/resilience"
	"github.com/pitchsight/datapipe/internal/provider"
	"github.com/pitchsight/datapipe/internal/source/apifootball"
	"github.com/pitchsight/datapipe/internal/source/footballdata"
	"github.com/pitchsight/datapipe/internal/source/openweather"
	"github.com/pitchsight/datapipe/internal/source/theoddsapi"
	"github.com/pitchsight/datapipe/internal/validate"
)

// App owns the wired pipeline and the resources it must release.
type App struct {
	Orchestrator *pipeline.Orchestrator

	db    *sqlx.DB
	redis *redis.Client
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	db, err := sqlx.Connect("postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var store cache.Cache
	var redisClient *redis.Client
	if cfg.CacheEnabled && cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = cache.NewRedis(redisClient, logger)
	} else {
		store = cache.NewMemory()
		logger.Info("no redis configured, using in-process cache")
	}

	breaker := resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: cfg.CircuitFailureCount,
		OpenTimeout:      cfg.CircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
	}

	primary := apifootball.NewClient(apifootball.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.APIFootballTimeout},
		BaseURL:        cfg.APIFootballBaseURL,
		APIKey:         cfg.APIFootballKey,
		Season:         cfg.APIFootballSeason,
		Timeout:        cfg.APIFootballTimeout,
		MaxRetries:     cfg.APIFootballMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	secondary := footballdata.NewClient(footballdata.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.FootballDataTimeout},
		BaseURL:        cfg.FootballDataBaseURL,
		APIKey:         cfg.FootballDataKey,
		Timeout:        cfg.FootballDataTimeout,
		MaxRetries:     cfg.FootballDataMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	oddsClient := theoddsapi.NewClient(theoddsapi.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.OddsAPITimeout},
		BaseURL:        cfg.OddsAPIBaseURL,
		APIKey:         cfg.OddsAPIKey,
		SportKey:       cfg.OddsAPISportKey,
		Regions:        cfg.OddsAPIRegions,
		Timeout:        cfg.OddsAPITimeout,
		MaxRetries:     cfg.OddsAPIMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})

	var weather pipeline.WeatherSource
	if cfg.WeatherEnabled {
		weather = openweather.NewClient(openweather.ClientConfig{
			HTTPClient:     &http.Client{Timeout: cfg.WeatherTimeout},
			BaseURL:        cfg.WeatherBaseURL,
			APIKey:         cfg.WeatherKey,
			Timeout:        cfg.WeatherTimeout,
			Logger:         logger,
			CircuitBreaker: breaker,
		})
	}

	matchRepo := postgres.NewMatchRepository(db)
	oddsRepo := postgres.NewOddsRepository(db)
	identityRepo := postgres.NewIdentityRepository(db)

	fixtureProvider := provider.NewFixtureProvider(primary, secondary, cfg.CompetitionByLeague, store, logger)
	oddsProvider := provider.NewOddsProvider(oddsClient, store, logger)

	orchestrator := pipeline.NewOrchestrator(
		pipeline.Config{
			LeagueIDs:        cfg.LeagueIDs,
			FixtureInterval:  cfg.JobFixtureInterval,
			LiveInterval:     cfg.JobLiveInterval,
			OddsInterval:     cfg.JobOddsInterval,
			OddsBatchSize:    cfg.OddsSyncBatchSize,
			OddsPoolSize:     cfg.OddsSyncPoolSize,
			WeatherEnrichMax: cfg.WeatherEnrichMax,
		},
		fixtureProvider,
		oddsProvider,
		weather,
		matchRepo,
		oddsRepo,
		normalize.NewService(identityRepo, logger),
		validate.NewService(),
		store,
		logger,
	)

	return &App{
		Orchestrator: orchestrator,
		db:           db,
		redis:        redisClient,
	}, nil
}

// Close releases the database and cache connections. Call after the
// orchestrator has stopped.
func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
