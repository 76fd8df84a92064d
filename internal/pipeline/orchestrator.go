// Package pipeline runs the recurring sync jobs that keep the canonical
// match store and the live channel fresh. Each job owns a ticker; jobs
// never block each other, and a tick is skipped when the previous run of
// the same job is still going.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"

	"github.com/pitchsight/datapipe/internal/domain/fixture"
	"github.com/pitchsight/datapipe/internal/domain/identity"
	"github.com/pitchsight/datapipe/internal/domain/odds"
	"github.com/pitchsight/datapipe/internal/normalize"
	"github.com/pitchsight/datapipe/internal/platform/cache"
	"github.com/pitchsight/datapipe/internal/platform/logging"
	"github.com/pitchsight/datapipe/internal/source"
	"github.com/pitchsight/datapipe/internal/validate"
)

// LiveChannel is the pub/sub channel live-match deltas are published to.
const LiveChannel = "live-updates"

const (
	JobFixtureSync = "fixture-sync"
	JobLiveSync    = "live-sync"
	JobOddsSync    = "odds-sync"
)

// Job lifecycle states. A job returns to idle after every run; the outcome
// of the last completed run stays observable through JobStatus.
const (
	StateIdle    = "idle"
	StateRunning = "running"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// FixtureSource is the fixtures read path the sync jobs consume.
type FixtureSource interface {
	GetFixtures(ctx context.Context, leagueID int) ([]source.Fixture, error)
	GetLiveMatches(ctx context.Context) ([]source.Fixture, error)
}

// OddsSource is the odds read path for scheduled matches. The upstream
// knows nothing about internal ids; team names carry the join.
type OddsSource interface {
	GetOdds(ctx context.Context, matchID, homeTeam, awayTeam string) ([]source.OddsQuote, error)
}

// WeatherSource enriches upcoming fixtures with venue conditions.
type WeatherSource interface {
	CurrentByCity(ctx context.Context, city string) (source.Weather, error)
}

type Config struct {
	LeagueIDs        []int
	FixtureInterval  time.Duration
	LiveInterval     time.Duration
	OddsInterval     time.Duration
	OddsBatchSize    int
	OddsPoolSize     int
	WeatherEnrichMax int
}

func (c Config) withDefaults() Config {
	if c.FixtureInterval <= 0 {
		c.FixtureInterval = 6 * time.Hour
	}
	if c.LiveInterval <= 0 {
		c.LiveInterval = time.Minute
	}
	if c.OddsInterval <= 0 {
		c.OddsInterval = 30 * time.Minute
	}
	if c.OddsBatchSize <= 0 {
		c.OddsBatchSize = 20
	}
	if c.OddsPoolSize <= 0 {
		c.OddsPoolSize = 4
	}
	return c
}

// JobStatus is a point-in-time snapshot of one job.
type JobStatus struct {
	Name       string
	State      string
	LastResult string
	LastRunAt  time.Time
	LastError  string
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error

	running atomic.Bool

	mu         sync.Mutex
	lastResult string
	lastRunAt  time.Time
	lastError  string
}

type Orchestrator struct {
	cfg       Config
	fixtures  FixtureSource
	oddsFeed  OddsSource
	weather   WeatherSource
	matches   fixture.Repository
	quotes    odds.Repository
	normalize *normalize.Service
	validate  *validate.Service
	cache     cache.Cache
	logger    *logging.Logger

	jobs   map[string]*job
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewOrchestrator(
	cfg Config,
	fixtures FixtureSource,
	oddsFeed OddsSource,
	weather WeatherSource,
	matches fixture.Repository,
	quotes odds.Repository,
	normalizer *normalize.Service,
	validator *validate.Service,
	store cache.Cache,
	logger *logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}

	o := &Orchestrator{
		cfg:       cfg.withDefaults(),
		fixtures:  fixtures,
		oddsFeed:  oddsFeed,
		weather:   weather,
		matches:   matches,
		quotes:    quotes,
		normalize: normalizer,
		validate:  validator,
		cache:     store,
		logger:    logger,
	}
	o.jobs = map[string]*job{
		JobFixtureSync: {name: JobFixtureSync, interval: o.cfg.FixtureInterval, run: o.syncFixtures},
		JobLiveSync:    {name: JobLiveSync, interval: o.cfg.LiveInterval, run: o.syncLive},
		JobOddsSync:    {name: JobOddsSync, interval: o.cfg.OddsInterval, run: o.syncOdds},
	}
	return o
}

// Start launches every job loop. Each job runs once immediately, then on
// its ticker, until Stop is called or ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	for _, j := range o.jobs {
		j := j
		o.wg.Go(func() {
			o.runLoop(ctx, j)
		})
	}
}

// Stop cancels the job loops and waits for them to return. In-flight
// upstream calls finish or hit their own timeouts.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// JobStatus returns the snapshot for one job, by name.
func (o *Orchestrator) JobStatus(name string) (JobStatus, bool) {
	j, ok := o.jobs[name]
	if !ok {
		return JobStatus{}, false
	}

	state := StateIdle
	if j.running.Load() {
		state = StateRunning
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:       j.name,
		State:      state,
		LastResult: j.lastResult,
		LastRunAt:  j.lastRunAt,
		LastError:  j.lastError,
	}, true
}

func (o *Orchestrator) runLoop(ctx context.Context, j *job) {
	o.runJob(ctx, j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runJob(ctx, j)
		}
	}
}

func (o *Orchestrator) runJob(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		o.logger.WarnContext(ctx, "previous run still in progress, skipping tick", "job", j.name)
		return
	}
	defer j.running.Store(false)

	start := time.Now()
	err := j.run(ctx)

	j.mu.Lock()
	j.lastRunAt = start
	if err != nil {
		j.lastResult = ResultFailed
		j.lastError = err.Error()
	} else {
		j.lastResult = ResultSuccess
		j.lastError = ""
	}
	j.mu.Unlock()

	if err != nil {
		o.logger.ErrorContext(ctx, "sync job failed", "job", j.name, "duration", time.Since(start), "error", err.Error())
		return
	}
	o.logger.InfoContext(ctx, "sync job finished", "job", j.name, "duration", time.Since(start))
}

func (o *Orchestrator) syncFixtures(ctx context.Context) error {
	var failures int
	for _, leagueID := range o.cfg.LeagueIDs {
		rows, err := o.fixtures.GetFixtures(ctx, leagueID)
		if err != nil {
			o.logger.ErrorContext(ctx, "fixture fetch failed", "league_id", leagueID, "error", err.Error())
			failures++
			continue
		}

		matches := make([]fixture.Match, 0, len(rows))
		enriched := 0
		for _, row := range rows {
			partial := partialFromSource(row)
			if o.weather != nil && partial.Status == fixture.StatusScheduled && row.VenueCity != "" && enriched < o.cfg.WeatherEnrichMax {
				enriched++
				if conditions, err := o.weather.CurrentByCity(ctx, row.VenueCity); err != nil {
					o.logger.WarnContext(ctx, "weather enrichment failed", "city", row.VenueCity, "error", err.Error())
				} else {
					partial = normalize.MergeFixtures([]normalize.PartialFixture{partial, {Weather: &fixture.Weather{
						Condition: conditions.Condition,
						TempC:     conditions.TempC,
						WindKph:   conditions.WindKph,
					}}})
				}
			}

			match, err := o.toCanonical(ctx, row, partial)
			if err != nil {
				o.logger.ErrorContext(ctx, "fixture normalization failed",
					"source", row.Source,
					"source_match_id", row.SourceMatchID,
					"error", err.Error(),
				)
				failures++
				continue
			}

			if report := o.validate.ValidateFixture(partial); !report.Valid {
				o.logger.WarnContext(ctx, "storing incomplete fixture",
					"match_id", match.ID,
					"completeness", report.Score,
					"missing", report.Missing,
				)
			}
			matches = append(matches, match)
		}

		if err := o.matches.InsertIgnoreExisting(ctx, matches); err != nil {
			o.logger.ErrorContext(ctx, "fixture insert failed", "league_id", leagueID, "error", err.Error())
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("fixture sync finished with %d failures", failures)
	}
	return nil
}

func partialFromSource(row source.Fixture) normalize.PartialFixture {
	return normalize.PartialFixture{
		LeagueID:  row.LeagueID,
		HomeTeam:  row.HomeTeamName,
		AwayTeam:  row.AwayTeamName,
		KickoffAt: row.KickoffAt,
		Status:    fixture.NormalizeStatus(row.Status),
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
	}
}

func (o *Orchestrator) toCanonical(ctx context.Context, row source.Fixture, partial normalize.PartialFixture) (fixture.Match, error) {
	matchID, err := o.normalize.NormalizeID(ctx, row.Source, identity.KindMatch, row.SourceMatchID)
	if err != nil {
		return fixture.Match{}, err
	}
	home, err := o.normalize.NormalizeTeam(ctx, row.Source, row.HomeTeamSourceID, row.HomeTeamName)
	if err != nil {
		return fixture.Match{}, err
	}
	away, err := o.normalize.NormalizeTeam(ctx, row.Source, row.AwayTeamSourceID, row.AwayTeamName)
	if err != nil {
		return fixture.Match{}, err
	}

	return fixture.Match{
		ID:         matchID,
		LeagueID:   partial.LeagueID,
		HomeTeamID: home.ID,
		HomeTeam:   partial.HomeTeam,
		AwayTeamID: away.ID,
		AwayTeam:   partial.AwayTeam,
		KickoffAt:  partial.KickoffAt,
		Status:     partial.Status,
		HomeScore:  partial.HomeScore,
		AwayScore:  partial.AwayScore,
		XG:         partial.XG,
		Injuries:   partial.Injuries,
		Weather:    partial.Weather,
	}, nil
}

type liveMatch struct {
	MatchID   string `json:"matchId"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Elapsed   *int   `json:"elapsed,omitempty"`
	Status    string `json:"status"`
}

type livePayload struct {
	LiveMatches []liveMatch `json:"liveMatches"`
}

func (o *Orchestrator) syncLive(ctx context.Context) error {
	rows, err := o.fixtures.GetLiveMatches(ctx)
	if err != nil {
		return fmt.Errorf("fetch live matches: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	payload := livePayload{LiveMatches: make([]liveMatch, 0, len(rows))}
	for _, row := range rows {
		matchID, err := o.normalize.NormalizeID(ctx, row.Source, identity.KindMatch, row.SourceMatchID)
		if err != nil {
			o.logger.ErrorContext(ctx, "live match normalization failed",
				"source", row.Source,
				"source_match_id", row.SourceMatchID,
				"error", err.Error(),
			)
			continue
		}
		payload.LiveMatches = append(payload.LiveMatches, liveMatch{
			MatchID:   matchID,
			HomeTeam:  row.HomeTeamName,
			AwayTeam:  row.AwayTeamName,
			HomeScore: row.HomeScore,
			AwayScore: row.AwayScore,
			Elapsed:   row.Elapsed,
			Status:    fixture.NormalizeStatus(row.Status),
		})
	}
	if len(payload.LiveMatches) == 0 {
		return nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("encode live payload: %w", err)
	}

	// Publishing is best-effort; a down cache drops the delta and the next
	// tick re-publishes current state.
	o.cache.Publish(ctx, LiveChannel, buf.Bytes())
	o.logger.InfoContext(ctx, "published live matches", "count", len(payload.LiveMatches))
	return nil
}

func (o *Orchestrator) syncOdds(ctx context.Context) error {
	scheduled, err := o.matches.ListScheduled(ctx, o.cfg.OddsBatchSize)
	if err != nil {
		return fmt.Errorf("list scheduled matches: %w", err)
	}
	if len(scheduled) == 0 {
		return nil
	}

	pool, err := ants.NewPool(o.cfg.OddsPoolSize)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, match := range scheduled {
		match := match
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := o.syncMatchOdds(ctx, match); err != nil {
				failed.Add(1)
				o.logger.WarnContext(ctx, "odds sync failed for match", "match_id", match.ID, "error", err.Error())
			}
		}); err != nil {
			workers.Done()
			failed.Add(1)
			o.logger.WarnContext(ctx, "odds task submit failed", "match_id", match.ID, "error", err.Error())
		}
	}
	workers.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("odds sync finished with %d of %d matches failed", n, len(scheduled))
	}
	return nil
}

func (o *Orchestrator) syncMatchOdds(ctx context.Context, match fixture.Match) error {
	rows, err := o.oddsFeed.GetOdds(ctx, match.ID, match.HomeTeam, match.AwayTeam)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	out := make([]odds.Quote, 0, len(rows))
	for _, row := range rows {
		row = o.normalize.NormalizeOdds(row, row.Bookmaker)
		quote := odds.Quote{
			MatchID:   match.ID,
			Bookmaker: row.Bookmaker,
			Home:      row.Home,
			Draw:      row.Draw,
			Away:      row.Away,
			FetchedAt: row.FetchedAt,
		}
		if !quote.HasPositivePrices() {
			continue
		}
		out = append(out, quote)
	}
	if len(out) == 0 {
		return nil
	}

	return o.quotes.UpsertQuotes(ctx, match.ID, out)
}
