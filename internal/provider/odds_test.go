package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitchsight/datapipe/internal/platform/cache"
	"github.com/pitchsight/datapipe/internal/source"
)

type oddsStub struct {
	events []source.OddsEvent
	err    error
	calls  int
}

func (s *oddsStub) ListEvents(context.Context) ([]source.OddsEvent, error) {
	s.calls++
	return s.events, s.err
}

func eplEvents() []source.OddsEvent {
	return []source.OddsEvent{
		{
			SourceEventID: "f00000000000000000000000000000ff",
			HomeTeam:      "Liverpool",
			AwayTeam:      "Manchester City",
			Quotes: []source.OddsQuote{{
				Bookmaker: "pinnacle",
				Format:    source.PriceFormatDecimal,
				Home:      2.6,
				Draw:      3.3,
				Away:      2.8,
			}},
		},
		{
			SourceEventID: "e912304de2b2ce35b473ce2ecd3d1502",
			HomeTeam:      "Arsenal",
			AwayTeam:      "Chelsea",
			Quotes: []source.OddsQuote{{
				Bookmaker: "williamhill",
				Format:    source.PriceFormatDecimal,
				Home:      2.05,
				Draw:      3.4,
				Away:      3.75,
				FetchedAt: time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC),
			}},
		},
	}
}

func TestGetOdds_SelectsEventByTeamNames(t *testing.T) {
	t.Parallel()

	stub := &oddsStub{events: eplEvents()}
	p := NewOddsProvider(stub, cache.NewMemory(), nil)

	// Internal ids never travel upstream; the join runs on team names,
	// tolerant of case and padding drift between sources.
	got, err := p.GetOdds(context.Background(), "PSP_MATCH_1035048", " arsenal ", "CHELSEA")
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if len(got) != 1 || got[0].Bookmaker != "williamhill" {
		t.Fatalf("quotes=%+v, want the Arsenal-Chelsea event's quote", got)
	}
}

func TestGetOdds_NoMatchingEventIsEmpty(t *testing.T) {
	t.Parallel()

	stub := &oddsStub{events: eplEvents()}
	p := NewOddsProvider(stub, cache.NewMemory(), nil)

	got, err := p.GetOdds(context.Background(), "PSP_MATCH_7", "Brentford", "Fulham")
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}
}

func TestGetOdds_CachesQuotes(t *testing.T) {
	t.Parallel()

	stub := &oddsStub{events: eplEvents()}
	store := cache.NewMemory()
	p := NewOddsProvider(stub, store, nil)

	for i := 0; i < 3; i++ {
		got, err := p.GetOdds(context.Background(), "PSP_MATCH_1035048", "Arsenal", "Chelsea")
		if err != nil {
			t.Fatalf("GetOdds call %d: %v", i, err)
		}
		if len(got) != 1 || got[0].Bookmaker != "williamhill" {
			t.Fatalf("call %d returned %+v", i, got)
		}
	}

	if stub.calls != 1 {
		t.Fatalf("upstream calls=%d, want 1 within TTL", stub.calls)
	}
	if _, ok := store.Get(context.Background(), "odds:PSP_MATCH_1035048"); !ok {
		t.Fatal("quotes not cached under odds:PSP_MATCH_1035048")
	}
}

func TestGetOdds_FailSoft(t *testing.T) {
	t.Parallel()

	stub := &oddsStub{err: errors.New("quota exhausted")}
	p := NewOddsProvider(stub, cache.NewMemory(), nil)

	got, err := p.GetOdds(context.Background(), "PSP_MATCH_1", "Arsenal", "Chelsea")
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}
}

func TestGetOdds_FailureNotCached(t *testing.T) {
	t.Parallel()

	stub := &oddsStub{err: errors.New("quota exhausted")}
	store := cache.NewMemory()
	p := NewOddsProvider(stub, store, nil)

	if _, err := p.GetOdds(context.Background(), "PSP_MATCH_1035048", "Arsenal", "Chelsea"); err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if _, ok := store.Get(context.Background(), "odds:PSP_MATCH_1035048"); ok {
		t.Fatal("failed fetch must not populate the cache")
	}

	stub.err = nil
	stub.events = eplEvents()
	got, err := p.GetOdds(context.Background(), "PSP_MATCH_1035048", "Arsenal", "Chelsea")
	if err != nil {
		t.Fatalf("GetOdds after recovery: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want recovered quotes", got)
	}
	if stub.calls != 2 {
		t.Fatalf("upstream calls=%d, want retry after failure", stub.calls)
	}
}
