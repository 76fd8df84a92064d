package normalize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pitchsight/datapipe/internal/domain/identity"
	"github.com/pitchsight/datapipe/internal/infrastructure/repository/memory"
	"github.com/pitchsight/datapipe/internal/source"
)

func TestNormalizeID_IsDeterministic(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	first, err := svc.NormalizeID(context.Background(), "api-football", identity.KindTeam, "42")
	if err != nil {
		t.Fatalf("first NormalizeID: %v", err)
	}
	second, err := svc.NormalizeID(context.Background(), "api-football", identity.KindTeam, "42")
	if err != nil {
		t.Fatalf("second NormalizeID: %v", err)
	}

	if first != second {
		t.Fatalf("ids differ: %s vs %s", first, second)
	}
	if first != "PSP_TEAM_42" {
		t.Fatalf("id=%s, want PSP_TEAM_42", first)
	}
}

func TestNormalizeID_KindsUseDistinctPrefixes(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	cases := map[identity.Kind]string{
		identity.KindTeam:   "PSP_TEAM_7",
		identity.KindPlayer: "PSP_PLAYER_7",
		identity.KindMatch:  "PSP_MATCH_7",
	}
	for kind, want := range cases {
		got, err := svc.NormalizeID(context.Background(), "api-football", kind, "7")
		if err != nil {
			t.Fatalf("NormalizeID(%s): %v", kind, err)
		}
		if got != want {
			t.Errorf("NormalizeID(%s)=%s, want %s", kind, got, want)
		}
	}
}

func TestNormalizeID_ConcurrentFirstSeenMintsOnce(t *testing.T) {
	t.Parallel()

	repo := memory.NewIdentityRepository()
	svc := NewService(repo, nil)

	const workers = 16
	results := make([]string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			<-start
			id, err := svc.NormalizeID(context.Background(), "api-football", identity.KindMatch, "1035048")
			if err != nil {
				t.Errorf("NormalizeID: %v", err)
				return
			}
			results[idx] = id
		}(i)
	}
	close(start)
	wg.Wait()

	for _, id := range results {
		if id != "PSP_MATCH_1035048" {
			t.Fatalf("id=%s, want PSP_MATCH_1035048", id)
		}
	}

	rows, err := repo.ListByInternalID(context.Background(), identity.KindMatch, "PSP_MATCH_1035048")
	if err != nil {
		t.Fatalf("ListByInternalID: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("mappings=%d, want exactly one minted", len(rows))
	}
}

func TestNormalizeTeam_BuildsCanonicalRecord(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	club, err := svc.NormalizeTeam(context.Background(), "api-football", "42", " Arsenal ")
	if err != nil {
		t.Fatalf("NormalizeTeam: %v", err)
	}
	if club.ID != "PSP_TEAM_42" {
		t.Fatalf("id=%s", club.ID)
	}
	if club.Name != "Arsenal" {
		t.Fatalf("name=%q, want trimmed", club.Name)
	}
	if club.ExternalIDs["api-football"] != "42" {
		t.Fatalf("external ids=%v", club.ExternalIDs)
	}
}

func TestNormalizeID_CrossSourceCollisionIsFatal(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	if _, err := svc.NormalizeID(context.Background(), "api-football", identity.KindTeam, "5"); err != nil {
		t.Fatalf("first source: %v", err)
	}

	// A second upstream reusing raw id 5 for an unrelated team would claim
	// the same internal id; that must surface, never resolve silently.
	_, err := svc.NormalizeID(context.Background(), "football-data", identity.KindTeam, "5")
	if !errors.Is(err, ErrMappingConflict) {
		t.Fatalf("err=%v, want ErrMappingConflict", err)
	}
}

func TestNormalizeID_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)
	if _, err := svc.NormalizeID(context.Background(), "api-football", identity.Kind("venue"), "1"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMergeFixtures_LaterSourceFillsMissingField(t *testing.T) {
	t.Parallel()

	xg := 2.1
	primary := PartialFixture{MatchID: "PSP_MATCH_1", HomeTeam: "Arsenal", AwayTeam: "Chelsea"}
	xgSource := PartialFixture{XG: &xg}

	merged := MergeFixtures([]PartialFixture{primary, xgSource})
	if merged.XG == nil || *merged.XG != 2.1 {
		t.Fatalf("xG=%v, want 2.1", merged.XG)
	}
}

func TestMergeFixtures_FirstWriterWins(t *testing.T) {
	t.Parallel()

	first := PartialFixture{HomeTeam: "Arsenal"}
	second := PartialFixture{HomeTeam: "Arsenal FC", AwayTeam: "Chelsea"}

	merged := MergeFixtures([]PartialFixture{first, second})
	if merged.HomeTeam != "Arsenal" {
		t.Fatalf("home team=%s, want first writer's value", merged.HomeTeam)
	}
	if merged.AwayTeam != "Chelsea" {
		t.Fatalf("away team=%s, want Chelsea", merged.AwayTeam)
	}
}

func TestNormalizeOdds_BetfairFractionalToDecimal(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	quote := svc.NormalizeOdds(source.OddsQuote{
		Bookmaker: "betfair",
		Format:    source.PriceFormatFractional,
		Home:      1.10,
		Draw:      2.25,
		Away:      2.40,
	}, "betfair")

	if quote.Format != source.PriceFormatDecimal {
		t.Fatalf("format=%s, want decimal", quote.Format)
	}
	if quote.Home != 2.10 || quote.Draw != 3.25 || quote.Away != 3.40 {
		t.Fatalf("prices=%v/%v/%v", quote.Home, quote.Draw, quote.Away)
	}
}

func TestNormalizeOdds_PinnaclePassesThrough(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	in := source.OddsQuote{Bookmaker: "pinnacle", Format: source.PriceFormatDecimal, Home: 1.95, Draw: 3.6, Away: 4.1}
	out := svc.NormalizeOdds(in, "pinnacle")
	if out != in {
		t.Fatalf("quote changed: %+v", out)
	}
}

func TestNormalizeOdds_UnknownProviderPassesThrough(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewIdentityRepository(), nil)

	in := source.OddsQuote{Bookmaker: "mystery", Format: source.PriceFormatDecimal, Home: 2.0, Draw: 3.0, Away: 4.0}
	out := svc.NormalizeOdds(in, "mystery")
	if out != in {
		t.Fatalf("quote changed: %+v", out)
	}
}
