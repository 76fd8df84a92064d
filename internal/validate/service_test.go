package validate

import (
	"testing"
	"time"

	"github.com/pitchsight/datapipe/internal/domain/prediction"
	"github.com/pitchsight/datapipe/internal/normalize"
)

func completeRecord() normalize.PartialFixture {
	return normalize.PartialFixture{
		MatchID:   "PSP_MATCH_1035048",
		LeagueID:  39,
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC),
		Status:    "scheduled",
	}
}

func TestValidateFixture_CompleteRecord(t *testing.T) {
	t.Parallel()

	report := NewService().ValidateFixture(completeRecord())

	if !report.Valid {
		t.Fatal("complete record reported invalid")
	}
	if report.Score != 1.0 {
		t.Fatalf("score=%v, want 1.0", report.Score)
	}
	if len(report.Missing) != 0 {
		t.Fatalf("missing=%v, want none", report.Missing)
	}
}

func TestValidateFixture_SingleMissingField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*normalize.PartialFixture)
		want   string
	}{
		{"no home team", func(r *normalize.PartialFixture) { r.HomeTeam = "" }, "homeTeam"},
		{"no away team", func(r *normalize.PartialFixture) { r.AwayTeam = "" }, "awayTeam"},
		{"no kickoff", func(r *normalize.PartialFixture) { r.KickoffAt = time.Time{} }, "date"},
		{"no status", func(r *normalize.PartialFixture) { r.Status = "" }, "status"},
		{"no league", func(r *normalize.PartialFixture) { r.LeagueID = 0 }, "league"},
	}

	svc := NewService()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			record := completeRecord()
			tc.mutate(&record)

			report := svc.ValidateFixture(record)
			if report.Valid {
				t.Fatal("record with missing field reported valid")
			}
			if report.Score != 0.8 {
				t.Fatalf("score=%v, want 0.8", report.Score)
			}
			if len(report.Missing) != 1 || report.Missing[0] != tc.want {
				t.Fatalf("missing=%v, want [%s]", report.Missing, tc.want)
			}
		})
	}
}

func TestValidateFixture_EmptyRecord(t *testing.T) {
	t.Parallel()

	report := NewService().ValidateFixture(normalize.PartialFixture{})
	if report.Valid {
		t.Fatal("empty record reported valid")
	}
	if report.Score != 0 {
		t.Fatalf("score=%v, want 0", report.Score)
	}
	if len(report.Missing) != 5 {
		t.Fatalf("missing=%v, want all five fields", report.Missing)
	}
}

func TestValidatePrediction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		probs prediction.Probabilities
		want  bool
	}{
		{"sums to one", prediction.Probabilities{HomeWin: 0.58, Draw: 0.22, AwayWin: 0.20}, true},
		{"within tolerance", prediction.Probabilities{HomeWin: 0.581, Draw: 0.22, AwayWin: 0.204}, true},
		{"over by a tenth", prediction.Probabilities{HomeWin: 0.5, Draw: 0.3, AwayWin: 0.3}, false},
		{"under by a tenth", prediction.Probabilities{HomeWin: 0.4, Draw: 0.3, AwayWin: 0.2}, false},
		{"zero outcome", prediction.Probabilities{HomeWin: 0.7, Draw: 0, AwayWin: 0.3}, false},
	}

	svc := NewService()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := svc.ValidatePrediction(prediction.Prediction{Probabilities: tc.probs})
			if got != tc.want {
				t.Fatalf("ValidatePrediction=%v, want %v", got, tc.want)
			}
		})
	}
}
