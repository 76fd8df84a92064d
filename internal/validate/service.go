// Package validate scores canonical records for completeness and checks
// derived invariants. Validation never fails with an error: it always
// returns a structured result and leaves the reject/store/refetch decision
// to the caller.
package validate

import (
	"math"

	"github.com/pitchsight/datapipe/internal/domain/prediction"
	"github.com/pitchsight/datapipe/internal/normalize"
)

// probabilityTolerance absorbs floating-point rounding from upstream
// ensemble averaging, not real probability-mass error. Keep it small.
const probabilityTolerance = 0.01

// FixtureReport is the structured outcome of a fixture completeness check.
type FixtureReport struct {
	Valid   bool
	Score   float64
	Missing []string
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// ValidateFixture scores a canonical record against the required field
// set: home team, away team, kickoff time, status, and competition.
func (s *Service) ValidateFixture(record normalize.PartialFixture) FixtureReport {
	checks := []struct {
		name    string
		present bool
	}{
		{"homeTeam", record.HomeTeam != ""},
		{"awayTeam", record.AwayTeam != ""},
		{"date", !record.KickoffAt.IsZero()},
		{"status", record.Status != ""},
		{"league", record.LeagueID != 0},
	}

	missing := make([]string, 0)
	for _, check := range checks {
		if !check.present {
			missing = append(missing, check.name)
		}
	}

	return FixtureReport{
		Valid:   len(missing) == 0,
		Score:   float64(len(checks)-len(missing)) / float64(len(checks)),
		Missing: missing,
	}
}

// ValidatePrediction reports whether all three outcome probabilities are
// present and their sum is within the absolute tolerance of 1.0.
func (s *Service) ValidatePrediction(p prediction.Prediction) bool {
	probs := p.Probabilities
	if probs.HomeWin == 0 || probs.Draw == 0 || probs.AwayWin == 0 {
		return false
	}
	return math.Abs(probs.Sum()-1.0) < probabilityTolerance
}
