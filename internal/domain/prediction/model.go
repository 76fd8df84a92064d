package prediction

// Prediction is consumed, not computed, by this pipeline: the prediction
// engine produces it, validation only checks its shape.
type Prediction struct {
	MatchID        string
	Probabilities  Probabilities
	OverUnder      *Market
	BothTeamsScore *Market
	Confidence     string
}

type Probabilities struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

func (p Probabilities) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// Market is a derived two-way market (over/under, both-teams-to-score).
type Market struct {
	Line float64
	Yes  float64
	No   float64
}
