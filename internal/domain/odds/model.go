package odds

import "time"

// Quote is one bookmaker's three-way prices for a match, in decimal format.
type Quote struct {
	MatchID   string
	Bookmaker string
	Home      float64
	Draw      float64
	Away      float64
	FetchedAt time.Time
}

// HasPositivePrices reports whether all three outcome prices are positive.
// Bookmakers may disagree with each other; no cross-bookmaker ordering is
// ever assumed.
func (q Quote) HasPositivePrices() bool {
	return q.Home > 0 && q.Draw > 0 && q.Away > 0
}
