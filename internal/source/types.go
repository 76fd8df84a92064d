// Package source defines the plain data structures every upstream client
// translates its wire format into. Providers treat any client as
// interchangeable because they only ever see these shapes.
package source

import "time"

// Fixture is one match as reported by a single upstream, before
// normalization. Identifiers are the upstream's own.
type Fixture struct {
	Source           string
	SourceMatchID    string
	LeagueID         int
	HomeTeamSourceID string
	HomeTeamName     string
	AwayTeamSourceID string
	AwayTeamName     string
	KickoffAt        time.Time
	Status           string
	HomeScore        *int
	AwayScore        *int
	Elapsed          *int
	VenueCity        string
}

// Price format labels used by odds providers.
const (
	PriceFormatDecimal    = "decimal"
	PriceFormatFractional = "fractional"
)

// OddsEvent is one upstream event with each bookmaker's quote. The odds
// aggregator keys events by its own id, which never enters the canonical
// store; team names are the join point back to a match.
type OddsEvent struct {
	SourceEventID string
	HomeTeam      string
	AwayTeam      string
	Quotes        []OddsQuote
}

// OddsQuote is one bookmaker's three-way prices in the provider's native
// representation; normalization converts everything to decimal.
type OddsQuote struct {
	Bookmaker string
	Format    string
	Home      float64
	Draw      float64
	Away      float64
	FetchedAt time.Time
}

// TableRow is one line of a league table.
type TableRow struct {
	Position     int
	TeamSourceID string
	TeamName     string
	Played       int
	Won          int
	Draw         int
	Lost         int
	GoalDiff     int
	Points       int
}

// Weather is a compact current-conditions record for a venue city.
type Weather struct {
	Condition string
	TempC     float64
	WindKph   float64
}
