package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
)

// Match is the canonical record for one fixture after cross-source
// normalization. ID is the internal match identifier; team references are
// internal team identifiers.
type Match struct {
	ID         string
	LeagueID   int
	HomeTeamID string
	HomeTeam   string
	AwayTeamID string
	AwayTeam   string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int

	// Supplementary fields contributed by secondary sources.
	XG       *float64
	Injuries []string
	Weather  *Weather
}

// Weather is a compact conditions snapshot attached to an upcoming match.
type Weather struct {
	Condition string
	TempC     float64
	WindKph   float64
}

// NormalizeStatus folds provider status codes into the canonical set.
// Unknown codes default to scheduled, the safest state for a row that the
// live-sync channel will correct within a minute.
func NormalizeStatus(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NS", "TBD", "SCHEDULED":
		return StatusScheduled
	case "LIVE", "IN_PLAY", "1H", "2H", "HT", "ET", "P", "BT":
		return StatusLive
	case "FT", "AET", "PEN", "FINISHED":
		return StatusFinished
	case "CANC", "CANCELLED", "ABD", "ABANDONED", "PST", "POSTPONED", "WO":
		return StatusCancelled
	default:
		return StatusScheduled
	}
}

// CanTransition reports whether a status change respects the monotonic
// order scheduled -> live -> finished, or scheduled -> cancelled. A status
// never regresses; a no-op transition is allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusScheduled:
		return to == StatusLive || to == StatusFinished || to == StatusCancelled
	case StatusLive:
		return to == StatusFinished
	default:
		return false
	}
}
