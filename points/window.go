package points

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// EatingWindow is a daily time range in minutes since midnight. Both bounds
// are inclusive. A window with Start after End is not wrapped past midnight.
type EatingWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Penalty multipliers for food logged outside the window.
const (
	PenaltyNone = 1
	PenaltyNear = 2
	PenaltyFar  = 3
)

// nearOutsideMinutes is the widest gap that still gets the near penalty.
const nearOutsideMinutes = 120

// ParseClock parses a wall-clock "HH:MM" (or "HH:MM:SS", seconds ignored)
// into minutes since midnight.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// NewEatingWindow builds a window from two "HH:MM" bounds. Both must parse.
func NewEatingWindow(start, end string) (*EatingWindow, bool) {
	s, ok := ParseClock(start)
	if !ok {
		return nil, false
	}
	e, ok := ParseClock(end)
	if !ok {
		return nil, false
	}
	return &EatingWindow{Start: s, End: e}, true
}

// MinuteOfDay returns the wall-clock minute of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// WindowPenalty returns the multiplier for food logged at loggedAt. Up to two
// hours outside the window doubles the cost; further out triples it. A nil
// window never penalises.
func WindowPenalty(loggedAt time.Time, w *EatingWindow) int {
	if w == nil {
		return PenaltyNone
	}
	mins := MinuteOfDay(loggedAt)
	if mins >= w.Start && mins <= w.End {
		return PenaltyNone
	}

	outside := math.MaxInt
	if before := w.Start - mins; before > 0 {
		outside = before
	}
	if after := mins - w.End; after > 0 && after < outside {
		outside = after
	}
	if outside > nearOutsideMinutes {
		return PenaltyFar
	}
	return PenaltyNear
}

// ApplyPenalty multiplies an already-rounded cost by the window penalty.
func ApplyPenalty(points, penalty int) int {
	return round(float64(points) * float64(penalty))
}
