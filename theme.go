package main

import (
	"fmt"
	"math"

	"lg/palm-points-api/points"
)

// PointsColor maps the share of the budget still left to an HSL color for the
// remaining-points ring: green when most is left, amber at half, red when
// none is left. A zero budget has nothing to spend and renders green.
func PointsColor(remaining, total int) string {
	pct := 1.0
	if total > 0 {
		pct = math.Max(0, math.Min(1, float64(remaining)/float64(total)))
	}

	var h, s, l float64
	if pct >= 0.5 {
		// amber (38, 92%, 50%) → green (142, 72%, 38%)
		t := (pct - 0.5) / 0.5
		h, s, l = 38+104*t, 92-20*t, 50-12*t
	} else {
		// red (0, 75%, 48%) → amber
		t := pct / 0.5
		h, s, l = 38*t, 75+17*t, 48+2*t
	}
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", points.Round(h), points.Round(s), points.Round(l))
}
