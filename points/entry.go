package points

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// noteSeparator joins the parts of a display line.
const noteSeparator = " • "

// Note is the structured form of a log entry's note. The display line is
// always regenerated from it and never parsed back.
type Note struct {
	// AutoLabel is generated when the entry is logged (a meal name, or a
	// rated meal's size and rating).
	AutoLabel string `json:"auto_label,omitempty"`
	// UserNote is free text typed by the user.
	UserNote string `json:"user_note,omitempty"`
	// SizeTag is the meal size for rated/standard meals, or the small unit
	// (spoonful, sip) for category picks. Empty means palms or glasses.
	SizeTag string `json:"size_tag,omitempty"`
}

// FoodLogEntry is one logged food. Points is the stored, already-penalised
// cost and is authoritative for every aggregation.
type FoodLogEntry struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Servings float64   `json:"servings"`
	Points   int       `json:"points"`
	LoggedAt time.Time `json:"logged_at"`
	Note     Note      `json:"note"`
}

// IsComposite reports whether the entry is a rated or standard meal rather
// than a per-serving category pick.
func (e FoodLogEntry) IsComposite() bool {
	return e.Category == RatedMeal || e.Category == StandardMeal
}

// Detail is the serving line for an entry, without the user's note.
func Detail(e FoodLogEntry) string {
	switch e.Category {
	case StandardMeal:
		name := e.Note.AutoLabel
		if name == "" {
			name = "Meal"
		}
		switch {
		case e.Servings <= 0.75:
			return "Small " + name
		case e.Servings >= 1.25:
			return "Large " + name
		}
		return name
	case RatedMeal:
		if e.Note.AutoLabel == "" {
			return "Rated meal"
		}
		return e.Note.AutoLabel
	}

	if u := Unit(e.Note.SizeTag); u.IsSmall() {
		count := round(e.Servings / smallUnitFactor)
		if u == UnitSip {
			return fmt.Sprintf("%d %s", count, plural(count, "sip", "sips"))
		}
		return fmt.Sprintf("%d %s", count, plural(count, "spoonful", "spoonfuls"))
	}

	unit, units := "palm", "palms"
	if IsDrink(e.Category) {
		unit, units = "glass", "glasses"
	}
	if e.Servings <= 1 {
		return FormatServings(e.Servings) + " " + unit
	}
	return FormatServings(e.Servings) + " " + units
}

// Display is Detail followed by the user's note, if any.
func Display(e FoodLogEntry) string {
	d := Detail(e)
	if e.Note.UserNote == "" {
		return d
	}
	return d + noteSeparator + e.Note.UserNote
}

var servingFractions = map[float64]string{
	0.25: "¼",
	0.5:  "½",
	0.75: "¾",
}

// FormatServings renders quarter servings with vulgar fractions (0.5 → "½",
// 1.25 → "1¼"). Other fractions print as plain decimals.
func FormatServings(n float64) string {
	whole := math.Floor(n)
	frac := math.Round((n-whole)*100) / 100
	sym, isFrac := servingFractions[frac]
	switch {
	case whole == 0 && isFrac:
		return sym
	case frac == 0:
		return strconv.FormatFloat(whole, 'f', -1, 64)
	case isFrac:
		return strconv.FormatFloat(whole, 'f', -1, 64) + sym
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

/* ─── Editing ────────────────────────────────────────────────────────── */

// Edit is a partial update to a log entry. Nil fields are left alone.
type Edit struct {
	Servings *float64 `json:"servings"`
	Points   *int     `json:"points"`
	UserNote *string  `json:"user_note"`
}

// RepriceEntry re-derives an entry's points from its category and servings.
// Servings are already palm-equivalents, so spoonful entries need no
// conversion. Rated and standard meals have no per-serving cost and keep
// their stored points.
func RepriceEntry(e FoodLogEntry, mode Mode, penalty int) int {
	if e.IsComposite() {
		return e.Points
	}
	return ApplyPenalty(CategoryCost(e.Category, e.Servings, mode), penalty)
}

// ApplyEdit returns e with ed applied. A servings change on a category pick
// reprices it at the given penalty; rated and standard meals keep their
// servings and points. An explicit Points always wins and is floored at zero.
func ApplyEdit(e FoodLogEntry, ed Edit, mode Mode, penalty int) FoodLogEntry {
	if ed.UserNote != nil {
		e.Note.UserNote = *ed.UserNote
	}
	if ed.Servings != nil && !e.IsComposite() {
		e.Servings = *ed.Servings
		e.Points = RepriceEntry(e, mode, penalty)
	}
	if ed.Points != nil {
		e.Points = max(0, *ed.Points)
	}
	return e
}

/* ─── Day and history totals ─────────────────────────────────────────── */

// UsedPoints totals the stored points of logs.
func UsedPoints(logs []FoodLogEntry) int {
	total := 0
	for _, e := range logs {
		total += e.Points
	}
	return total
}

// Remaining is the allowance left after logs. It goes negative when over.
func Remaining(dailyPoints int, logs []FoodLogEntry) int {
	return dailyPoints - UsedPoints(logs)
}

// Affordability answers "can I eat this?" for a priced food.
type Affordability struct {
	Cost           int  `json:"cost"`
	RemainingAfter int  `json:"remaining_after"`
	Over           bool `json:"over"`
	OverBy         int  `json:"over_by,omitempty"`
}

// Afford checks a cost against what is left today.
func Afford(remaining, cost int) Affordability {
	after := remaining - cost
	a := Affordability{Cost: cost, RemainingAfter: after}
	if after < 0 {
		a.Over = true
		a.OverBy = -after
	}
	return a
}

// DayTotal is one calendar day's points.
type DayTotal struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
}

// DailyTotals buckets logs into days consecutive calendar days starting at
// start, in loc. Days with nothing logged are included with zero points and
// logs outside the range are ignored.
func DailyTotals(logs []FoodLogEntry, start time.Time, days int, loc *time.Location) []DayTotal {
	if days <= 0 {
		return []DayTotal{}
	}
	first := time.Date(start.In(loc).Year(), start.In(loc).Month(), start.In(loc).Day(), 0, 0, 0, 0, loc)
	out := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := range out {
		d := first.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = DayTotal{Date: d}
		index[d] = i
	}
	for _, e := range logs {
		if i, ok := index[e.LoggedAt.In(loc).Format(time.DateOnly)]; ok {
			out[i].Points += e.Points
		}
	}
	return out
}

// HistoryStats summarises a run of day totals against the allowance.
type HistoryStats struct {
	DaysTracked   int `json:"days_tracked"`
	DaysOver      int `json:"days_over"`
	AveragePoints int `json:"average_points"`
}

// SummarizeHistory averages over days with anything logged and counts the
// days that went over dailyPoints.
func SummarizeHistory(days []DayTotal, dailyPoints int) HistoryStats {
	var s HistoryStats
	total := 0
	for _, d := range days {
		if d.Points > 0 {
			s.DaysTracked++
			total += d.Points
		}
		if d.Points > dailyPoints {
			s.DaysOver++
		}
	}
	if s.DaysTracked > 0 {
		s.AveragePoints = round(float64(total) / float64(s.DaysTracked))
	}
	return s
}
