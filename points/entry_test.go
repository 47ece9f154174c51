package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetail(t *testing.T) {
	cases := []struct {
		name  string
		entry FoodLogEntry
		want  string
	}{
		{"one palm", FoodLogEntry{Category: "grains", Servings: 1}, "1 palm"},
		{"half palm", FoodLogEntry{Category: "grains", Servings: 0.5}, "½ palm"},
		{"palm and a half", FoodLogEntry{Category: "fruits", Servings: 1.5}, "1½ palms"},
		{"odd fraction", FoodLogEntry{Category: "fruits", Servings: 2.3}, "2.3 palms"},
		{"glasses", FoodLogEntry{Category: "alcohol", Servings: 2}, "2 glasses"},
		{"spoonfuls", FoodLogEntry{Category: "fats", Servings: 0.4, Note: Note{SizeTag: "spoonful"}}, "2 spoonfuls"},
		{"one sip", FoodLogEntry{Category: "sugary-drinks", Servings: 0.2, Note: Note{SizeTag: "sip"}}, "1 sip"},
		{"standard medium", FoodLogEntry{Category: StandardMeal, Servings: 1, Note: Note{AutoLabel: "Pasta"}}, "Pasta"},
		{"standard small", FoodLogEntry{Category: StandardMeal, Servings: 0.7, Note: Note{AutoLabel: "Pasta"}}, "Small Pasta"},
		{"standard large", FoodLogEntry{Category: StandardMeal, Servings: 1.5, Note: Note{AutoLabel: "Pasta"}}, "Large Pasta"},
		{"rated", FoodLogEntry{Category: RatedMeal, Servings: 1, Note: Note{AutoLabel: "Small meal • Healthy"}}, "Small meal • Healthy"},
		{"rated without label", FoodLogEntry{Category: RatedMeal, Servings: 1}, "Rated meal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detail(tc.entry))
		})
	}
}

func TestDisplay(t *testing.T) {
	e := FoodLogEntry{Category: StandardMeal, Servings: 1, Note: Note{AutoLabel: "Pasta", UserNote: "extra cheese"}}
	assert.Equal(t, "Pasta • extra cheese", Display(e))

	e.Note.UserNote = ""
	assert.Equal(t, "Pasta", Display(e))
}

func TestFormatServings(t *testing.T) {
	assert.Equal(t, "¼", FormatServings(0.25))
	assert.Equal(t, "1¼", FormatServings(1.25))
	assert.Equal(t, "2¾", FormatServings(2.75))
	assert.Equal(t, "3", FormatServings(3))
	assert.Equal(t, "0.4", FormatServings(0.4))
}

/* ─── Editing ────────────────────────────────────────────────────────── */

func ptr[T any](v T) *T { return &v }

func TestApplyEdit(t *testing.T) {
	pick := FoodLogEntry{Category: "grains", Servings: 1, Points: 3}
	rated := FoodLogEntry{Category: RatedMeal, Servings: 1, Points: 10, Note: Note{AutoLabel: "Medium meal • Average"}}

	cases := []struct {
		name    string
		entry   FoodLogEntry
		edit    Edit
		penalty int
		want    FoodLogEntry
	}{
		{"servings reprice a pick", pick, Edit{Servings: ptr(2.0)}, PenaltyNone,
			FoodLogEntry{Category: "grains", Servings: 2, Points: 6}},
		{"servings reprice at penalty", pick, Edit{Servings: ptr(2.0)}, PenaltyNear,
			FoodLogEntry{Category: "grains", Servings: 2, Points: 12}},
		{"points override wins", pick, Edit{Servings: ptr(2.0), Points: ptr(5)}, PenaltyNone,
			FoodLogEntry{Category: "grains", Servings: 2, Points: 5}},
		{"negative override floors", pick, Edit{Points: ptr(-3)}, PenaltyNone,
			FoodLogEntry{Category: "grains", Servings: 1, Points: 0}},
		{"rated keeps points on servings edit", rated, Edit{Servings: ptr(3.0)}, PenaltyNone, rated},
		{"note only", rated, Edit{UserNote: ptr("lunch out")}, PenaltyNone,
			FoodLogEntry{Category: RatedMeal, Servings: 1, Points: 10, Note: Note{AutoLabel: "Medium meal • Average", UserNote: "lunch out"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ApplyEdit(tc.entry, tc.edit, ModeHybrid, tc.penalty))
		})
	}
}

/* ─── Totals ─────────────────────────────────────────────────────────── */

func TestRemainingAndAfford(t *testing.T) {
	logs := []FoodLogEntry{{Points: 12}, {Points: 20}}
	assert.Equal(t, 32, UsedPoints(logs))
	assert.Equal(t, 8, Remaining(40, logs))
	assert.Equal(t, -2, Remaining(30, logs))

	assert.Equal(t, Affordability{Cost: 5, RemainingAfter: 3}, Afford(8, 5))
	assert.Equal(t, Affordability{Cost: 12, RemainingAfter: -4, Over: true, OverBy: 4}, Afford(8, 12))
}

func TestDailyTotals(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	logs := []FoodLogEntry{
		{Points: 5, LoggedAt: day(1, 9)},
		{Points: 3, LoggedAt: day(1, 19)},
		{Points: 4, LoggedAt: day(3, 12)},
		{Points: 9, LoggedAt: day(5, 12)},
	}
	got := DailyTotals(logs, day(1, 0), 3, time.UTC)
	assert.Equal(t, []DayTotal{
		{Date: "2026-03-01", Points: 8},
		{Date: "2026-03-02", Points: 0},
		{Date: "2026-03-03", Points: 4},
	}, got)

	assert.Empty(t, DailyTotals(logs, day(1, 0), 0, time.UTC))
}

func TestDailyTotals_BucketsInLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 02:00 UTC on the 2nd is 21:00 on the 1st in EST.
	logs := []FoodLogEntry{{Points: 6, LoggedAt: time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)}}
	got := DailyTotals(logs, time.Date(2026, 3, 1, 0, 0, 0, 0, est), 2, est)
	assert.Equal(t, 6, got[0].Points)
	assert.Equal(t, 0, got[1].Points)
}

func TestSummarizeHistory(t *testing.T) {
	days := []DayTotal{{Points: 8}, {Points: 0}, {Points: 4}, {Points: 45}}
	assert.Equal(t, HistoryStats{DaysTracked: 3, DaysOver: 1, AveragePoints: 19}, SummarizeHistory(days, 40))
	assert.Equal(t, HistoryStats{}, SummarizeHistory(nil, 40))
}
