package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestWindowPenalty(t *testing.T) {
	w := &EatingWindow{Start: 8 * 60, End: 20 * 60}
	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"inside", at(12, 0), PenaltyNone},
		{"at start", at(8, 0), PenaltyNone},
		{"at end", at(20, 0), PenaltyNone},
		{"90 minutes early", at(6, 30), PenaltyNear},
		{"exactly 120 minutes late", at(22, 0), PenaltyNear},
		{"121 minutes late", at(22, 1), PenaltyFar},
		{"150 minutes late", at(22, 30), PenaltyFar},
		{"middle of the night", at(2, 0), PenaltyFar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WindowPenalty(tc.at, w))
		})
	}
}

func TestWindowPenalty_NoWindow(t *testing.T) {
	assert.Equal(t, PenaltyNone, WindowPenalty(at(3, 0), nil))
}

func TestWindowPenalty_UsesLocationOfTimestamp(t *testing.T) {
	w := &EatingWindow{Start: 8 * 60, End: 20 * 60}
	// 01:00 UTC is 19:00 the previous evening at UTC-6.
	local := at(1, 0).In(time.FixedZone("UTC-6", -6*3600))
	assert.Equal(t, PenaltyNone, WindowPenalty(local, w))
	assert.Equal(t, PenaltyFar, WindowPenalty(at(1, 0), w))
}

func TestApplyPenalty(t *testing.T) {
	assert.Equal(t, 7, ApplyPenalty(7, PenaltyNone))
	assert.Equal(t, 21, ApplyPenalty(7, PenaltyFar))
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"08:00", 480, true},
		{"20:30:00", 1230, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"8", 0, false},
		{"aa:bb", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseClock(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewEatingWindow(t *testing.T) {
	w, ok := NewEatingWindow("08:00:00", "20:00:00")
	assert.True(t, ok)
	assert.Equal(t, &EatingWindow{Start: 480, End: 1200}, w)

	_, ok = NewEatingWindow("08:00", "")
	assert.False(t, ok)
}
