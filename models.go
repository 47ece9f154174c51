package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"lg/palm-points-api/points"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// ClockTime is a wall-clock time of day in minutes since midnight. It scans
// from PostgreSQL time columns and serializes as "HH:MM".
type ClockTime struct {
	Minutes int
	Valid   bool
}

func newClockTime(minutes int) ClockTime {
	return ClockTime{Minutes: minutes, Valid: true}
}

// String formats as "HH:MM:00", which Postgres accepts for a time column.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Minutes/60, t.Minutes%60)
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%02d:%02d"`, t.Minutes/60, t.Minutes%60)), nil
}

func (t *ClockTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ClockTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	m, ok := points.ParseClock(s)
	if !ok {
		return fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	*t = newClockTime(m)
	return nil
}

// ScanTime implements pgtype.TimeScanner for PostgreSQL time columns
// (OID 1083). Seconds are dropped.
func (t *ClockTime) ScanTime(v pgtype.Time) error {
	if !v.Valid {
		*t = ClockTime{}
		return nil
	}
	*t = newClockTime(int(v.Microseconds / int64(time.Minute/time.Microsecond)))
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to the profiles table, one row per user. Biometric fields are
// nullable until onboarding; DailyPoints is always derived server-side.
type profile struct {
	UserID   int      `json:"user_id"   db:"user_id"`
	Gender   *string  `json:"gender"    db:"gender"`
	Age      *int     `json:"age"       db:"age"`
	HeightCM *float64 `json:"height_cm" db:"height_cm"`
	WeightKG *float64 `json:"weight_kg" db:"weight_kg"`

	ActivityLevel string `json:"activity_level" db:"activity_level"`
	Goal          string `json:"goal"           db:"goal"`
	DailyPoints   int    `json:"daily_points"   db:"daily_points"`

	EatingWindowEnabled bool      `json:"eating_window_enabled" db:"eating_window_enabled"`
	EatingWindowStart   ClockTime `json:"eating_window_start"   db:"eating_window_start"`
	EatingWindowEnd     ClockTime `json:"eating_window_end"     db:"eating_window_end"`

	MacrosEnabled       bool     `json:"macros_enabled"       db:"macros_enabled"`
	PhysiqueGoal        *string  `json:"physique_goal"        db:"physique_goal"`
	DietaryRestrictions []string `json:"dietary_restrictions" db:"dietary_restrictions"`
	PointsMode          string   `json:"points_mode"          db:"points_mode"`
	SetupComplete       bool     `json:"setup_complete"       db:"setup_complete"`

	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// defaultProfile is what a user without a profile row sees.
func defaultProfile(userID int) profile {
	return profile{
		UserID:              userID,
		ActivityLevel:       string(points.Moderate),
		Goal:                string(points.LoseSteady),
		DailyPoints:         points.DefaultDailyPoints,
		EatingWindowStart:   newClockTime(8 * 60),
		EatingWindowEnd:     newClockTime(20 * 60),
		DietaryRestrictions: []string{},
		PointsMode:          string(points.ModeHybrid),
	}
}

// biometrics returns the budget inputs once all four body fields are set.
func (p profile) biometrics() (points.Profile, bool) {
	if p.Gender == nil || p.Age == nil || p.HeightCM == nil || p.WeightKG == nil {
		return points.Profile{}, false
	}
	return points.Profile{
		Gender:   points.Gender(*p.Gender),
		Age:      *p.Age,
		HeightCM: *p.HeightCM,
		WeightKG: *p.WeightKG,
		Activity: points.ActivityLevel(p.ActivityLevel),
		Goal:     points.Goal(p.Goal),
	}, true
}

// window returns the eating window, or nil when it is off or incomplete.
func (p profile) window() *points.EatingWindow {
	if !p.EatingWindowEnabled || !p.EatingWindowStart.Valid || !p.EatingWindowEnd.Valid {
		return nil
	}
	return &points.EatingWindow{Start: p.EatingWindowStart.Minutes, End: p.EatingWindowEnd.Minutes}
}

func (p profile) mode() points.Mode {
	return points.ParseMode(p.PointsMode)
}

// physiqueKey is the macro goal key, or "" when macro tracking is off.
func (p profile) physiqueKey() string {
	if !p.MacrosEnabled || p.PhysiqueGoal == nil {
		return ""
	}
	return *p.PhysiqueGoal
}

// foodLog maps to food_logs. Points are stored after pricing and never
// recomputed on read.
type foodLog struct {
	ID        uuid.UUID  `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Category  string     `json:"category"   db:"category"`
	Servings  float64    `json:"servings"   db:"servings"`
	Points    int        `json:"points"     db:"points"`
	LoggedAt  time.Time  `json:"logged_at"  db:"logged_at"`
	AutoLabel string     `json:"auto_label" db:"auto_label"`
	UserNote  string     `json:"user_note"  db:"user_note"`
	SizeTag   string     `json:"size_tag"   db:"size_tag"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

func (f foodLog) entry() points.FoodLogEntry {
	return points.FoodLogEntry{
		ID:       f.ID.String(),
		Category: f.Category,
		Servings: f.Servings,
		Points:   f.Points,
		LoggedAt: f.LoggedAt,
		Note:     points.Note{AutoLabel: f.AutoLabel, UserNote: f.UserNote, SizeTag: f.SizeTag},
	}
}

// foodLogView is a stored entry plus its regenerated display lines.
type foodLogView struct {
	foodLog
	Detail  string `json:"detail"`
	Display string `json:"display"`
}

func newFoodLogView(f foodLog) foodLogView {
	e := f.entry()
	return foodLogView{foodLog: f, Detail: points.Detail(e), Display: points.Display(e)}
}

// weightEntry maps to weight_log. One entry per user per date.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  float64    `json:"weight_kg"  db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

/* ─── Response shapes ────────────────────────────────────────────────── */

// dailyLog is the response shape for GET /food-log/daily.
type dailyLog struct {
	Date            string         `json:"date"`
	DailyPoints     int            `json:"daily_points"`
	UsedPoints      int            `json:"used_points"`
	RemainingPoints int            `json:"remaining_points"`
	PointsColor     string         `json:"points_color"`
	Macros          points.Macros  `json:"macros"`
	MacroTargets    *points.Macros `json:"macro_targets,omitempty"`
	PointsMode      points.Mode    `json:"points_mode"`
	Entries         []foodLogView  `json:"entries"`
	Profile         profile        `json:"profile"`
}

// historyResponse is the response shape for GET /food-log/history.
type historyResponse struct {
	DailyPoints int                 `json:"daily_points"`
	Days        []points.DayTotal   `json:"days"`
	Stats       points.HistoryStats `json:"stats"`
}

/* ─── Request shapes ─────────────────────────────────────────────────── */

// profileRequest is the body for POST and PATCH /api/profile. All fields are
// pointers so PATCH can tell "not provided" from zero. daily_points is not
// accepted; it is recomputed from the biometrics.
type profileRequest struct {
	Gender              *string  `json:"gender"`
	Age                 *int     `json:"age"`
	HeightCM            *float64 `json:"height_cm"`
	WeightKG            *float64 `json:"weight_kg"`
	ActivityLevel       *string  `json:"activity_level"`
	Goal                *string  `json:"goal"`
	EatingWindowEnabled *bool    `json:"eating_window_enabled"`
	EatingWindowStart   *string  `json:"eating_window_start"` // HH:MM
	EatingWindowEnd     *string  `json:"eating_window_end"`   // HH:MM
	MacrosEnabled       *bool    `json:"macros_enabled"`
	PhysiqueGoal        *string  `json:"physique_goal"`
	DietaryRestrictions []string `json:"dietary_restrictions"` // nil = not provided
	PointsMode          *string  `json:"points_mode"`
}

// pickRequest is the body for POST /api/food-log/pick. Small switches the
// unit to spoonfuls (or sips for drinks).
type pickRequest struct {
	Category string     `json:"category"`
	Count    float64    `json:"count"`
	Small    bool       `json:"small"`
	UserNote string     `json:"user_note"`
	LoggedAt *time.Time `json:"logged_at"`
}

// standardMealRequest is the body for POST /api/food-log/standard.
type standardMealRequest struct {
	Meal     string     `json:"meal"`
	Size     string     `json:"size"`
	UserNote string     `json:"user_note"`
	LoggedAt *time.Time `json:"logged_at"`
}

// ratedMealRequest is the body for POST /api/food-log/rated. Either Rating or
// a complete set of Answers is required.
type ratedMealRequest struct {
	Rating    int            `json:"rating"`
	Answers   points.Answers `json:"answers"`
	Size      string         `json:"size"`
	Spoonfuls int            `json:"spoonfuls"`
	UserNote  string         `json:"user_note"`
	LoggedAt  *time.Time     `json:"logged_at"`
}

// planRequest is the body for POST /api/plan/suggest. Restrictions and mode
// come from the profile.
type planRequest struct {
	Preferences []string `json:"preferences"`
	MealsLeft   int      `json:"meals_left"`
	TasteMode   string   `json:"taste_mode"`
}

// estimateRequest is the body for POST /api/estimate.
type estimateRequest struct {
	Category  string  `json:"category"`
	Count     float64 `json:"count"`
	Small     bool    `json:"small"`
	Remaining int     `json:"remaining"`
	Mode      string  `json:"points_mode"`
	Penalty   int     `json:"penalty"`
}
