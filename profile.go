package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/palm-points-api/points"
)

// loadProfile returns the user's profile, or the default profile when the
// user hasn't onboarded yet.
func (h *Handler) loadProfile(ctx context.Context, q querier, userID int) (profile, error) {
	p, err := queryOne[profile](q, ctx,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultProfile(userID), nil
	}
	return p, err
}

// refreshDailyPoints recomputes daily_points from the stored biometrics and
// persists it when it changed. Profiles without full biometrics keep their
// current value.
func refreshDailyPoints(ctx context.Context, q querier, p profile) (profile, error) {
	bio, ok := p.biometrics()
	if !ok {
		return p, nil
	}
	dp := points.DailyPoints(bio)
	if dp == p.DailyPoints {
		return p, nil
	}
	return queryOne[profile](q, ctx,
		"UPDATE profiles SET daily_points = @dailyPoints, updated_at = now() WHERE user_id = @userID RETURNING *",
		pgx.NamedArgs{"dailyPoints": dp, "userID": p.UserID})
}

// getProfile returns the authenticated user's profile.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// upsertProfile saves the onboarding form. Body fields not provided fall back
// to the onboarding defaults (moderate activity, lose_steady, 08:00–20:00).
// POST /api/profile.
func (h *Handler) upsertProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Gender == nil || body.Age == nil || body.HeightCM == nil || body.WeightKG == nil {
		apiError(c, http.StatusBadRequest, "gender, age, height_cm and weight_kg are required")
		return
	}
	withOnboardingDefaults(&body)
	if msg := validateProfileRequest(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	cols, args := profileColumns(body)
	args["userID"] = userID
	args["dailyPoints"] = points.DailyPoints(requestBiometrics(body))

	placeholders := make([]string, len(cols))
	updates := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = "@" + col
		updates[i] = col + " = EXCLUDED." + col
	}
	query := "INSERT INTO profiles (user_id, daily_points, setup_complete, " + strings.Join(cols, ", ") + ")" +
		" VALUES (@userID, @dailyPoints, true, " + strings.Join(placeholders, ", ") + ")" +
		" ON CONFLICT (user_id) DO UPDATE SET daily_points = EXCLUDED.daily_points, setup_complete = true, " +
		strings.Join(updates, ", ") + ", updated_at = now() RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero. daily_points is recomputed afterwards whenever the
// stored biometrics are complete.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfileRequest(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	cols, args := profileColumns(body)
	if len(cols) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}
	args["userID"] = userID

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := make([]string, len(cols))
	for i, col := range cols {
		setClauses[i] = col + " = @" + col
	}
	query := "UPDATE profiles SET " + strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found, complete onboarding first")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	if updated, err := refreshDailyPoints(c, h.db, p); err != nil {
		log.Printf("[patchProfile] daily points update failed for user %d: %v", userID, err)
	} else {
		p = updated
	}

	c.JSON(http.StatusOK, p)
}

/* ─── Request helpers ────────────────────────────────────────────────── */

func withOnboardingDefaults(b *profileRequest) {
	def := defaultProfile(0)
	if b.ActivityLevel == nil {
		b.ActivityLevel = &def.ActivityLevel
	}
	if b.Goal == nil {
		b.Goal = &def.Goal
	}
	if b.EatingWindowStart == nil {
		s := def.EatingWindowStart.String()
		b.EatingWindowStart = &s
	}
	if b.EatingWindowEnd == nil {
		e := def.EatingWindowEnd.String()
		b.EatingWindowEnd = &e
	}
	if b.PointsMode == nil {
		b.PointsMode = &def.PointsMode
	}
}

// requestBiometrics assumes the four body fields are set.
func requestBiometrics(b profileRequest) points.Profile {
	return points.Profile{
		Gender:   points.Gender(*b.Gender),
		Age:      *b.Age,
		HeightCM: *b.HeightCM,
		WeightKG: *b.WeightKG,
		Activity: points.ActivityLevel(*b.ActivityLevel),
		Goal:     points.Goal(*b.Goal),
	}
}

// validateProfileRequest checks every provided field and returns an error
// message, or "" when the request is valid.
func validateProfileRequest(b profileRequest) string {
	if b.Gender != nil && *b.Gender != string(points.Male) && *b.Gender != string(points.Female) {
		return "gender must be one of: male, female"
	}
	if b.Age != nil && (*b.Age < 13 || *b.Age > 120) {
		return "age must be between 13 and 120"
	}
	if b.HeightCM != nil && (*b.HeightCM < 50 || *b.HeightCM > 272) {
		return "height_cm must be between 50 and 272"
	}
	if b.WeightKG != nil && (*b.WeightKG < 20 || *b.WeightKG > 500) {
		return "weight_kg must be between 20 and 500"
	}
	// An unknown level would silently fall back to moderate in every future
	// budget calculation.
	if b.ActivityLevel != nil {
		if _, ok := points.ActivityFactor(points.ActivityLevel(*b.ActivityLevel)); !ok {
			return "activity_level must be one of: sedentary, light, moderate, active"
		}
	}
	if b.Goal != nil && !points.ValidGoal(points.Goal(*b.Goal)) {
		return "goal must be one of: lose_fast, lose_steady, maintain"
	}
	if b.EatingWindowStart != nil {
		if _, ok := points.ParseClock(*b.EatingWindowStart); !ok {
			return "invalid eating_window_start, expected HH:MM"
		}
	}
	if b.EatingWindowEnd != nil {
		if _, ok := points.ParseClock(*b.EatingWindowEnd); !ok {
			return "invalid eating_window_end, expected HH:MM"
		}
	}
	if b.PhysiqueGoal != nil && *b.PhysiqueGoal != "" {
		if _, ok := points.LookupPhysiqueGoal(*b.PhysiqueGoal); !ok {
			return "physique_goal must be one of: build_muscle, lose_fat, recomp, maintain"
		}
	}
	for _, r := range b.DietaryRestrictions {
		if !points.ValidRestriction(r) {
			return "unknown dietary restriction: " + r
		}
	}
	if b.PointsMode != nil && *b.PointsMode != string(points.ModeHybrid) && *b.PointsMode != string(points.ModeCalorie) {
		return "points_mode must be one of: hybrid, calorie"
	}
	return ""
}

// profileColumns maps the provided fields to column names with matching
// named args. Time bounds are normalised to HH:MM:00; an empty physique goal
// clears it.
func profileColumns(b profileRequest) ([]string, pgx.NamedArgs) {
	cols := []string{}
	args := pgx.NamedArgs{}
	set := func(col string, v any) {
		cols = append(cols, col)
		args[col] = v
	}

	if b.Gender != nil {
		set("gender", *b.Gender)
	}
	if b.Age != nil {
		set("age", *b.Age)
	}
	if b.HeightCM != nil {
		set("height_cm", *b.HeightCM)
	}
	if b.WeightKG != nil {
		set("weight_kg", *b.WeightKG)
	}
	if b.ActivityLevel != nil {
		set("activity_level", *b.ActivityLevel)
	}
	if b.Goal != nil {
		set("goal", *b.Goal)
	}
	if b.EatingWindowEnabled != nil {
		set("eating_window_enabled", *b.EatingWindowEnabled)
	}
	if b.EatingWindowStart != nil {
		m, _ := points.ParseClock(*b.EatingWindowStart)
		set("eating_window_start", newClockTime(m).String())
	}
	if b.EatingWindowEnd != nil {
		m, _ := points.ParseClock(*b.EatingWindowEnd)
		set("eating_window_end", newClockTime(m).String())
	}
	if b.MacrosEnabled != nil {
		set("macros_enabled", *b.MacrosEnabled)
	}
	if b.PhysiqueGoal != nil {
		if *b.PhysiqueGoal == "" {
			set("physique_goal", nil)
		} else {
			set("physique_goal", *b.PhysiqueGoal)
		}
	}
	if b.DietaryRestrictions != nil {
		set("dietary_restrictions", b.DietaryRestrictions)
	}
	if b.PointsMode != nil {
		set("points_mode", *b.PointsMode)
	}
	return cols, args
}
