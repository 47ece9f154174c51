package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lg/palm-points-api/points"
)

const (
	maxServings    = 50
	maxHistoryDays = 366
	maxSpoonfuls   = 5
)

/* ─── Helpers ────────────────────────────────────────────────────────── */

// loggedAt resolves an optional client timestamp to the handler's zone,
// defaulting to now. The eating window is judged on this wall clock.
func (h *Handler) loggedAt(t *time.Time) time.Time {
	if t == nil {
		return h.clock()
	}
	return t.In(h.location())
}

// dayBounds returns [start, end) for a YYYY-MM-DD date in the handler's zone.
func (h *Handler) dayBounds(date string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", date, h.location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// dayOf returns [start, end) of the calendar day containing t in the
// handler's zone.
func (h *Handler) dayOf(t time.Time) (time.Time, time.Time) {
	t = t.In(h.location())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, h.location())
	return start, start.AddDate(0, 0, 1)
}

// logsBetween fetches the user's entries with logged_at in [start, end).
func logsBetween(ctx context.Context, q querier, userID int, start, end time.Time) ([]foodLog, error) {
	logs, err := queryMany[foodLog](q, ctx,
		`SELECT * FROM food_logs
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at < @end
		 ORDER BY logged_at, created_at`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if logs == nil {
		logs = []foodLog{}
	}
	return logs, err
}

func entries(logs []foodLog) []points.FoodLogEntry {
	out := make([]points.FoodLogEntry, len(logs))
	for i, l := range logs {
		out[i] = l.entry()
	}
	return out
}

// insertFoodLog stores a priced entry. The id is generated here so callers
// never depend on database defaults.
func (h *Handler) insertFoodLog(c *gin.Context, userID int, e points.FoodLogEntry) (foodLog, error) {
	return queryOne[foodLog](h.db, c,
		`INSERT INTO food_logs (id, user_id, category, servings, points, logged_at, auto_label, user_note, size_tag)
		 VALUES (@id, @userID, @category, @servings, @points, @loggedAt, @autoLabel, @userNote, @sizeTag)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.New().String(), "userID": userID,
			"category": e.Category, "servings": e.Servings, "points": e.Points,
			"loggedAt": e.LoggedAt, "autoLabel": e.Note.AutoLabel,
			"userNote": strings.TrimSpace(e.Note.UserNote), "sizeTag": e.Note.SizeTag,
		})
}

// pricingContext loads what every create handler needs: the profile (for mode
// and window) and the window penalty at the given time.
func (h *Handler) pricingContext(c *gin.Context, userID int, at time.Time) (profile, int, error) {
	p, err := h.loadProfile(c, h.db, userID)
	if err != nil {
		return profile{}, 0, err
	}
	return p, points.WindowPenalty(at, p.window()), nil
}

/* ─── Daily view ─────────────────────────────────────────────────────── */

// getDailyLog returns a day's entries with display lines and computed totals.
// GET /api/food-log/daily?date=YYYY-MM-DD (defaults to today in APP_TIMEZONE).
func (h *Handler) getDailyLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", h.clock().Format("2006-01-02"))

	start, end, err := h.dayBounds(date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, err := h.loadProfile(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	logs, err := logsBetween(c, h.db, userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}

	c.JSON(http.StatusOK, buildDailyLog(date, p, logs))
}

// buildDailyLog assembles the daily response from stored rows.
func buildDailyLog(date string, p profile, logs []foodLog) dailyLog {
	es := entries(logs)
	views := make([]foodLogView, len(logs))
	for i, l := range logs {
		views[i] = newFoodLogView(l)
	}

	used := points.UsedPoints(es)
	remaining := points.Remaining(p.DailyPoints, es)
	day := dailyLog{
		Date:            date,
		DailyPoints:     p.DailyPoints,
		UsedPoints:      used,
		RemainingPoints: remaining,
		PointsColor:     PointsColor(remaining, p.DailyPoints),
		Macros:          points.AggregateMacros(es),
		PointsMode:      p.mode(),
		Entries:         views,
		Profile:         p,
	}
	if targets, ok := points.MacroTargets(p.DailyPoints, p.physiqueKey()); ok {
		day.MacroTargets = &targets
	}
	return day
}

/* ─── Logging ────────────────────────────────────────────────────────── */

// logPick logs palms (or spoonfuls/sips) of one category.
// POST /api/food-log/pick.
func (h *Handler) logPick(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body pickRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := points.LookupCategory(body.Category, points.ModeHybrid); !ok {
		apiError(c, http.StatusBadRequest, "unknown category: "+body.Category)
		return
	}
	if body.Count <= 0 || body.Count > maxServings {
		apiError(c, http.StatusBadRequest, "count must be greater than 0 and at most 50")
		return
	}

	at := h.loggedAt(body.LoggedAt)
	p, penalty, err := h.pricingContext(c, userID, at)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	unit := points.UnitFor(body.Category, body.Small)
	e := points.FoodLogEntry{
		Category: body.Category,
		Servings: points.PalmEquivalent(body.Count, unit),
		Points:   points.PickCost(body.Category, body.Count, unit, p.mode(), penalty),
		LoggedAt: at,
		Note:     points.Note{UserNote: body.UserNote},
	}
	if unit.IsSmall() {
		e.Note.SizeTag = string(unit)
	}

	row, err := h.insertFoodLog(c, userID, e)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log entry")
		return
	}

	c.JSON(http.StatusCreated, newFoodLogView(row))
}

// logStandardMeal logs one of the quick-log meals at a size.
// POST /api/food-log/standard.
func (h *Handler) logStandardMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body standardMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	meal, ok := points.LookupStandardMeal(body.Meal)
	if !ok {
		apiError(c, http.StatusBadRequest, "unknown meal: "+body.Meal)
		return
	}
	if body.Size == "" {
		body.Size = string(points.SizeMedium)
	}
	size := points.Size(body.Size)
	if !points.ValidSize(size) || size == points.SizeTaste {
		apiError(c, http.StatusBadRequest, "size must be one of: small, medium, large")
		return
	}

	at := h.loggedAt(body.LoggedAt)
	p, penalty, err := h.pricingContext(c, userID, at)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	mult := points.SizeMultiplier(size, 0)
	e := points.FoodLogEntry{
		Category: points.StandardMeal,
		Servings: mult,
		Points:   points.ApplyPenalty(points.StandardMealCost(meal.Items, mult, p.mode()), penalty),
		LoggedAt: at,
		Note:     points.Note{AutoLabel: meal.Name, UserNote: body.UserNote, SizeTag: body.Size},
	}

	row, err := h.insertFoodLog(c, userID, e)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log entry")
		return
	}

	c.JSON(http.StatusCreated, newFoodLogView(row))
}

// logRatedMeal logs a meal priced by health rating or the guided questions.
// POST /api/food-log/rated.
func (h *Handler) logRatedMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body ratedMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	in := points.RatedInput{Rating: body.Rating, Answers: body.Answers}
	if msg := validateRated(in, &body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	at := h.loggedAt(body.LoggedAt)
	_, penalty, err := h.pricingContext(c, userID, at)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	size := points.Size(body.Size)
	e := points.FoodLogEntry{
		Category: points.RatedMeal,
		Servings: 1,
		Points:   points.RatedMealCost(in, points.SizeMultiplier(size, body.Spoonfuls), penalty),
		LoggedAt: at,
		Note: points.Note{
			AutoLabel: points.RatedAutoLabel(in, size, body.Spoonfuls),
			UserNote:  body.UserNote,
			SizeTag:   body.Size,
		},
	}

	row, err := h.insertFoodLog(c, userID, e)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log entry")
		return
	}

	c.JSON(http.StatusCreated, newFoodLogView(row))
}

// validateRated checks a rated-meal body and fills in the default size.
func validateRated(in points.RatedInput, body *ratedMealRequest) string {
	if in.Guided() {
		if !in.Answers.Complete() {
			return "answers must cover every guided question"
		}
	} else if _, ok := points.LookupRating(in.Rating); !ok {
		return "rating must be between 1 and 5, or provide answers"
	}
	if body.Size == "" {
		body.Size = string(points.SizeMedium)
	}
	if !points.ValidSize(points.Size(body.Size)) {
		return "size must be one of: taste, small, medium, large"
	}
	if points.Size(body.Size) == points.SizeTaste && (body.Spoonfuls < 1 || body.Spoonfuls > maxSpoonfuls) {
		return "spoonfuls must be between 1 and 5 for a taste"
	}
	return ""
}

/* ─── Edit / delete ──────────────────────────────────────────────────── */

// updateFoodLog edits servings, note or points of an entry. A servings change
// on a category pick re-derives points at the entry's own logged_at; an
// explicit points value overrides.
// PUT /api/food-log/:id.
func (h *Handler) updateFoodLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	var body points.Edit
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Servings != nil && (*body.Servings <= 0 || *body.Servings > maxServings) {
		apiError(c, http.StatusBadRequest, "servings must be greater than 0 and at most 50")
		return
	}
	if body.Servings == nil && body.Points == nil && body.UserNote == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	args := pgx.NamedArgs{"id": id.String(), "userID": userID}
	row, err := queryOne[foodLog](h.db, c,
		"SELECT * FROM food_logs WHERE id = @id AND user_id = @userID", args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch entry")
		}
		return
	}

	p, penalty, err := h.pricingContext(c, userID, row.LoggedAt.In(h.location()))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	edited := points.ApplyEdit(row.entry(), body, p.mode(), penalty)

	args["servings"] = edited.Servings
	args["points"] = edited.Points
	args["userNote"] = strings.TrimSpace(edited.Note.UserNote)
	row, err = queryOne[foodLog](h.db, c,
		`UPDATE food_logs SET servings = @servings, points = @points, user_note = @userNote, updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update entry")
		return
	}

	c.JSON(http.StatusOK, newFoodLogView(row))
}

// deleteFoodLog removes an entry. Returns 204 on success.
// DELETE /api/food-log/:id.
func (h *Handler) deleteFoodLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM food_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id.String(), "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}

/* ─── History ────────────────────────────────────────────────────────── */

// getHistory returns gap-filled per-day totals and summary stats for a range.
// GET /api/food-log/history?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getHistory(c *gin.Context) {
	userID := c.GetInt("user_id")

	start, days, msg := h.parseRange(c.Query("start"), c.Query("end"))
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	p, err := h.loadProfile(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	logs, err := logsBetween(c, h.db, userID, start, start.AddDate(0, 0, days))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}

	totals := points.DailyTotals(entries(logs), start, days, h.location())
	c.JSON(http.StatusOK, historyResponse{
		DailyPoints: p.DailyPoints,
		Days:        totals,
		Stats:       points.SummarizeHistory(totals, p.DailyPoints),
	})
}

// parseRange validates an inclusive YYYY-MM-DD range and returns its first
// day and length, or an error message.
func (h *Handler) parseRange(startStr, endStr string) (time.Time, int, string) {
	if startStr == "" || endStr == "" {
		return time.Time{}, 0, "start and end query params are required"
	}
	start, _, err := h.dayBounds(startStr)
	if err != nil {
		return time.Time{}, 0, "invalid start, expected YYYY-MM-DD"
	}
	_, end, err := h.dayBounds(endStr)
	if err != nil {
		return time.Time{}, 0, "invalid end, expected YYYY-MM-DD"
	}
	if !end.After(start) {
		return time.Time{}, 0, "start must not be after end"
	}
	days := int(math.Round(end.Sub(start).Hours() / 24))
	if days > maxHistoryDays {
		return time.Time{}, 0, "range must not exceed 366 days"
	}
	return start, days, ""
}
