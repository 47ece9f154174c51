package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/palm-points-api/points"
)

const maxMealsLeft = 6

/* ─── Catalog ────────────────────────────────────────────────────────── */

// standardMealView is a standard meal with its medium-size cost for a mode.
type standardMealView struct {
	points.StandardMealDef
	Points int `json:"points"`
}

// templateView is a meal template with its cost for a mode.
type templateView struct {
	points.MealTemplate
	Points int `json:"points"`
}

// catalog is everything a client needs to render the pickers.
type catalog struct {
	Mode               points.Mode               `json:"points_mode"`
	Categories         []points.Category         `json:"categories"`
	StandardMeals      []standardMealView        `json:"standard_meals"`
	Templates          []templateView            `json:"templates"`
	Restrictions       []points.Restriction      `json:"dietary_restrictions"`
	Preferences        []points.PreferenceOption `json:"preferences"`
	PhysiqueGoals      []points.PhysiqueGoal     `json:"physique_goals"`
	Goals              []points.GoalDef          `json:"goals"`
	Ratings            []points.HealthRating     `json:"ratings"`
	Questions          []points.Question         `json:"questions"`
	Sizes              []points.Size             `json:"sizes"`
	DefaultDailyPoints int                       `json:"default_daily_points"`
	KcalPerPoint       int                       `json:"kcal_per_point"`
}

func buildCatalog(mode points.Mode) catalog {
	meals := points.StandardMeals()
	mealViews := make([]standardMealView, len(meals))
	for i, m := range meals {
		mealViews[i] = standardMealView{StandardMealDef: m, Points: points.StandardMealCost(m.Items, 1, mode)}
	}
	templates := points.MealTemplates()
	templateViews := make([]templateView, len(templates))
	for i, t := range templates {
		templateViews[i] = templateView{MealTemplate: t, Points: points.TemplateCost(t, mode)}
	}

	return catalog{
		Mode:               mode,
		Categories:         points.Categories(mode),
		StandardMeals:      mealViews,
		Templates:          templateViews,
		Restrictions:       points.Restrictions(),
		Preferences:        points.PreferenceOptions(),
		PhysiqueGoals:      points.PhysiqueGoals(),
		Goals:              points.Goals(),
		Ratings:            points.HealthRatings(),
		Questions:          points.HealthQuestions(),
		Sizes:              []points.Size{points.SizeTaste, points.SizeSmall, points.SizeMedium, points.SizeLarge},
		DefaultDailyPoints: points.DefaultDailyPoints,
		KcalPerPoint:       points.KcalPerPoint,
	}
}

// getCatalog returns the static tables priced for a mode.
// GET /api/catalog?mode=hybrid|calorie (defaults to hybrid).
func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, buildCatalog(points.ParseMode(c.Query("mode"))))
}

/* ─── Estimate ───────────────────────────────────────────────────────── */

// estimateResponse answers "can I eat this?" for a pick.
type estimateResponse struct {
	Category string      `json:"category"`
	Unit     points.Unit `json:"unit"`
	Servings float64     `json:"servings"`
	points.Affordability
}

// estimatePick prices a pick without logging it.
// POST /api/estimate. Body: { category, count, small?, remaining, points_mode?, penalty? }.
func (h *Handler) estimatePick(c *gin.Context) {
	var body estimateRequest
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
	if body.Penalty == 0 {
		body.Penalty = points.PenaltyNone
	}
	if body.Penalty < points.PenaltyNone || body.Penalty > points.PenaltyFar {
		apiError(c, http.StatusBadRequest, "penalty must be between 1 and 3")
		return
	}

	unit := points.UnitFor(body.Category, body.Small)
	cost := points.PickCost(body.Category, body.Count, unit, points.ParseMode(body.Mode), body.Penalty)
	c.JSON(http.StatusOK, estimateResponse{
		Category:      body.Category,
		Unit:          unit,
		Servings:      points.PalmEquivalent(body.Count, unit),
		Affordability: points.Afford(body.Remaining, cost),
	})
}

/* ─── Plan ───────────────────────────────────────────────────────────── */

// planResponse wraps the suggested slots with the budget they were built from.
type planResponse struct {
	RemainingPoints int           `json:"remaining_points"`
	Slots           []points.Slot `json:"slots"`
}

// suggestPlan suggests meals for the rest of today.
// POST /api/plan/suggest. Body: { preferences?, meals_left, taste_mode? }.
// Restrictions and points mode come from the profile; remaining points are
// computed from today's entries.
func (h *Handler) suggestPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body planRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MealsLeft < 1 || body.MealsLeft > maxMealsLeft {
		apiError(c, http.StatusBadRequest, "meals_left must be between 1 and 6")
		return
	}
	prefs, msg := parsePreferences(body.Preferences)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	p, err := h.loadProfile(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	start, end := h.dayOf(h.clock())
	logs, err := logsBetween(c, h.db, userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}

	remaining := points.Remaining(p.DailyPoints, entries(logs))
	slots := points.SuggestMeals(points.SuggestRequest{
		RemainingPoints: remaining,
		Preferences:     prefs,
		MealsLeft:       body.MealsLeft,
		Restrictions:    p.DietaryRestrictions,
		Taste:           points.ParseTasteMode(body.TasteMode),
		Mode:            p.mode(),
	})

	c.JSON(http.StatusOK, planResponse{RemainingPoints: remaining, Slots: slots})
}

// parsePreferences validates preference keys against the known options.
func parsePreferences(keys []string) ([]points.PreferenceTag, string) {
	known := map[points.PreferenceTag]bool{}
	for _, o := range points.PreferenceOptions() {
		known[o.Key] = true
	}
	tags := make([]points.PreferenceTag, 0, len(keys))
	for _, k := range keys {
		tag := points.PreferenceTag(k)
		if !known[tag] {
			return nil, "unknown preference: " + k
		}
		tags = append(tags, tag)
	}
	return tags, ""
}
