package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lg/palm-points-api/points"
)

// newServer builds the MCP server with every engine tool registered.
func newServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "points-mcp",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "daily_points",
		Description: "Compute BMR, TDEE and the daily points allowance from body stats, activity level and goal",
	}, dailyPoints)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "category_cost",
		Description: "Price a pick of a food category in palms (or spoonfuls/sips when small), with an optional eating-window penalty",
	}, categoryCost)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "window_penalty",
		Description: "Return the eating-window multiplier (1, 2 or 3) for a wall-clock time against a window",
	}, windowPenalty)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "standard_meal_cost",
		Description: "Price one of the quick-log standard meals at a size",
	}, standardMealCost)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "rated_meal_cost",
		Description: "Price a meal from a 1-5 health rating or the guided questionnaire answers",
	}, ratedMealCost)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "macro_targets",
		Description: "Split a daily points allowance into protein/carbs/fat/fiber targets for a physique goal",
	}, macroTargets)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "aggregate_macros",
		Description: "Attribute logged points across macros and total them",
	}, aggregateMacros)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "suggest_meals",
		Description: "Suggest meals for the rest of the day within the remaining points",
	}, suggestMeals)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the food categories with their per-palm cost and tier for a points mode",
	}, listCategories)

	return srv
}

// --- Input types ---

type DailyPointsInput struct {
	Gender        string  `json:"gender" jsonschema:"male or female"`
	Age           int     `json:"age" jsonschema:"Age in years"`
	HeightCM      float64 `json:"height_cm" jsonschema:"Height in centimetres"`
	WeightKG      float64 `json:"weight_kg" jsonschema:"Weight in kilograms"`
	ActivityLevel string  `json:"activity_level,omitempty" jsonschema:"sedentary, light, moderate (default) or active"`
	Goal          string  `json:"goal,omitempty" jsonschema:"lose_fast, lose_steady (default) or maintain"`
}

type CategoryCostInput struct {
	Category   string  `json:"category" jsonschema:"Category key, e.g. lean-protein"`
	Count      float64 `json:"count" jsonschema:"Number of palms, or spoonfuls/sips when small"`
	Small      bool    `json:"small,omitempty" jsonschema:"Count spoonfuls (sips for drinks) instead of palms"`
	PointsMode string  `json:"points_mode,omitempty" jsonschema:"hybrid (default) or calorie"`
	Penalty    int     `json:"penalty,omitempty" jsonschema:"Eating-window multiplier 1-3 (default 1)"`
}

type WindowPenaltyInput struct {
	Start string `json:"start" jsonschema:"Window start, HH:MM"`
	End   string `json:"end" jsonschema:"Window end, HH:MM"`
	Time  string `json:"time" jsonschema:"Time the food is eaten, HH:MM"`
}

type StandardMealCostInput struct {
	Meal       string `json:"meal" jsonschema:"Standard meal key, e.g. meat_veg"`
	Size       string `json:"size,omitempty" jsonschema:"small, medium (default) or large"`
	PointsMode string `json:"points_mode,omitempty" jsonschema:"hybrid (default) or calorie"`
	Penalty    int    `json:"penalty,omitempty" jsonschema:"Eating-window multiplier 1-3 (default 1)"`
}

type RatedMealCostInput struct {
	Rating    int             `json:"rating,omitempty" jsonschema:"Health rating 1 (very unhealthy) to 5 (very healthy)"`
	Answers   map[string]bool `json:"answers,omitempty" jsonschema:"Guided answers keyed by question id; used instead of rating when given"`
	Size      string          `json:"size,omitempty" jsonschema:"taste, small, medium (default) or large"`
	Spoonfuls int             `json:"spoonfuls,omitempty" jsonschema:"Spoonfuls for a taste, 1-5"`
	Penalty   int             `json:"penalty,omitempty" jsonschema:"Eating-window multiplier 1-3 (default 1)"`
}

type MacroTargetsInput struct {
	DailyPoints  int    `json:"daily_points" jsonschema:"Daily points allowance"`
	PhysiqueGoal string `json:"physique_goal" jsonschema:"build_muscle, lose_fat, recomp or maintain"`
}

type LoggedPoints struct {
	Category string `json:"category" jsonschema:"Category key or rated_meal/standard_meal"`
	Points   int    `json:"points" jsonschema:"Points the entry was logged at"`
}

type AggregateMacrosInput struct {
	Entries []LoggedPoints `json:"entries" jsonschema:"Logged entries to total"`
}

type SuggestMealsInput struct {
	RemainingPoints     int      `json:"remaining_points" jsonschema:"Points left today"`
	MealsLeft           int      `json:"meals_left" jsonschema:"Meals still to eat today"`
	Preferences         []string `json:"preferences,omitempty" jsonschema:"Preference tags: high_protein, light, sweet, filling, energy, healthy"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty" jsonschema:"Restrictions: gluten_free, dairy_free, nut_free, vegetarian, sugar_free"`
	TasteMode           string   `json:"taste_mode,omitempty" jsonschema:"balanced (default), healthier or yummier"`
	PointsMode          string   `json:"points_mode,omitempty" jsonschema:"hybrid (default) or calorie"`
}

type ListCategoriesInput struct {
	PointsMode string `json:"points_mode,omitempty" jsonschema:"hybrid (default) or calorie"`
}

// --- Handlers ---

func dailyPoints(_ context.Context, _ *mcp.CallToolRequest, input DailyPointsInput) (*mcp.CallToolResult, any, error) {
	if input.Gender != string(points.Male) && input.Gender != string(points.Female) {
		return toolError("gender must be male or female"), nil, nil
	}
	if input.Age <= 0 || input.HeightCM <= 0 || input.WeightKG <= 0 {
		return toolError("age, height_cm and weight_kg must be positive"), nil, nil
	}
	if input.ActivityLevel == "" {
		input.ActivityLevel = string(points.Moderate)
	}
	if _, ok := points.ActivityFactor(points.ActivityLevel(input.ActivityLevel)); !ok {
		return toolError("Unknown activity_level: %s", input.ActivityLevel), nil, nil
	}
	if input.Goal == "" {
		input.Goal = string(points.LoseSteady)
	}
	if !points.ValidGoal(points.Goal(input.Goal)) {
		return toolError("Unknown goal: %s", input.Goal), nil, nil
	}

	p := points.Profile{
		Gender:   points.Gender(input.Gender),
		Age:      input.Age,
		HeightCM: input.HeightCM,
		WeightKG: input.WeightKG,
		Activity: points.ActivityLevel(input.ActivityLevel),
		Goal:     points.Goal(input.Goal),
	}
	return toolJSON(map[string]any{
		"bmr":          points.BMR(p),
		"tdee":         points.TDEE(p),
		"daily_points": points.DailyPoints(p),
	})
}

func categoryCost(_ context.Context, _ *mcp.CallToolRequest, input CategoryCostInput) (*mcp.CallToolResult, any, error) {
	if _, ok := points.LookupCategory(input.Category, points.ModeHybrid); !ok {
		return toolError("Unknown category: %s", input.Category), nil, nil
	}
	if input.Count <= 0 {
		return toolError("count must be positive"), nil, nil
	}
	penalty, err := penaltyOrDefault(input.Penalty)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	unit := points.UnitFor(input.Category, input.Small)
	return toolJSON(map[string]any{
		"category": input.Category,
		"unit":     unit,
		"servings": points.PalmEquivalent(input.Count, unit),
		"points":   points.PickCost(input.Category, input.Count, unit, points.ParseMode(input.PointsMode), penalty),
	})
}

func windowPenalty(_ context.Context, _ *mcp.CallToolRequest, input WindowPenaltyInput) (*mcp.CallToolResult, any, error) {
	w, ok := points.NewEatingWindow(input.Start, input.End)
	if !ok {
		return toolError("start and end must be HH:MM"), nil, nil
	}
	mins, ok := points.ParseClock(input.Time)
	if !ok {
		return toolError("time must be HH:MM"), nil, nil
	}
	at := time.Date(2000, 1, 1, mins/60, mins%60, 0, 0, time.UTC)
	return toolJSON(map[string]any{"penalty": points.WindowPenalty(at, w)})
}

func standardMealCost(_ context.Context, _ *mcp.CallToolRequest, input StandardMealCostInput) (*mcp.CallToolResult, any, error) {
	meal, ok := points.LookupStandardMeal(input.Meal)
	if !ok {
		return toolError("Unknown meal: %s", input.Meal), nil, nil
	}
	if input.Size == "" {
		input.Size = string(points.SizeMedium)
	}
	size := points.Size(input.Size)
	if !points.ValidSize(size) || size == points.SizeTaste {
		return toolError("size must be small, medium or large"), nil, nil
	}
	penalty, err := penaltyOrDefault(input.Penalty)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	cost := points.StandardMealCost(meal.Items, points.SizeMultiplier(size, 0), points.ParseMode(input.PointsMode))
	return toolJSON(map[string]any{
		"meal":   meal.Name,
		"size":   size,
		"points": points.ApplyPenalty(cost, penalty),
	})
}

func ratedMealCost(_ context.Context, _ *mcp.CallToolRequest, input RatedMealCostInput) (*mcp.CallToolResult, any, error) {
	in := points.RatedInput{Rating: input.Rating}
	if len(input.Answers) > 0 {
		in.Answers = points.Answers(input.Answers)
		if !in.Answers.Complete() {
			return toolError("answers must cover every guided question"), nil, nil
		}
	} else if _, ok := points.LookupRating(input.Rating); !ok {
		return toolError("rating must be 1-5, or provide answers"), nil, nil
	}
	if input.Size == "" {
		input.Size = string(points.SizeMedium)
	}
	size := points.Size(input.Size)
	if !points.ValidSize(size) {
		return toolError("Unknown size: %s", input.Size), nil, nil
	}
	if size == points.SizeTaste && (input.Spoonfuls < 1 || input.Spoonfuls > 5) {
		return toolError("spoonfuls must be 1-5 for a taste"), nil, nil
	}
	penalty, err := penaltyOrDefault(input.Penalty)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	return toolJSON(map[string]any{
		"label":  points.RatedAutoLabel(in, size, input.Spoonfuls),
		"points": points.RatedMealCost(in, points.SizeMultiplier(size, input.Spoonfuls), penalty),
	})
}

func macroTargets(_ context.Context, _ *mcp.CallToolRequest, input MacroTargetsInput) (*mcp.CallToolResult, any, error) {
	targets, ok := points.MacroTargets(input.DailyPoints, input.PhysiqueGoal)
	if !ok {
		return toolError("Unknown physique_goal: %s", input.PhysiqueGoal), nil, nil
	}
	return toolJSON(targets)
}

func aggregateMacros(_ context.Context, _ *mcp.CallToolRequest, input AggregateMacrosInput) (*mcp.CallToolResult, any, error) {
	logs := make([]points.FoodLogEntry, len(input.Entries))
	for i, e := range input.Entries {
		logs[i] = points.FoodLogEntry{Category: e.Category, Points: e.Points}
	}
	return toolJSON(points.AggregateMacros(logs))
}

func suggestMeals(_ context.Context, _ *mcp.CallToolRequest, input SuggestMealsInput) (*mcp.CallToolResult, any, error) {
	for _, r := range input.DietaryRestrictions {
		if !points.ValidRestriction(r) {
			return toolError("Unknown dietary restriction: %s", r), nil, nil
		}
	}
	prefs := make([]points.PreferenceTag, len(input.Preferences))
	for i, p := range input.Preferences {
		prefs[i] = points.PreferenceTag(p)
	}

	return toolJSON(points.SuggestMeals(points.SuggestRequest{
		RemainingPoints: input.RemainingPoints,
		Preferences:     prefs,
		MealsLeft:       input.MealsLeft,
		Restrictions:    input.DietaryRestrictions,
		Taste:           points.ParseTasteMode(input.TasteMode),
		Mode:            points.ParseMode(input.PointsMode),
	}))
}

func listCategories(_ context.Context, _ *mcp.CallToolRequest, input ListCategoriesInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(points.Categories(points.ParseMode(input.PointsMode)))
}

// --- Helpers ---

func penaltyOrDefault(p int) (int, error) {
	if p == 0 {
		return points.PenaltyNone, nil
	}
	if p < points.PenaltyNone || p > points.PenaltyFar {
		return 0, fmt.Errorf("penalty must be 1-3, got %d", p)
	}
	return p, nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
