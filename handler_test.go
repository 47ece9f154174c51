package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"lg/palm-points-api/points"
)

// setupHandlerTest registers routes that reject bad input before touching the
// database, with a dummy user_id in place of the auth middleware.
func setupHandlerTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.GET("/api/catalog", h.getCatalog)
	router.POST("/api/estimate", h.estimatePick)

	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	api.POST("/profile", h.upsertProfile)
	api.PATCH("/profile", h.patchProfile)
	api.POST("/food-log/pick", h.logPick)
	api.POST("/food-log/standard", h.logStandardMeal)
	api.POST("/food-log/rated", h.logRatedMeal)
	api.PUT("/food-log/:id", h.updateFoodLog)
	api.DELETE("/food-log/:id", h.deleteFoodLog)
	api.GET("/food-log/history", h.getHistory)
	api.GET("/food-log/daily", h.getDailyLog)
	api.POST("/plan/suggest", h.suggestPlan)
	api.POST("/weight-log", h.upsertWeightEntry)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return resp["error"]
}

/* ─── Catalog / estimate ─────────────────────────────────────────────── */

func TestGetCatalog_PricesForMode(t *testing.T) {
	router := setupHandlerTest()

	w := doRequest(router, "GET", "/api/catalog?mode=calorie", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp catalog
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Mode != points.ModeCalorie {
		t.Errorf("expected mode calorie, got %s", resp.Mode)
	}
	if len(resp.Categories) != 12 {
		t.Errorf("expected 12 categories, got %d", len(resp.Categories))
	}
	for _, cat := range resp.Categories {
		if cat.Key == "vegetables" && cat.Points != 1 {
			t.Errorf("expected vegetables to cost 1 in calorie mode, got %d", cat.Points)
		}
	}
	if len(resp.StandardMeals) != 16 {
		t.Errorf("expected 16 standard meals, got %d", len(resp.StandardMeals))
	}
	if resp.DefaultDailyPoints != 40 {
		t.Errorf("expected default_daily_points 40, got %d", resp.DefaultDailyPoints)
	}
}

func TestGetCatalog_DefaultsToHybrid(t *testing.T) {
	router := setupHandlerTest()

	w := doRequest(router, "GET", "/api/catalog", "")
	var resp catalog
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Mode != points.ModeHybrid {
		t.Errorf("expected mode hybrid, got %s", resp.Mode)
	}
	for _, m := range resp.StandardMeals {
		if m.Key == "meat_veg" && m.Points != 4 {
			t.Errorf("expected meat_veg to cost 4, got %d", m.Points)
		}
	}
}

func TestEstimatePick(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCost   int
		wantAfter  int
		wantOver   bool
		wantUnit   points.Unit
		wantPalmEq float64
	}{
		{"fits", `{"category":"grains","count":1,"remaining":5}`, 3, 2, false, points.UnitPalm, 1},
		{"over budget", `{"category":"grains","count":2,"remaining":5}`, 6, -1, true, points.UnitPalm, 2},
		{"spoonfuls", `{"category":"fats","count":2,"small":true,"remaining":10}`, 2, 8, false, points.UnitSpoonful, 0.4},
		{"window penalty", `{"category":"lean-protein","count":1,"remaining":10,"penalty":3}`, 6, 4, false, points.UnitPalm, 1},
		{"calorie mode", `{"category":"fats","count":1,"remaining":10,"points_mode":"calorie"}`, 7, 3, false, points.UnitPalm, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupHandlerTest()
			w := doRequest(router, "POST", "/api/estimate", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp estimateResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.Cost != tt.wantCost || resp.RemainingAfter != tt.wantAfter || resp.Over != tt.wantOver {
				t.Errorf("got cost %d, after %d, over %v; want %d, %d, %v",
					resp.Cost, resp.RemainingAfter, resp.Over, tt.wantCost, tt.wantAfter, tt.wantOver)
			}
			if resp.Unit != tt.wantUnit {
				t.Errorf("expected unit %s, got %s", tt.wantUnit, resp.Unit)
			}
			if resp.Servings != tt.wantPalmEq {
				t.Errorf("expected servings %v, got %v", tt.wantPalmEq, resp.Servings)
			}
		})
	}
}

func TestEstimatePick_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown category", `{"category":"crisps","count":1}`, "unknown category: crisps"},
		{"zero count", `{"category":"fruits","count":0}`, "count must be greater than 0 and at most 50"},
		{"too many", `{"category":"fruits","count":51}`, "count must be greater than 0 and at most 50"},
		{"penalty out of range", `{"category":"fruits","count":1,"penalty":4}`, "penalty must be between 1 and 3"},
		{"bad json", `{"category":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupHandlerTest()
			w := doRequest(router, "POST", "/api/estimate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, got)
			}
		})
	}
}

/* ─── Validation before the database ─────────────────────────────────── */

func TestHandlers_RejectBadInput(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantErr string
	}{
		{"onboarding missing biometrics", "POST", "/api/profile", `{"gender":"male","age":30}`,
			"gender, age, height_cm and weight_kg are required"},
		{"onboarding bad gender", "POST", "/api/profile", `{"gender":"x","age":30,"height_cm":180,"weight_kg":80}`,
			"gender must be one of: male, female"},
		{"patch too young", "PATCH", "/api/profile", `{"age":12}`, "age must be between 13 and 120"},
		{"patch bad activity", "PATCH", "/api/profile", `{"activity_level":"couch"}`,
			"activity_level must be one of: sedentary, light, moderate, active"},
		{"patch bad window", "PATCH", "/api/profile", `{"eating_window_start":"25:00"}`,
			"invalid eating_window_start, expected HH:MM"},
		{"patch bad restriction", "PATCH", "/api/profile", `{"dietary_restrictions":["carnivore"]}`,
			"unknown dietary restriction: carnivore"},
		{"patch bad physique goal", "PATCH", "/api/profile", `{"physique_goal":"bulk"}`,
			"physique_goal must be one of: build_muscle, lose_fat, recomp, maintain"},
		{"patch bad mode", "PATCH", "/api/profile", `{"points_mode":"keto"}`,
			"points_mode must be one of: hybrid, calorie"},
		{"patch nothing", "PATCH", "/api/profile", `{}`, "no fields to update"},
		{"pick unknown category", "POST", "/api/food-log/pick", `{"category":"crisps","count":1}`,
			"unknown category: crisps"},
		{"pick negative count", "POST", "/api/food-log/pick", `{"category":"fruits","count":-1}`,
			"count must be greater than 0 and at most 50"},
		{"standard unknown meal", "POST", "/api/food-log/standard", `{"meal":"sushi"}`, "unknown meal: sushi"},
		{"standard taste size", "POST", "/api/food-log/standard", `{"meal":"pasta","size":"taste"}`,
			"size must be one of: small, medium, large"},
		{"rated without rating", "POST", "/api/food-log/rated", `{"size":"small"}`,
			"rating must be between 1 and 5, or provide answers"},
		{"rated partial answers", "POST", "/api/food-log/rated", `{"answers":{"homemade":true}}`,
			"answers must cover every guided question"},
		{"rated taste without spoonfuls", "POST", "/api/food-log/rated", `{"rating":3,"size":"taste"}`,
			"spoonfuls must be between 1 and 5 for a taste"},
		{"edit bad id", "PUT", "/api/food-log/42", `{"servings":1}`, "invalid id"},
		{"edit zero servings", "PUT", "/api/food-log/" + uuid.NewString(), `{"servings":0}`,
			"servings must be greater than 0 and at most 50"},
		{"edit nothing", "PUT", "/api/food-log/" + uuid.NewString(), `{}`, "no fields to update"},
		{"delete bad id", "DELETE", "/api/food-log/nope", ``, "invalid id"},
		{"history missing range", "GET", "/api/food-log/history?start=2025-01-01", ``,
			"start and end query params are required"},
		{"history reversed", "GET", "/api/food-log/history?start=2025-02-01&end=2025-01-01", ``,
			"start must not be after end"},
		{"history too long", "GET", "/api/food-log/history?start=2024-01-01&end=2025-06-01", ``,
			"range must not exceed 366 days"},
		{"daily bad date", "GET", "/api/food-log/daily?date=yesterday", ``, "invalid date, expected YYYY-MM-DD"},
		{"plan no meals", "POST", "/api/plan/suggest", `{"meals_left":0}`, "meals_left must be between 1 and 6"},
		{"plan unknown preference", "POST", "/api/plan/suggest", `{"meals_left":2,"preferences":["spicy"]}`,
			"unknown preference: spicy"},
		{"weight too heavy", "POST", "/api/weight-log", `{"date":"2025-01-01","weight_kg":501}`,
			"weight_kg must be greater than 0 and at most 500"},
		{"weight bad date", "POST", "/api/weight-log", `{"date":"01/01/2025","weight_kg":80}`,
			"invalid date, expected YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupHandlerTest()
			w := doRequest(router, tt.method, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, got)
			}
		})
	}
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func TestParseRange(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	h := &Handler{loc: est}

	start, days, msg := h.parseRange("2025-03-01", "2025-03-31")
	if msg != "" {
		t.Fatalf("unexpected error: %s", msg)
	}
	// crosses the DST change on 2025-03-09
	if days != 31 {
		t.Errorf("expected 31 days, got %d", days)
	}
	if start.Location() != est || start.Hour() != 0 {
		t.Errorf("expected local midnight, got %v", start)
	}

	if _, days, _ := h.parseRange("2025-03-01", "2025-03-01"); days != 1 {
		t.Errorf("expected a single day range, got %d", days)
	}
}

func TestDayOf(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	h := &Handler{loc: est}

	// 03:30 UTC on the 10th is still the evening of the 9th in New York.
	start, end := h.dayOf(time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC))
	wantStart, wantEnd, _ := h.dayBounds("2025-03-09")
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("dayOf = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
	// the DST change makes this day 23 hours long
	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("expected a 23h day, got %v", got)
	}

	start, _ = (&Handler{}).dayOf(time.Date(2025, 3, 10, 3, 30, 0, 0, est))
	if start.Location() != time.UTC || start.Day() != 10 || start.Hour() != 0 {
		t.Errorf("expected UTC midnight on the 10th, got %v", start)
	}
}

func TestBuildDailyLog(t *testing.T) {
	p := defaultProfile(1)
	logs := []foodLog{
		{Category: "lean-protein", Servings: 1, Points: 2},
		{Category: points.StandardMeal, Servings: 1.5, Points: 6, AutoLabel: "Meat & 3 Veg", UserNote: "dinner", SizeTag: "large"},
		{Category: "fats", Servings: 0.4, Points: 2, SizeTag: "spoonful"},
	}

	day := buildDailyLog("2025-01-02", p, logs)

	if day.UsedPoints != 10 || day.RemainingPoints != 30 {
		t.Errorf("expected used 10 remaining 30, got %d / %d", day.UsedPoints, day.RemainingPoints)
	}
	if day.PointsColor != PointsColor(30, 40) {
		t.Errorf("expected color for 30/40, got %s", day.PointsColor)
	}
	if day.MacroTargets != nil {
		t.Errorf("expected no macro targets when macros are disabled")
	}
	wantDisplay := []string{"1 palm", "Large Meat & 3 Veg • dinner", "2 spoonfuls"}
	for i, want := range wantDisplay {
		if day.Entries[i].Display != want {
			t.Errorf("entry %d: expected display %q, got %q", i, want, day.Entries[i].Display)
		}
	}
}

func TestBuildDailyLog_MacroTargetsAndEmptyEntries(t *testing.T) {
	p := defaultProfile(1)
	goal := "build_muscle"
	p.MacrosEnabled = true
	p.PhysiqueGoal = &goal

	day := buildDailyLog("2025-01-02", p, []foodLog{})

	if day.MacroTargets == nil {
		t.Fatal("expected macro targets when macros are enabled")
	}
	b, _ := json.Marshal(day)
	if !strings.Contains(string(b), `"entries":[]`) {
		t.Errorf("expected empty entries array, got %s", b)
	}
}

func TestProfileHelpers(t *testing.T) {
	p := defaultProfile(7)
	if _, ok := p.biometrics(); ok {
		t.Error("expected no biometrics on a default profile")
	}
	if p.window() != nil {
		t.Error("expected no window when disabled")
	}
	if p.physiqueKey() != "" {
		t.Error("expected no physique key when macros are disabled")
	}

	gender, age, height, weight := "female", 40, 165.0, 70.0
	p.Gender, p.Age, p.HeightCM, p.WeightKG = &gender, &age, &height, &weight
	p.EatingWindowEnabled = true

	bio, ok := p.biometrics()
	if !ok || bio.Gender != points.Female || bio.Goal != points.LoseSteady {
		t.Errorf("unexpected biometrics: %+v ok=%v", bio, ok)
	}
	w := p.window()
	if w == nil || w.Start != 480 || w.End != 1200 {
		t.Errorf("expected 08:00–20:00 window, got %+v", w)
	}
}

func TestClockTime_JSON(t *testing.T) {
	b, _ := json.Marshal(newClockTime(7*60 + 5))
	if string(b) != `"07:05"` {
		t.Errorf("expected \"07:05\", got %s", b)
	}
	b, _ = json.Marshal(ClockTime{})
	if string(b) != "null" {
		t.Errorf("expected null, got %s", b)
	}

	var ct ClockTime
	if err := json.Unmarshal([]byte(`"21:30:15"`), &ct); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !ct.Valid || ct.Minutes != 21*60+30 {
		t.Errorf("expected 21:30, got %+v", ct)
	}
	if err := json.Unmarshal([]byte(`"9pm"`), &ct); err == nil {
		t.Error("expected error for invalid time")
	}
	if newClockTime(8*60).String() != "08:00:00" {
		t.Errorf("expected 08:00:00, got %s", newClockTime(8*60).String())
	}
}

func TestClockTime_ScanTime(t *testing.T) {
	var ct ClockTime
	usec := int64((20*time.Hour + 15*time.Minute + 30*time.Second) / time.Microsecond)
	if err := ct.ScanTime(pgtype.Time{Microseconds: usec, Valid: true}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if ct.Minutes != 20*60+15 {
		t.Errorf("expected 20:15, got %d minutes", ct.Minutes)
	}
	ct.ScanTime(pgtype.Time{})
	if ct.Valid {
		t.Error("expected NULL to clear the time")
	}
}

func TestPointsColor(t *testing.T) {
	tests := []struct {
		remaining, total int
		want             string
	}{
		{40, 40, "hsl(142, 72%, 38%)"},
		{30, 40, "hsl(90, 82%, 44%)"},
		{20, 40, "hsl(38, 92%, 50%)"},
		{10, 40, "hsl(19, 84%, 49%)"},
		{0, 40, "hsl(0, 75%, 48%)"},
		{-5, 40, "hsl(0, 75%, 48%)"},
		{50, 40, "hsl(142, 72%, 38%)"},
		{5, 0, "hsl(142, 72%, 38%)"},
		{0, 0, "hsl(142, 72%, 38%)"},
	}
	for _, tt := range tests {
		if got := PointsColor(tt.remaining, tt.total); got != tt.want {
			t.Errorf("PointsColor(%d, %d) = %s, want %s", tt.remaining, tt.total, got, tt.want)
		}
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
