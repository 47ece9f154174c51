package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMeals_EmptyInputs(t *testing.T) {
	cases := []struct {
		name string
		req  SuggestRequest
	}{
		{"no points left", SuggestRequest{RemainingPoints: 0, MealsLeft: 3}},
		{"over budget", SuggestRequest{RemainingPoints: -4, MealsLeft: 3}},
		{"no meals left", SuggestRequest{RemainingPoints: 20, MealsLeft: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SuggestMeals(tc.req)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSuggestMeals_Shape(t *testing.T) {
	for _, meals := range []int{1, 2, 3, 5} {
		slots := SuggestMeals(SuggestRequest{RemainingPoints: 25, MealsLeft: meals, Mode: ModeHybrid})
		assert.LessOrEqual(t, len(slots), meals)
		require.NotEmpty(t, slots)

		seen := map[string]bool{}
		for _, s := range slots {
			assert.NotEmpty(t, s.Options)
			assert.LessOrEqual(t, len(s.Options), 2)
			for _, o := range s.Options {
				assert.False(t, seen[o.ID], "template %s offered twice", o.ID)
				seen[o.ID] = true
			}
		}
	}
}

func TestSuggestMeals_RespectsRestrictions(t *testing.T) {
	sets := [][]string{
		{"vegetarian"},
		{"gluten_free"},
		{"vegetarian", "gluten_free", "dairy_free"},
		{"nut_free", "sugar_free"},
	}
	for _, set := range sets {
		blocked := BlockedAllergens(set)
		for _, taste := range []TasteMode{Balanced, Healthier, Yummier} {
			slots := SuggestMeals(SuggestRequest{RemainingPoints: 30, MealsLeft: 3, Restrictions: set, Taste: taste})
			for _, s := range slots {
				for _, o := range s.Options {
					for _, a := range o.Contains {
						assert.False(t, blocked[a], "%s contains %s under %v", o.ID, a, set)
					}
				}
			}
		}
	}
}

func TestSuggestMeals_OptionsWithinTolerance(t *testing.T) {
	slots := SuggestMeals(SuggestRequest{RemainingPoints: 12, MealsLeft: 3})
	require.NotEmpty(t, slots)
	// perSlot is 4, so nothing above 6 can be offered before the last slot.
	for _, o := range slots[0].Options {
		assert.LessOrEqual(t, o.Cost, 6)
	}
}

func TestSuggest_Ranking(t *testing.T) {
	pool := []MealTemplate{
		{ID: "plain", Items: []Portion{{"grains", 1}}},
		{ID: "protein", Items: []Portion{{"lean-protein", 1}}, Tags: []PreferenceTag{HighProtein}},
		{ID: "feast", Items: []Portion{{"processed", 1.5}}},
	}
	slots := Suggest(pool, SuggestRequest{RemainingPoints: 4, MealsLeft: 1, Preferences: []PreferenceTag{HighProtein}})
	require.Len(t, slots, 1)
	assert.Equal(t, "Next Meal", slots[0].Label)
	require.Len(t, slots[0].Options, 2)

	// protein: +10 preference, -1 fit, +3 in budget. plain: -0.5 fit, +3.
	assert.Equal(t, "protein", slots[0].Options[0].ID)
	assert.Equal(t, 12.0, slots[0].Options[0].Score)
	assert.Equal(t, "plain", slots[0].Options[1].ID)
	assert.Equal(t, 2.5, slots[0].Options[1].Score)
}

func TestSuggest_TasteModes(t *testing.T) {
	pool := []MealTemplate{
		{ID: "salad", Items: []Portion{{"vegetables", 1}, {"lean-protein", 1}}, Tags: []PreferenceTag{Healthy, LightTag}},
		{ID: "cake", Items: []Portion{{"sweets", 0.5}}, Tags: []PreferenceTag{Sweet}, Contains: []Allergen{Sugar, Dairy}},
	}
	healthier := Suggest(pool, SuggestRequest{RemainingPoints: 3, MealsLeft: 1, Taste: Healthier})
	require.Len(t, healthier, 1)
	assert.Equal(t, "salad", healthier[0].Options[0].ID)

	yummier := Suggest(pool, SuggestRequest{RemainingPoints: 3, MealsLeft: 1, Taste: Yummier})
	require.Len(t, yummier, 1)
	assert.Equal(t, "cake", yummier[0].Options[0].ID)
}

func TestSuggest_MiddleSlotsKeepNominalBudget(t *testing.T) {
	pool := func(n int) []MealTemplate {
		out := make([]MealTemplate, n)
		for i := range out {
			out[i] = MealTemplate{ID: string(rune('a' + i)), Items: []Portion{{"grains", 1}}, Tags: []PreferenceTag{Filling}}
		}
		return out
	}

	cases := []struct {
		name       string
		pool       []MealTemplate
		req        SuggestRequest
		wantLabels []string
	}{
		// perSlot is 1; the first top pick (3) spends the budget, but the
		// middle slot still gets its share. The final slot has -3 and stops.
		{"three meals", pool(4), SuggestRequest{RemainingPoints: 3, MealsLeft: 3},
			[]string{"Next Meal", "Afternoon"}},
		{"four meals", pool(6), SuggestRequest{RemainingPoints: 4, MealsLeft: 4, Preferences: []PreferenceTag{Filling}},
			[]string{"Next Meal", "Afternoon", "Evening"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots := Suggest(tc.pool, tc.req)
			labels := make([]string, len(slots))
			for i, s := range slots {
				labels[i] = s.Label
			}
			assert.Equal(t, tc.wantLabels, labels)
			require.NotEmpty(t, slots)
			assert.Equal(t, []string{"a", "b"}, []string{slots[0].Options[0].ID, slots[0].Options[1].ID})
		})
	}
}

func TestSuggest_FinalSlotUsesRemainder(t *testing.T) {
	pool := []MealTemplate{
		{ID: "a", Items: []Portion{{"fruits", 1}}},
		{ID: "b", Items: []Portion{{"fruits", 1}}},
		{ID: "c", Items: []Portion{{"fruits", 1}}},
		{ID: "d", Items: []Portion{{"fruits", 1}}},
		{ID: "feast", Items: []Portion{{"processed", 1}}},
	}
	// perSlot is 3, so feast (7) is out of reach until the last slot, which
	// gets the 8 points the first two picks left behind.
	slots := Suggest(pool, SuggestRequest{RemainingPoints: 10, MealsLeft: 3})
	require.Len(t, slots, 3)
	for _, s := range slots[:2] {
		for _, o := range s.Options {
			assert.NotEqual(t, "feast", o.ID)
		}
	}
	assert.Equal(t, "Evening", slots[2].Label)
	require.Len(t, slots[2].Options, 1)
	assert.Equal(t, "feast", slots[2].Options[0].ID)
}

func TestSuggest_EmptyPoolAfterFilter(t *testing.T) {
	pool := []MealTemplate{{ID: "pb", Items: []Portion{{"fats", 1}}, Contains: []Allergen{Nuts}}}
	got := Suggest(pool, SuggestRequest{RemainingPoints: 10, MealsLeft: 2, Restrictions: []string{"nut_free"}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "Next Meal", SlotLabel(0, 1))
	assert.Equal(t, "Later", SlotLabel(1, 2))
	assert.Equal(t, []string{"Next Meal", "Afternoon", "Evening"},
		[]string{SlotLabel(0, 3), SlotLabel(1, 3), SlotLabel(2, 3)})
	assert.Equal(t, "Meal 4", SlotLabel(3, 5))
}

func TestTemplateCost(t *testing.T) {
	byID := map[string]MealTemplate{}
	for _, tpl := range MealTemplates() {
		byID[tpl.ID] = tpl
	}
	assert.Equal(t, 2, TemplateCost(byID["chicken_salad"], ModeHybrid))
	assert.Equal(t, 7, TemplateCost(byID["pasta_chicken"], ModeHybrid))
	assert.Equal(t, 8, TemplateCost(byID["pasta_chicken"], ModeCalorie))
}

func TestBlockedAllergens(t *testing.T) {
	b := BlockedAllergens([]string{"vegetarian", "bogus"})
	assert.Equal(t, map[Allergen]bool{Meat: true, Fish: true}, b)
	assert.True(t, ValidRestriction("sugar_free"))
	assert.False(t, ValidRestriction("bogus"))
}

func TestParseTasteMode(t *testing.T) {
	assert.Equal(t, Yummier, ParseTasteMode("yummier"))
	assert.Equal(t, Balanced, ParseTasteMode("spicy"))
}
