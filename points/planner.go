package points

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// PreferenceTag is a soft preference a template can match.
type PreferenceTag string

const (
	HighProtein PreferenceTag = "high_protein"
	LightTag    PreferenceTag = "light"
	Sweet       PreferenceTag = "sweet"
	Filling     PreferenceTag = "filling"
	Energy      PreferenceTag = "energy"
	Healthy     PreferenceTag = "healthy"
)

// PreferenceOption is a user-facing preference choice.
type PreferenceOption struct {
	Key   PreferenceTag `json:"key"`
	Label string        `json:"label"`
}

var preferenceOptions = []PreferenceOption{
	{Key: HighProtein, Label: "More Protein"},
	{Key: LightTag, Label: "Feel Lighter"},
	{Key: Sweet, Label: "Sweet Snack"},
	{Key: Filling, Label: "Filling Meal"},
	{Key: Energy, Label: "Energy Boost"},
	{Key: Healthy, Label: "Healthy Pick"},
}

// PreferenceOptions returns the preference choices in display order.
func PreferenceOptions() []PreferenceOption {
	out := make([]PreferenceOption, len(preferenceOptions))
	copy(out, preferenceOptions)
	return out
}

// Allergen is an ingredient flag a restriction can block.
type Allergen string

const (
	Gluten  Allergen = "gluten"
	Dairy   Allergen = "dairy"
	Nuts    Allergen = "nuts"
	Meat    Allergen = "meat"
	RedMeat Allergen = "red_meat"
	Fish    Allergen = "fish"
	Eggs    Allergen = "eggs"
	Sugar   Allergen = "sugar"
)

// Restriction is a dietary restriction and the allergens it blocks.
type Restriction struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Blocks []Allergen `json:"blocks"`
}

var restrictions = []Restriction{
	{Key: "gluten_free", Label: "Gluten-Free", Blocks: []Allergen{Gluten}},
	{Key: "dairy_free", Label: "Dairy-Free", Blocks: []Allergen{Dairy}},
	{Key: "nut_free", Label: "Nut-Free", Blocks: []Allergen{Nuts}},
	{Key: "vegetarian", Label: "Vegetarian", Blocks: []Allergen{Meat, Fish}},
	{Key: "sugar_free", Label: "Sugar-Free", Blocks: []Allergen{Sugar}},
}

// Restrictions returns the dietary restrictions in display order.
func Restrictions() []Restriction {
	out := make([]Restriction, len(restrictions))
	copy(out, restrictions)
	return out
}

// ValidRestriction reports whether key names a known restriction.
func ValidRestriction(key string) bool {
	for _, r := range restrictions {
		if r.Key == key {
			return true
		}
	}
	return false
}

// BlockedAllergens is the union of Blocks over the given restriction keys.
// Unknown keys block nothing.
func BlockedAllergens(keys []string) map[Allergen]bool {
	blocked := make(map[Allergen]bool)
	for _, k := range keys {
		for _, r := range restrictions {
			if r.Key == k {
				for _, a := range r.Blocks {
					blocked[a] = true
				}
			}
		}
	}
	return blocked
}

// MealTemplate is a predefined food combination used for suggestions. Its
// cost is always derived from Items.
type MealTemplate struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Items    []Portion       `json:"items"`
	Tags     []PreferenceTag `json:"tags"`
	Contains []Allergen      `json:"contains"`
}

// HasTag reports whether the template is tagged with tag.
func (t MealTemplate) HasTag(tag PreferenceTag) bool {
	return slices.Contains(t.Tags, tag)
}

// ContainsAllergen reports whether the template contains a.
func (t MealTemplate) ContainsAllergen(a Allergen) bool {
	return slices.Contains(t.Contains, a)
}

// allowed reports whether none of the template's allergens are blocked.
func (t MealTemplate) allowed(blocked map[Allergen]bool) bool {
	for _, a := range t.Contains {
		if blocked[a] {
			return false
		}
	}
	return true
}

// TemplateCost prices a template in mode.
func TemplateCost(t MealTemplate, mode Mode) int {
	return portionsCost(t.Items, mode)
}

var mealTemplates = []MealTemplate{
	{ID: "chicken_salad", Name: "Chicken Salad",
		Items: []Portion{{"lean-protein", 1}, {"vegetables", 2}},
		Tags:  []PreferenceTag{HighProtein, LightTag, Healthy}, Contains: []Allergen{Meat}},
	{ID: "steak_veg", Name: "Steak & Vegetables",
		Items: []Portion{{"red-meat", 1}, {"vegetables", 1}},
		Tags:  []PreferenceTag{HighProtein, Filling}, Contains: []Allergen{Meat, RedMeat}},
	{ID: "salmon_rice", Name: "Salmon & Rice",
		Items: []Portion{{"fatty-protein", 1}, {"grains", 1}},
		Tags:  []PreferenceTag{HighProtein, Filling, Energy}, Contains: []Allergen{Fish}},
	{ID: "pasta_chicken", Name: "Chicken Pasta",
		Items: []Portion{{"grains", 1.5}, {"lean-protein", 1}},
		Tags:  []PreferenceTag{Filling, Energy}, Contains: []Allergen{Gluten, Meat}},
	{ID: "fruit_yogurt", Name: "Fruit & Yogurt",
		Items: []Portion{{"fruits", 1}, {"dairy", 0.5}},
		Tags:  []PreferenceTag{LightTag, Sweet, Healthy}, Contains: []Allergen{Dairy}},
	{ID: "egg_toast", Name: "Eggs on Toast",
		Items: []Portion{{"fatty-protein", 1}, {"grains", 1}},
		Tags:  []PreferenceTag{HighProtein, Energy}, Contains: []Allergen{Gluten, Eggs}},
	{ID: "veggie_stir_fry", Name: "Veggie Stir-Fry",
		Items: []Portion{{"vegetables", 2}, {"grains", 1}},
		Tags:  []PreferenceTag{LightTag, Healthy, Energy}, Contains: []Allergen{Gluten}},
	{ID: "protein_shake", Name: "Protein Shake",
		Items: []Portion{{"lean-protein", 1}, {"fruits", 0.5}},
		Tags:  []PreferenceTag{HighProtein, LightTag}, Contains: []Allergen{}},
	{ID: "tuna_salad", Name: "Tuna Salad",
		Items: []Portion{{"lean-protein", 1}, {"vegetables", 1}, {"fats", 0.25}},
		Tags:  []PreferenceTag{HighProtein, LightTag, Healthy}, Contains: []Allergen{Fish}},
	{ID: "rice_beans", Name: "Rice & Beans",
		Items: []Portion{{"grains", 1}, {"lean-protein", 0.5}},
		Tags:  []PreferenceTag{Energy, Filling}, Contains: []Allergen{}},
	{ID: "cheese_crackers", Name: "Cheese & Crackers",
		Items: []Portion{{"dairy", 0.5}, {"grains", 0.5}},
		Tags:  []PreferenceTag{LightTag}, Contains: []Allergen{Dairy, Gluten}},
	{ID: "small_sweet", Name: "Small Sweet Treat",
		Items: []Portion{{"sweets", 0.5}},
		Tags:  []PreferenceTag{Sweet}, Contains: []Allergen{Sugar, Gluten, Dairy}},
	{ID: "fruit_snack", Name: "Fresh Fruit",
		Items: []Portion{{"fruits", 1}},
		Tags:  []PreferenceTag{LightTag, Sweet, Healthy}, Contains: []Allergen{}},
	{ID: "nuts_dried_fruit", Name: "Nuts & Dried Fruit",
		Items: []Portion{{"fats", 0.5}, {"fruits", 0.5}},
		Tags:  []PreferenceTag{Energy, Healthy}, Contains: []Allergen{Nuts}},
	{ID: "burger_salad", Name: "Burger with Side Salad",
		Items: []Portion{{"red-meat", 1}, {"grains", 1}, {"vegetables", 1}},
		Tags:  []PreferenceTag{Filling, HighProtein}, Contains: []Allergen{Meat, RedMeat, Gluten}},
	{ID: "oats_banana", Name: "Oats & Banana",
		Items: []Portion{{"grains", 1}, {"fruits", 1}},
		Tags:  []PreferenceTag{Energy, Healthy, Filling}, Contains: []Allergen{Gluten}},
	{ID: "veggie_soup", Name: "Vegetable Soup",
		Items: []Portion{{"vegetables", 2}, {"grains", 0.5}},
		Tags:  []PreferenceTag{LightTag, Healthy}, Contains: []Allergen{Gluten}},
	{ID: "sweet_potato_beans", Name: "Sweet Potato & Black Beans",
		Items: []Portion{{"vegetables", 1}, {"lean-protein", 1}},
		Tags:  []PreferenceTag{Filling, Energy, Healthy}, Contains: []Allergen{}},
	{ID: "smoothie_bowl", Name: "Smoothie Bowl",
		Items: []Portion{{"fruits", 1.5}, {"fats", 0.25}},
		Tags:  []PreferenceTag{LightTag, Sweet, Healthy}, Contains: []Allergen{}},
	{ID: "avocado_rice", Name: "Avocado Rice Bowl",
		Items: []Portion{{"grains", 1}, {"fats", 0.5}, {"vegetables", 1}},
		Tags:  []PreferenceTag{Filling, Healthy, Energy}, Contains: []Allergen{}},
	{ID: "chicken_sweet_potato", Name: "Chicken & Sweet Potato",
		Items: []Portion{{"lean-protein", 1}, {"vegetables", 1}},
		Tags:  []PreferenceTag{HighProtein, Filling}, Contains: []Allergen{Meat}},
	{ID: "tofu_veg", Name: "Tofu & Veggie Bowl",
		Items: []Portion{{"lean-protein", 1}, {"vegetables", 1.5}},
		Tags:  []PreferenceTag{HighProtein, LightTag, Healthy}, Contains: []Allergen{}},
	{ID: "banana_pb", Name: "Banana & Peanut Butter",
		Items: []Portion{{"fruits", 1}, {"fats", 0.5}},
		Tags:  []PreferenceTag{Energy, Sweet, Filling}, Contains: []Allergen{Nuts}},
}

// MealTemplates returns the built-in template pool.
func MealTemplates() []MealTemplate {
	out := make([]MealTemplate, len(mealTemplates))
	copy(out, mealTemplates)
	return out
}

/* ─── Suggestions ────────────────────────────────────────────────────── */

// TasteMode biases scoring towards healthier or tastier picks.
type TasteMode string

const (
	Balanced  TasteMode = "balanced"
	Healthier TasteMode = "healthier"
	Yummier   TasteMode = "yummier"
)

// ParseTasteMode maps a string to a TasteMode, defaulting to balanced.
func ParseTasteMode(s string) TasteMode {
	switch TasteMode(s) {
	case Healthier, Yummier:
		return TasteMode(s)
	default:
		return Balanced
	}
}

// SuggestRequest carries the inputs to a suggestion run.
type SuggestRequest struct {
	RemainingPoints int             `json:"remaining_points"`
	Preferences     []PreferenceTag `json:"preferences"`
	MealsLeft       int             `json:"meals_left"`
	Restrictions    []string        `json:"dietary_restrictions"`
	Taste           TasteMode       `json:"taste_mode"`
	Mode            Mode            `json:"points_mode"`
}

// Option is a scored template offered for a slot.
type Option struct {
	MealTemplate
	Cost  int     `json:"cost"`
	Score float64 `json:"score"`
}

// Slot is one remaining meal of the day with up to two options.
type Slot struct {
	Label   string   `json:"slot"`
	Options []Option `json:"options"`
}

const (
	slotTolerance    = 2
	optionsPerSlot   = 2
	preferenceWeight = 10.0
	fitPenalty       = 0.5
	inBudgetBonus    = 3.0
)

// SlotLabel names slot index of total. Labels are positional only.
func SlotLabel(index, total int) string {
	switch {
	case total == 1:
		return "Next Meal"
	case total == 2 && index == 0:
		return "Next Meal"
	case total == 2:
		return "Later"
	}
	if labels := []string{"Next Meal", "Afternoon", "Evening"}; index < len(labels) {
		return labels[index]
	}
	return fmt.Sprintf("Meal %d", index+1)
}

// SuggestMeals suggests meals for the rest of the day from the built-in pool.
func SuggestMeals(req SuggestRequest) []Slot {
	return Suggest(mealTemplates, req)
}

// Suggest allocates the remaining budget across req.MealsLeft slots from
// pool. Restrictions are a hard filter. Each slot takes the two best-scoring
// unused templates that cost at most the slot budget plus a small tolerance;
// the top pick's cost comes off the running budget and the final slot gets
// whatever is left. Earlier slots always get the nominal share even after the
// running budget goes negative; only an empty final slot ends the run. Slots
// with no candidates are skipped.
func Suggest(pool []MealTemplate, req SuggestRequest) []Slot {
	slots := []Slot{}
	if req.RemainingPoints <= 0 || req.MealsLeft <= 0 {
		return slots
	}

	blocked := BlockedAllergens(req.Restrictions)
	available := make([]MealTemplate, 0, len(pool))
	for _, t := range pool {
		if t.allowed(blocked) {
			available = append(available, t)
		}
	}
	if len(available) == 0 {
		return slots
	}

	perSlot := max(1, round(float64(req.RemainingPoints)/float64(req.MealsLeft)))
	budget := req.RemainingPoints
	used := make(map[string]bool)

	for i := 0; i < req.MealsLeft; i++ {
		slotBudget := perSlot
		if i == req.MealsLeft-1 {
			slotBudget = budget
		}
		if slotBudget <= 0 {
			break
		}

		var scored []Option
		for _, t := range available {
			if used[t.ID] {
				continue
			}
			cost := TemplateCost(t, req.Mode)
			if cost > slotBudget+slotTolerance {
				continue
			}
			scored = append(scored, Option{
				MealTemplate: t,
				Cost:         cost,
				Score:        score(t, cost, slotBudget, req.Preferences, req.Taste),
			})
		}
		if len(scored) == 0 {
			continue
		}
		sort.SliceStable(scored, func(a, b int) bool {
			return scored[a].Score > scored[b].Score
		})

		options := scored[:min(optionsPerSlot, len(scored))]
		for _, o := range options {
			used[o.ID] = true
		}
		budget -= options[0].Cost
		slots = append(slots, Slot{Label: SlotLabel(i, req.MealsLeft), Options: options})
	}
	return slots
}

// score ranks a candidate for a slot. Higher is better.
func score(t MealTemplate, cost, slotBudget int, prefs []PreferenceTag, taste TasteMode) float64 {
	s := 0.0
	for _, p := range prefs {
		if t.HasTag(p) {
			s += preferenceWeight
		}
	}

	switch taste {
	case Healthier:
		if t.HasTag(Healthy) {
			s += 8
		}
		if t.HasTag(LightTag) {
			s += 5
		}
		if t.ContainsAllergen(Sugar) {
			s -= 5
		}
		if cost <= 3 {
			s += 3
		}
	case Yummier:
		if t.HasTag(Sweet) {
			s += 6
		}
		if t.HasTag(Filling) {
			s += 5
		}
		if t.ContainsAllergen(Dairy) {
			s += 3
		}
		if t.ContainsAllergen(RedMeat) {
			s += 3
		}
		if cost >= 5 {
			s += 3
		}
	}

	s -= fitPenalty * math.Abs(float64(cost-slotBudget))
	if cost <= slotBudget {
		s += inBudgetBonus
	}
	return s
}
