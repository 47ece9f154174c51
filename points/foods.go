// Package points is the rules engine behind the points budget: it prices food
// entries, derives the daily allowance from a profile, splits that allowance
// across macros and suggests meals for the rest of the day.
//
// Everything here is pure. Callers pass in already-validated values (and the
// current time where it matters) and persist whatever they need from the
// results.
package points

import "math"

// Mode selects which per-category cost table is used.
type Mode string

const (
	// ModeHybrid uses the curated table that nudges towards whole foods
	// (vegetables are free, alcohol and sugar are dear).
	ModeHybrid Mode = "hybrid"
	// ModeCalorie swaps in costs that track ~50 calories per point per palm.
	ModeCalorie Mode = "calorie"
)

// ParseMode maps a stored mode string to a Mode, defaulting to hybrid.
func ParseMode(s string) Mode {
	if s == string(ModeCalorie) {
		return ModeCalorie
	}
	return ModeHybrid
}

// Tier is the display grouping of a category, derived from its cost.
type Tier string

const (
	TierFree    Tier = "free"
	TierLow     Tier = "low"
	TierMedium  Tier = "medium"
	TierHigh    Tier = "high"
	TierPenalty Tier = "penalty"
)

// Synthetic category keys for log entries that are not priced per serving.
const (
	RatedMeal    = "rated_meal"
	StandardMeal = "standard_meal"
)

// Category is one food group with its cost per palm-sized serving.
type Category struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Tier     Tier   `json:"tier"`
	Examples string `json:"examples"`
	Macros   Split  `json:"macros"`
}

// categories is the hybrid table. Order is the display order.
var categories = []Category{
	{Key: "vegetables", Name: "Vegetables", Points: 0, Tier: TierFree,
		Examples: "Broccoli, spinach, carrots, salad, tomatoes",
		Macros:   Split{Protein: 0.15, Carbs: 0.40, Fat: 0.05, Fiber: 0.40}},
	{Key: "fruits", Name: "Fruits", Points: 1, Tier: TierLow,
		Examples: "Apples, bananas, berries, oranges, grapes",
		Macros:   Split{Protein: 0.05, Carbs: 0.70, Fat: 0.05, Fiber: 0.20}},
	{Key: "lean-protein", Name: "Lean Protein", Points: 2, Tier: TierLow,
		Examples: "Chicken breast, turkey, white fish, egg whites, tofu",
		Macros:   Split{Protein: 0.80, Carbs: 0.10, Fat: 0.10, Fiber: 0.00}},
	{Key: "grains", Name: "Grains & Starches", Points: 3, Tier: TierMedium,
		Examples: "Rice, pasta, bread, potatoes, oats",
		Macros:   Split{Protein: 0.10, Carbs: 0.65, Fat: 0.10, Fiber: 0.15}},
	{Key: "dairy", Name: "Dairy", Points: 3, Tier: TierMedium,
		Examples: "Milk, yogurt, cheese, cream",
		Macros:   Split{Protein: 0.30, Carbs: 0.25, Fat: 0.40, Fiber: 0.05}},
	{Key: "fatty-protein", Name: "Fatty Protein", Points: 3, Tier: TierMedium,
		Examples: "Salmon, pork chops, dark chicken, whole eggs",
		Macros:   Split{Protein: 0.55, Carbs: 0.05, Fat: 0.40, Fiber: 0.00}},
	{Key: "red-meat", Name: "Red Meat", Points: 4, Tier: TierHigh,
		Examples: "Steak, beef mince, lamb, ribs",
		Macros:   Split{Protein: 0.55, Carbs: 0.00, Fat: 0.45, Fiber: 0.00}},
	{Key: "fats", Name: "Fats & Oils", Points: 4, Tier: TierHigh,
		Examples: "Butter, olive oil, nuts, avocado, mayo",
		Macros:   Split{Protein: 0.05, Carbs: 0.05, Fat: 0.85, Fiber: 0.05}},
	{Key: "alcohol", Name: "Alcohol", Points: 5, Tier: TierPenalty,
		Examples: "Beer, wine, spirits, cocktails",
		Macros:   Split{Protein: 0.00, Carbs: 0.85, Fat: 0.05, Fiber: 0.10}},
	{Key: "sugary-drinks", Name: "Sugary Drinks", Points: 5, Tier: TierPenalty,
		Examples: "Soda, juice, energy drinks, sweet coffee",
		Macros:   Split{Protein: 0.00, Carbs: 0.90, Fat: 0.05, Fiber: 0.05}},
	{Key: "sweets", Name: "Sugary Treats", Points: 6, Tier: TierPenalty,
		Examples: "Candy, cake, ice cream, chocolate, cookies",
		Macros:   Split{Protein: 0.05, Carbs: 0.55, Fat: 0.35, Fiber: 0.05}},
	{Key: "processed", Name: "Processed / Fast Food", Points: 7, Tier: TierPenalty,
		Examples: "Burgers, pizza, chips, fried food, takeaway",
		Macros:   Split{Protein: 0.15, Carbs: 0.40, Fat: 0.40, Fiber: 0.05}},
}

// calorieOverrides replaces hybrid costs in calorie mode. A category missing
// here keeps its hybrid cost and tier.
var calorieOverrides = map[string]int{
	"vegetables":    1,
	"fruits":        1,
	"lean-protein":  3,
	"grains":        3,
	"dairy":         3,
	"fatty-protein": 4,
	"red-meat":      5,
	"fats":          7,
	"alcohol":       4,
	"sugary-drinks": 4,
	"sweets":        6,
	"processed":     8,
}

// tierFor groups an effective cost. Free (0) is only ever a hybrid tier; a
// calorie override of 0 would land in low.
func tierFor(cost int) Tier {
	switch {
	case cost <= 1:
		return TierLow
	case cost <= 3:
		return TierMedium
	case cost <= 5:
		return TierHigh
	default:
		return TierPenalty
	}
}

// Categories returns a copy of the category table with costs and tiers
// adjusted for mode.
func Categories(mode Mode) []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	if mode != ModeCalorie {
		return out
	}
	for i := range out {
		if pts, ok := calorieOverrides[out[i].Key]; ok {
			out[i].Points = pts
			out[i].Tier = tierFor(pts)
		}
	}
	return out
}

// LookupCategory finds a real (non-synthetic) category by key.
func LookupCategory(key string, mode Mode) (Category, bool) {
	for _, c := range Categories(mode) {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// BaseCost is the cost of one palm of key in mode. Unknown keys cost 0.
func BaseCost(key string, mode Mode) int {
	if mode == ModeCalorie {
		if pts, ok := calorieOverrides[key]; ok {
			return pts
		}
	}
	for _, c := range categories {
		if c.Key == key {
			return c.Points
		}
	}
	return 0
}

// CategoryCost prices servings palm-equivalents of a category.
func CategoryCost(key string, servings float64, mode Mode) int {
	return round(float64(BaseCost(key, mode)) * servings)
}

// IsDrink reports whether the category is measured in glasses and sips.
func IsDrink(key string) bool {
	return key == "alcohol" || key == "sugary-drinks"
}

/* ─── Serving units ──────────────────────────────────────────────────── */

// Unit is a serving-size unit. The engine only ever works in palm-equivalents;
// the unit is kept so the display line can be regenerated.
type Unit string

const (
	UnitPalm     Unit = "palm"
	UnitGlass    Unit = "glass"
	UnitSpoonful Unit = "spoonful"
	UnitSip      Unit = "sip"
)

// smallUnitFactor is the palm-equivalent of one spoonful or sip.
const smallUnitFactor = 0.2

// IsSmall reports whether u is a spoonful-sized unit.
func (u Unit) IsSmall() bool {
	return u == UnitSpoonful || u == UnitSip
}

// PalmEquivalent converts count units into palms.
func PalmEquivalent(count float64, u Unit) float64 {
	if u.IsSmall() {
		return count * smallUnitFactor
	}
	return count
}

// UnitFor returns the label for a category's big or small unit.
func UnitFor(key string, small bool) Unit {
	switch {
	case small && IsDrink(key):
		return UnitSip
	case small:
		return UnitSpoonful
	case IsDrink(key):
		return UnitGlass
	default:
		return UnitPalm
	}
}

// PickCost prices a category pick as logged: the per-serving cost is rounded
// first, then the eating-window penalty is applied.
func PickCost(key string, count float64, u Unit, mode Mode, penalty int) int {
	base := CategoryCost(key, PalmEquivalent(count, u), mode)
	return ApplyPenalty(base, penalty)
}

/* ─── Standard meals ─────────────────────────────────────────────────── */

// Portion is one component of a composite meal.
type Portion struct {
	Category string  `json:"category"`
	Palms    float64 `json:"palms"`
}

// StandardMealDef is a quick-log meal made of fixed portions.
type StandardMealDef struct {
	Key   string    `json:"key"`
	Name  string    `json:"name"`
	Items []Portion `json:"items"`
}

var standardMeals = []StandardMealDef{
	{Key: "meat_veg", Name: "Meat & 3 Veg", Items: []Portion{{"lean-protein", 1}, {"vegetables", 2}, {"grains", 0.5}}},
	{Key: "chicken_salad", Name: "Chicken Salad", Items: []Portion{{"lean-protein", 1}, {"vegetables", 2}, {"fats", 0.25}}},
	{Key: "burger_fries", Name: "Burger & Fries", Items: []Portion{{"red-meat", 1}, {"grains", 1}, {"fats", 0.5}}},
	{Key: "pasta", Name: "Pasta", Items: []Portion{{"grains", 1.5}, {"lean-protein", 0.5}, {"fats", 0.25}}},
	{Key: "stir_fry", Name: "Stir-Fry & Rice", Items: []Portion{{"lean-protein", 1}, {"vegetables", 1}, {"grains", 1}}},
	{Key: "pizza", Name: "Pizza (2-3 slices)", Items: []Portion{{"processed", 1}}},
	{Key: "sandwich", Name: "Sandwich", Items: []Portion{{"grains", 1}, {"lean-protein", 0.5}, {"fats", 0.25}}},
	{Key: "curry_rice", Name: "Curry & Rice", Items: []Portion{{"fatty-protein", 1}, {"grains", 1}, {"fats", 0.5}}},
	{Key: "fish_chips", Name: "Fish & Chips", Items: []Portion{{"fatty-protein", 1}, {"grains", 1}, {"fats", 0.5}}},
	{Key: "omelette", Name: "Omelette", Items: []Portion{{"fatty-protein", 1}, {"vegetables", 0.5}}},
	{Key: "eggs_toast", Name: "Eggs on Toast", Items: []Portion{{"fatty-protein", 1}, {"grains", 0.5}}},
	{Key: "cereal", Name: "Cereal / Porridge", Items: []Portion{{"grains", 1}, {"dairy", 0.5}}},
	{Key: "smoothie", Name: "Smoothie", Items: []Portion{{"fruits", 1.5}, {"dairy", 0.5}}},
	{Key: "wrap", Name: "Wrap / Burrito", Items: []Portion{{"grains", 1}, {"lean-protein", 0.5}, {"vegetables", 0.5}, {"fats", 0.25}}},
	{Key: "soup_bread", Name: "Soup & Bread", Items: []Portion{{"vegetables", 1.5}, {"grains", 0.5}}},
	{Key: "roast_dinner", Name: "Roast Dinner", Items: []Portion{{"red-meat", 1}, {"vegetables", 1}, {"grains", 1}, {"fats", 0.25}}},
}

// StandardMeals returns the quick-log meal list.
func StandardMeals() []StandardMealDef {
	out := make([]StandardMealDef, len(standardMeals))
	copy(out, standardMeals)
	return out
}

// LookupStandardMeal finds a standard meal by key.
func LookupStandardMeal(key string) (StandardMealDef, bool) {
	for _, m := range standardMeals {
		if m.Key == key {
			return m, true
		}
	}
	return StandardMealDef{}, false
}

// Size is a meal-size choice for standard and rated meals.
type Size string

const (
	SizeTaste  Size = "taste"
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// sizeMultipliers covers the fixed sizes; taste scales with spoonfuls.
var sizeMultipliers = map[Size]float64{
	SizeSmall:  0.7,
	SizeMedium: 1.0,
	SizeLarge:  1.5,
}

const tastePerSpoonful = 0.15

// SizeMultiplier returns the multiplier for a meal size. spoonfuls is only
// read for SizeTaste. Unknown sizes count as medium.
func SizeMultiplier(s Size, spoonfuls int) float64 {
	if s == SizeTaste {
		return float64(spoonfuls) * tastePerSpoonful
	}
	if m, ok := sizeMultipliers[s]; ok {
		return m
	}
	return 1.0
}

// ValidSize reports whether s is one of the known meal sizes.
func ValidSize(s Size) bool {
	_, ok := sizeMultipliers[s]
	return ok || s == SizeTaste
}

// portionsCost sums the unrounded cost of every portion and rounds once.
func portionsCost(items []Portion, mode Mode) int {
	total := 0.0
	for _, it := range items {
		total += float64(BaseCost(it.Category, mode)) * it.Palms
	}
	return round(total)
}

// StandardMealCost prices a composite meal at a given size multiplier,
// before any eating-window penalty.
func StandardMealCost(items []Portion, sizeMultiplier float64, mode Mode) int {
	return round(float64(portionsCost(items, mode)) * sizeMultiplier)
}

// Round is the half-up rounding used for every point value. Inputs are
// non-negative in practice, where this agrees with math.Round.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round(x float64) int {
	return Round(x)
}
