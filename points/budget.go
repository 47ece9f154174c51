package points

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary ActivityLevel = "sedentary"
	Light     ActivityLevel = "light"
	Moderate  ActivityLevel = "moderate"
	Active    ActivityLevel = "active"
)

// activityFactors maps activity levels to their TDEE multiplier. This is the
// single source of truth for valid levels; the API validates against it too.
var activityFactors = map[ActivityLevel]float64{
	Sedentary: 1.2,
	Light:     1.375,
	Moderate:  1.55,
	Active:    1.725,
}

// defaultActivityFactor applies to unrecognised levels (moderate).
const defaultActivityFactor = 1.55

// ActivityFactor returns the multiplier for level and whether it is known.
func ActivityFactor(level ActivityLevel) (float64, bool) {
	f, ok := activityFactors[level]
	return f, ok
}

// Goal is a weight goal that scales TDEE before conversion to points.
type Goal string

const (
	LoseFast   Goal = "lose_fast"
	LoseSteady Goal = "lose_steady"
	Maintain   Goal = "maintain"
)

// GoalDef describes a weight goal.
type GoalDef struct {
	Key    Goal    `json:"key"`
	Label  string  `json:"label"`
	Desc   string  `json:"desc"`
	Factor float64 `json:"factor"`
}

var goals = []GoalDef{
	{Key: LoseFast, Label: "Lose Fat Fast", Desc: "Aggressive deficit (~30%)", Factor: 0.70},
	{Key: LoseSteady, Label: "Lose Steadily", Desc: "Moderate deficit (~15%)", Factor: 0.85},
	{Key: Maintain, Label: "Maintain Weight", Desc: "Eat at maintenance", Factor: 1.0},
}

// Goals returns the weight goals, strictest first.
func Goals() []GoalDef {
	out := make([]GoalDef, len(goals))
	copy(out, goals)
	return out
}

// LookupGoal returns the goal for key, falling back to lose_steady.
func LookupGoal(key Goal) GoalDef {
	for _, g := range goals {
		if g.Key == key {
			return g
		}
	}
	return goals[1]
}

// ValidGoal reports whether key names a known goal.
func ValidGoal(key Goal) bool {
	for _, g := range goals {
		if g.Key == key {
			return true
		}
	}
	return false
}

// Profile holds the biometric inputs to the daily budget.
type Profile struct {
	Gender   Gender        `json:"gender"`
	Age      int           `json:"age"`
	HeightCM float64       `json:"height_cm"`
	WeightKG float64       `json:"weight_kg"`
	Activity ActivityLevel `json:"activity_level"`
	Goal     Goal          `json:"goal"`
}

const (
	// KcalPerPoint is the calorie value of one point.
	KcalPerPoint = 50
	// DefaultDailyPoints is what callers show before a profile is set up.
	DefaultDailyPoints = 40
)

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day. Anything other
// than male uses the female constant.
func BMR(p Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == Male {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE is BMR scaled by the activity multiplier.
func TDEE(p Profile) float64 {
	f, ok := activityFactors[p.Activity]
	if !ok {
		f = defaultActivityFactor
	}
	return BMR(p) * f
}

// DailyPoints converts the goal-adjusted TDEE into the daily allowance.
// Results below zero are floored at zero so the allowance is never negative.
func DailyPoints(p Profile) int {
	pts := round(TDEE(p) * LookupGoal(p.Goal).Factor / KcalPerPoint)
	if pts < 0 {
		return 0
	}
	return pts
}
