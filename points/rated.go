package points

import "fmt"

// HealthRating is a subjective 1-5 score with a fixed base cost.
type HealthRating struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Base  int    `json:"base"`
}

var healthRatings = []HealthRating{
	{Value: 5, Label: "Very Healthy", Base: 4},
	{Value: 4, Label: "Healthy", Base: 7},
	{Value: 3, Label: "Average", Base: 10},
	{Value: 2, Label: "Unhealthy", Base: 14},
	{Value: 1, Label: "Very Unhealthy", Base: 18},
}

// HealthRatings returns the rating scale, healthiest first.
func HealthRatings() []HealthRating {
	out := make([]HealthRating, len(healthRatings))
	copy(out, healthRatings)
	return out
}

// LookupRating finds a rating by value.
func LookupRating(value int) (HealthRating, bool) {
	for _, r := range healthRatings {
		if r.Value == value {
			return r, true
		}
	}
	return HealthRating{}, false
}

// Question is one yes/no step of the guided rating. A yes adds YesAdjust.
type Question struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	YesAdjust int    `json:"yes_adjust"`
}

var healthQuestions = []Question{
	{ID: "homemade", Prompt: "Was it home-cooked?", YesAdjust: -2},
	{ID: "veggies", Prompt: "Did it include vegetables?", YesAdjust: -2},
	{ID: "fried", Prompt: "Was it fried or greasy?", YesAdjust: 3},
	{ID: "processed", Prompt: "Processed or fast food?", YesAdjust: 3},
	{ID: "sugary", Prompt: "Sugary drink or dessert included?", YesAdjust: 2},
}

// HealthQuestions returns the guided-rating questions in order.
func HealthQuestions() []Question {
	out := make([]Question, len(healthQuestions))
	copy(out, healthQuestions)
	return out
}

const (
	guidedStart = 10
	guidedMin   = 2
	guidedMax   = 20
)

// Answers maps question IDs to yes (true) or no (false). A missing key is
// unanswered.
type Answers map[string]bool

// Complete reports whether every guided question has an answer.
func (a Answers) Complete() bool {
	for _, q := range healthQuestions {
		if _, ok := a[q.ID]; !ok {
			return false
		}
	}
	return true
}

// GuidedScore is the questionnaire base: 10 adjusted per yes, clamped to [2, 20].
func GuidedScore(a Answers) int {
	score := guidedStart
	for _, q := range healthQuestions {
		if a[q.ID] {
			score += q.YesAdjust
		}
	}
	return max(guidedMin, min(guidedMax, score))
}

// RatedInput is either a star rating or a set of guided answers. Non-nil
// Answers selects the guided path, which only scores once complete.
type RatedInput struct {
	Rating  int     `json:"rating,omitempty"`
	Answers Answers `json:"answers,omitempty"`
}

// Guided reports whether the input uses the questionnaire.
func (in RatedInput) Guided() bool {
	return in.Answers != nil
}

// RatedBase is the unsized base cost. Unknown ratings and incomplete
// questionnaires score 0.
func RatedBase(in RatedInput) int {
	if in.Guided() {
		if !in.Answers.Complete() {
			return 0
		}
		return GuidedScore(in.Answers)
	}
	if r, ok := LookupRating(in.Rating); ok {
		return r.Base
	}
	return 0
}

// RatedMealCost prices a rated meal. The sized base is rounded first, then
// the penalty is applied and the product rounded again.
func RatedMealCost(in RatedInput, sizeMultiplier float64, penalty int) int {
	sized := round(float64(RatedBase(in)) * sizeMultiplier)
	return ApplyPenalty(sized, penalty)
}

// RatedAutoLabel builds the generated part of a rated meal's note.
func RatedAutoLabel(in RatedInput, s Size, spoonfuls int) string {
	var label string
	switch s {
	case SizeTaste:
		label = fmt.Sprintf("Taste (%d %s)", spoonfuls, plural(spoonfuls, "spoonful", "spoonfuls"))
	case SizeSmall:
		label = "Small meal"
	case SizeLarge:
		label = "Large meal"
	default:
		label = "Medium meal"
	}
	if in.Guided() && in.Answers.Complete() {
		return label + " (guided rating)"
	}
	if r, ok := LookupRating(in.Rating); ok && !in.Guided() {
		return label + noteSeparator + r.Label
	}
	return label
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
