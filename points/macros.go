package points

// Split is a macro proportion vector. Every table entry sums to 1.0.
type Split struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

// Macros is a per-macro point count.
type Macros struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
	Fiber   int `json:"fiber"`
}

// defaultSplit covers rated meals, standard meals and unknown categories.
var defaultSplit = Split{Protein: 0.25, Carbs: 0.40, Fat: 0.30, Fiber: 0.05}

// ProportionsFor returns the macro split attributed to a category's points.
func ProportionsFor(category string) Split {
	for _, c := range categories {
		if c.Key == category {
			return c.Macros
		}
	}
	return defaultSplit
}

// PhysiqueGoal is a named macro split used for targets.
type PhysiqueGoal struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Desc  string `json:"desc"`
	Split Split  `json:"split"`
}

var physiqueGoals = []PhysiqueGoal{
	{Key: "build_muscle", Label: "Build Muscle", Desc: "High protein to support muscle growth",
		Split: Split{Protein: 0.35, Carbs: 0.45, Fat: 0.15, Fiber: 0.05}},
	{Key: "lose_fat", Label: "Lose Fat", Desc: "Higher protein, moderate carbs",
		Split: Split{Protein: 0.40, Carbs: 0.30, Fat: 0.20, Fiber: 0.10}},
	{Key: "recomp", Label: "Recomposition", Desc: "Build muscle while losing fat",
		Split: Split{Protein: 0.35, Carbs: 0.35, Fat: 0.20, Fiber: 0.10}},
	{Key: "maintain", Label: "Maintain", Desc: "Balanced macro distribution",
		Split: Split{Protein: 0.25, Carbs: 0.45, Fat: 0.25, Fiber: 0.05}},
}

// PhysiqueGoals returns the physique goals in display order.
func PhysiqueGoals() []PhysiqueGoal {
	out := make([]PhysiqueGoal, len(physiqueGoals))
	copy(out, physiqueGoals)
	return out
}

// LookupPhysiqueGoal finds a physique goal by key.
func LookupPhysiqueGoal(key string) (PhysiqueGoal, bool) {
	for _, g := range physiqueGoals {
		if g.Key == key {
			return g, true
		}
	}
	return PhysiqueGoal{}, false
}

// MacroTargets splits dailyPoints by the physique goal. ok is false when the
// key is empty (macro tracking off) or unknown; callers should then hide
// macro targets rather than treat it as a failure.
func MacroTargets(dailyPoints int, goalKey string) (Macros, bool) {
	g, ok := LookupPhysiqueGoal(goalKey)
	if !ok {
		return Macros{}, false
	}
	d := float64(dailyPoints)
	return Macros{
		Protein: round(d * g.Split.Protein),
		Carbs:   round(d * g.Split.Carbs),
		Fat:     round(d * g.Split.Fat),
		Fiber:   round(d * g.Split.Fiber),
	}, true
}

// AggregateMacros attributes each entry's stored points across macros and
// totals them. Running sums stay unrounded; only the four totals are rounded.
func AggregateMacros(logs []FoodLogEntry) Macros {
	var protein, carbs, fat, fiber float64
	for _, e := range logs {
		s := ProportionsFor(e.Category)
		p := float64(e.Points)
		protein += p * s.Protein
		carbs += p * s.Carbs
		fat += p * s.Fat
		fiber += p * s.Fiber
	}
	return Macros{
		Protein: round(protein),
		Carbs:   round(carbs),
		Fat:     round(fat),
		Fiber:   round(fiber),
	}
}
