// Package metrics derives health estimates from a completed answer set.
// Every function is pure. Inputs are not range-checked: zero or negative
// body measurements produce numbers, not errors.
package metrics

import (
	"fmt"
	"strings"

	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
)

// Harris-Benedict coefficients. One coefficient set is used for everyone.
const (
	bmrBase   = 88.362
	bmrWeight = 13.397
	bmrHeight = 4.799
	bmrAge    = 5.677

	waterMLPerKG    = 35
	goalCalorieStep = 500
)

// ActivityFactor pairs the protein factor (g per kg) with the calorie multiplier.
type ActivityFactor struct {
	Protein  float64
	Calories float64
}

var activityFactors = map[string]ActivityFactor{
	catalog.ActivitySedentary:        {Protein: 0.8, Calories: 1.2},
	catalog.ActivityLightlyActive:    {Protein: 1.0, Calories: 1.375},
	catalog.ActivityModeratelyActive: {Protein: 1.2, Calories: 1.55},
	catalog.ActivityVeryActive:       {Protein: 1.6, Calories: 1.725},
}

// DefaultActivityFactor applies to activity levels missing from the table.
var DefaultActivityFactor = ActivityFactor{Protein: 1.0, Calories: 1.2}

var nutritionSuggestions = map[string][]string{
	normalizeGoal(catalog.GoalLose): {
		"Prioritize lean proteins and vegetables",
		"Avoid refined carbohydrates",
		"Have 5-6 smaller meals a day",
		"Include fiber in every meal",
	},
	normalizeGoal(catalog.GoalGain): {
		"Increase protein and complex carbohydrate intake",
		"Add healthy fats such as avocado and nuts",
		"Have larger and more frequent meals",
		"Drink protein shakes between meals",
	},
	normalizeGoal(catalog.GoalMaintain): {
		"Keep a balanced diet",
		"Distribute macronutrients evenly",
		"Keep regular meal times",
		"Vary your protein sources",
	},
}

// BMR estimates basal metabolic rate in kcal/day.
func BMR(weightKG, heightCM, ageYears float64) float64 {
	return bmrBase + bmrWeight*weightKG + bmrHeight*heightCM - bmrAge*ageYears
}

// ActivityFactorFor looks up level, falling back to DefaultActivityFactor.
func ActivityFactorFor(level string) ActivityFactor {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return DefaultActivityFactor
}

func IdealWeight(heightCM float64) float64 {
	return (heightCM - 100) * 0.9
}

func WaterIntakeLiters(weightKG float64) float64 {
	return weightKG * waterMLPerKG / 1000
}

func ProteinIntake(weightKG, proteinFactor float64) float64 {
	return weightKG * proteinFactor
}

func DailyCalories(bmr, calorieMultiplier float64) float64 {
	return bmr * calorieMultiplier
}

// GoalAdjustedCalories shifts the daily target by 500 kcal for weight loss or gain.
func GoalAdjustedCalories(dailyCalories float64, goal string) float64 {
	switch normalizeGoal(goal) {
	case normalizeGoal(catalog.GoalLose):
		return dailyCalories - goalCalorieStep
	case normalizeGoal(catalog.GoalGain):
		return dailyCalories + goalCalorieStep
	default:
		return dailyCalories
	}
}

// NutritionSuggestions returns the fixed tips for goal; unknown goals get none.
func NutritionSuggestions(goal string) []string {
	tips := nutritionSuggestions[normalizeGoal(goal)]
	return append([]string{}, tips...)
}

func normalizeGoal(goal string) string {
	return strings.ToLower(strings.TrimSpace(goal))
}

// Report is every figure derived from one answer set.
type Report struct {
	WeightKG          float64  `json:"weightKg"`
	BMR               float64  `json:"bmr"`
	DailyCalories     float64  `json:"dailyCalories"`
	GoalCalories      float64  `json:"goalCalories"`
	ProteinIntake     float64  `json:"proteinIntake"`
	IdealWeight       float64  `json:"idealWeight"`
	WeightDifference  float64  `json:"weightDifference"`
	WaterIntakeLiters float64  `json:"waterIntakeLiters"`
	Goal              string   `json:"goal"`
	Suggestions       []string `json:"suggestions"`
}

// RequiredKeys lists, in check order, the answers Compute needs.
var RequiredKeys = []string{
	catalog.KeyWeight,
	catalog.KeyHeight,
	catalog.KeyAge,
	catalog.KeyActivityLevel,
	catalog.KeyGoal,
}

// requiredKinds is the answer kind Compute reads for each required key.
var requiredKinds = map[string]domain.Kind{
	catalog.KeyWeight:        domain.KindNumeric,
	catalog.KeyHeight:        domain.KindNumeric,
	catalog.KeyAge:           domain.KindNumeric,
	catalog.KeyActivityLevel: domain.KindSingleChoice,
	catalog.KeyGoal:          domain.KindSingleChoice,
}

// CheckCatalog fails when c lacks a required key or asks it with another kind.
// A catalog that fails here can be completed but never produces a report.
func CheckCatalog(c *catalog.Catalog) error {
	for _, key := range RequiredKeys {
		i, ok := c.IndexOfKey(key)
		if !ok {
			return fmt.Errorf("catalog is missing required question %q", key)
		}
		q, err := c.QuestionAt(i)
		if err != nil {
			return err
		}
		if want := requiredKinds[key]; q.Kind != want {
			return fmt.Errorf("catalog question %q is %s, want %s", key, q.Kind, want)
		}
	}
	return nil
}

// Compute derives a Report. It fails with *domain.IncompleteInputError naming
// the first required key that is missing.
func Compute(answers domain.AnswerSet) (Report, error) {
	if key, ok := FirstMissing(answers); !ok {
		return Report{}, &domain.IncompleteInputError{Key: key}
	}
	weight, _ := answers.Number(catalog.KeyWeight)
	height, _ := answers.Number(catalog.KeyHeight)
	age, _ := answers.Number(catalog.KeyAge)
	level, _ := answers.Choice(catalog.KeyActivityLevel)
	goal, _ := answers.Choice(catalog.KeyGoal)

	factor := ActivityFactorFor(level)
	bmr := BMR(weight, height, age)
	daily := DailyCalories(bmr, factor.Calories)
	ideal := IdealWeight(height)

	return Report{
		WeightKG:          weight,
		BMR:               bmr,
		DailyCalories:     daily,
		GoalCalories:      GoalAdjustedCalories(daily, goal),
		ProteinIntake:     ProteinIntake(weight, factor.Protein),
		IdealWeight:       ideal,
		WeightDifference:  weight - ideal,
		WaterIntakeLiters: WaterIntakeLiters(weight),
		Goal:              goal,
		Suggestions:       NutritionSuggestions(goal),
	}, nil
}

// FirstMissing returns the first required key without a usable answer.
// ok is true when every required key is present.
func FirstMissing(answers domain.AnswerSet) (key string, ok bool) {
	for _, k := range RequiredKeys {
		switch k {
		case catalog.KeyActivityLevel, catalog.KeyGoal:
			if _, present := answers.Choice(k); !present {
				return k, false
			}
		default:
			if _, present := answers.Number(k); !present {
				return k, false
			}
		}
	}
	return "", true
}
