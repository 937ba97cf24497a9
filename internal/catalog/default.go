package catalog

import (
	"context"

	"wellness-quiz/internal/domain"
)

// Answer labels the metrics calculator depends on.
const (
	ActivitySedentary        = "Sedentary"
	ActivityLightlyActive    = "Lightly active"
	ActivityModeratelyActive = "Moderately active"
	ActivityVeryActive       = "Very active"

	GoalMaintain = "Maintain weight"
	GoalLose     = "Lose weight"
	GoalGain     = "Gain weight"
)

// Keys of the questions the metrics calculator reads.
const (
	KeyActivityLevel = "activityLevel"
	KeyAge           = "age"
	KeyGoal          = "goal"
	KeyHeight        = "height"
	KeyWeight        = "weight"
)

var defaultQuestions = []domain.Question{
	{
		Key:      KeyActivityLevel,
		Kind:     domain.KindSingleChoice,
		Title:    "What is your physical activity level?",
		Options:  []string{ActivitySedentary, ActivityLightlyActive, ActivityModeratelyActive, ActivityVeryActive},
		ImageRef: "https://images.unsplash.com/photo-1517836357463-d25dfeac3438?q=80&w=2940",
	},
	{
		Key:      "injuries",
		Kind:     domain.KindMultiChoice,
		Title:    "Do you have any injury or physical limitation?",
		Options:  []string{"Knee", "Back", "Shoulder", "None"},
		ImageRef: "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?q=80&w=2940",
	},
	{
		Key:         KeyAge,
		Kind:        domain.KindNumeric,
		Title:       "How old are you?",
		Placeholder: "Enter your age",
		ImageRef:    "https://picsum.photos/200",
	},
	{
		Key:      "medicalConditions",
		Kind:     domain.KindMultiChoice,
		Title:    "Do you have any medical condition?",
		Options:  []string{"Hypertension", "Diabetes", "High cholesterol", "None"},
		ImageRef: "https://images.unsplash.com/photo-1576091160550-2173dba999ef?q=80&w=2940",
	},
	{
		Key:      "supplementUse",
		Kind:     domain.KindSingleChoice,
		Title:    "Do you take dietary supplements?",
		Options:  []string{"Yes, regularly", "Sometimes", "No"},
		ImageRef: "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?q=80&w=2940",
	},
	{
		Key:      KeyGoal,
		Kind:     domain.KindSingleChoice,
		Title:    "What is your goal?",
		Options:  []string{GoalMaintain, GoalLose, GoalGain},
		ImageRef: "https://images.unsplash.com/photo-1476480862126-209bfaa8edc8?q=80&w=2940",
	},
	{
		Key:         "sleepHours",
		Kind:        domain.KindNumeric,
		Title:       "How many hours do you sleep per night on average?",
		Placeholder: "Enter the number of hours",
		ImageRef:    "https://images.unsplash.com/photo-1541781774459-bb2af2f05b55?q=80&w=2940",
	},
	{
		Key:      "stressLevel",
		Kind:     domain.KindSingleChoice,
		Title:    "How would you rate your stress level?",
		Options:  []string{"Low", "Moderate", "High"},
		ImageRef: "https://images.unsplash.com/photo-1541781774459-bb2af2f05b55?q=80&w=2940",
	},
	{
		Key:         KeyHeight,
		Kind:        domain.KindNumeric,
		Title:       "What is your height? (cm)",
		Placeholder: "Enter your height in centimeters",
		ImageRef:    "https://images.unsplash.com/photo-1588286840104-8957b019727f?q=80&w=2940",
	},
	{
		Key:         KeyWeight,
		Kind:        domain.KindNumeric,
		Title:       "What is your weight? (kg)",
		Placeholder: "Enter your weight in kilograms",
		ImageRef:    "https://images.unsplash.com/photo-1573790387438-4da905039392?q=80&w=2940",
	},
	{
		Key:      "dietaryRestrictions",
		Kind:     domain.KindMultiChoice,
		Title:    "Do you have dietary restrictions?",
		Options:  []string{"Vegetarian", "Vegan", "Gluten-free", "Lactose-free", "None"},
		ImageRef: "https://images.unsplash.com/photo-1490645935967-10de6ba17061?q=80&w=2940",
	},
}

var builtin = MustNew(defaultQuestions)

// Default returns the built-in questionnaire.
func Default() *Catalog {
	return builtin
}

// StaticLoader serves a catalog that is already in memory (useful for tests/demos).
type StaticLoader struct {
	catalog *Catalog
}

func NewStaticLoader(c *Catalog) *StaticLoader {
	if c == nil {
		c = builtin
	}
	return &StaticLoader{catalog: c}
}

func (l *StaticLoader) LoadCatalog(_ context.Context) (*Catalog, error) {
	return l.catalog, nil
}
