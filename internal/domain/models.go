package domain

import "time"

// Kind is the answer shape a question expects.
type Kind string

const (
	KindSingleChoice Kind = "single-choice"
	KindMultiChoice  Kind = "multi-choice"
	KindNumeric      Kind = "numeric"
)

// Question is a single catalog entry. Title, ImageRef and Placeholder are display metadata.
type Question struct {
	Key         string   `json:"key" yaml:"key" validate:"required"`
	Kind        Kind     `json:"kind" yaml:"kind" validate:"required,oneof=single-choice multi-choice numeric"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty" validate:"dive,required"`
	Title       string   `json:"title" yaml:"title"`
	ImageRef    string   `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// SessionState is the persisted shape of a quiz session.
// CurrentStepIndex always addresses a catalog entry; Complete marks the terminal state.
type SessionState struct {
	CurrentStepIndex int       `json:"currentStepIndex"`
	Answers          AnswerSet `json:"answers"`
	Complete         bool      `json:"complete,omitempty"`
}

// QuizResult is one history entry. It is never mutated after creation.
type QuizResult struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	BMR               float64   `json:"bmr"`
	ProteinIntake     float64   `json:"proteinIntake"`
	IdealWeight       float64   `json:"idealWeight"`
	WaterIntakeLiters float64   `json:"waterIntakeLiters"`
}

// Record names used in durable storage.
const (
	RecordSession = "quiz-storage"
	RecordHistory = "quiz-history"
)
