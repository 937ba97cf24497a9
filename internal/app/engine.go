package app

import (
	"fmt"

	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
)

// Outcome is the result of a successful Advance.
// When Completed is set, Answers holds the finished answer set for the calculator.
type Outcome struct {
	Completed bool
	StepIndex int
	Answers   domain.AnswerSet
}

// Engine is the quiz progression state machine. It performs no I/O.
type Engine struct {
	catalog *catalog.Catalog
	state   domain.SessionState
}

// NewEngine starts a session at step 0 with no answers.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c, state: freshState()}
}

func freshState() domain.SessionState {
	return domain.SessionState{Answers: domain.AnswerSet{}}
}

// Restore replaces the engine state with a persisted snapshot. Out-of-range
// steps and answers for keys the catalog no longer has are dropped.
func (e *Engine) Restore(state domain.SessionState) {
	restored := freshState()
	for k, v := range state.Answers {
		i, ok := e.catalog.IndexOfKey(k)
		if !ok {
			continue
		}
		q, _ := e.catalog.QuestionAt(i)
		if v.Kind() == q.Kind {
			restored.Answers[k] = v
		}
	}
	if state.CurrentStepIndex >= 0 && state.CurrentStepIndex < e.catalog.Len() {
		restored.CurrentStepIndex = state.CurrentStepIndex
		restored.Complete = state.Complete
	}
	e.state = restored
}

// State returns a snapshot safe to persist or hand out.
func (e *Engine) State() domain.SessionState {
	s := e.state
	s.Answers = e.state.Answers.Clone()
	return s
}

func (e *Engine) StepIndex() int {
	return e.state.CurrentStepIndex
}

func (e *Engine) Complete() bool {
	return e.state.Complete
}

// CurrentQuestion is the question at the current step.
func (e *Engine) CurrentQuestion() (domain.Question, error) {
	return e.catalog.QuestionAt(e.state.CurrentStepIndex)
}

// Answer returns the stored answer for key, if any.
func (e *Engine) Answer(key string) (domain.Answer, bool) {
	a, ok := e.state.Answers[key]
	return a, ok
}

// SetAnswer stores value under key, replacing any previous value. Option
// membership is not checked here; Advance does that.
func (e *Engine) SetAnswer(key string, value domain.Answer) error {
	if e.state.Complete {
		return domain.ErrSessionComplete
	}
	q, err := e.question(key)
	if err != nil {
		return err
	}
	if value == nil || value.Kind() != q.Kind {
		return fmt.Errorf("%w: %s expects %s", domain.ErrAnswerKindMismatch, key, q.Kind)
	}
	if n, ok := value.(domain.Number); ok && !n.Finite() {
		return &domain.ValidationError{Key: key, Reason: domain.NumberNotFinite}
	}
	if sel, ok := value.(domain.Selection); ok {
		value = append(domain.Selection(nil), sel...)
	}
	e.state.Answers[key] = value
	return nil
}

// Toggle flips option in the multi-choice answer under key.
func (e *Engine) Toggle(key, option string) error {
	if e.state.Complete {
		return domain.ErrSessionComplete
	}
	q, err := e.question(key)
	if err != nil {
		return err
	}
	if q.Kind != domain.KindMultiChoice {
		return fmt.Errorf("%w: %s is %s", domain.ErrAnswerKindMismatch, key, q.Kind)
	}
	current, _ := e.state.Answers[key].(domain.Selection)
	e.state.Answers[key] = current.Toggle(option)
	return nil
}

// ValidateCurrent checks the current step's answer against its question kind.
// It returns nil or a *domain.ValidationError.
func (e *Engine) ValidateCurrent() error {
	q, err := e.CurrentQuestion()
	if err != nil {
		return err
	}
	return validateAnswer(q, e.state.Answers[q.Key])
}

func validateAnswer(q domain.Question, value domain.Answer) error {
	invalid := func(reason string) error {
		return &domain.ValidationError{Key: q.Key, Reason: reason}
	}
	switch q.Kind {
	case domain.KindSingleChoice:
		c, ok := value.(domain.Choice)
		if !ok || c == "" {
			return invalid(domain.AnswerRequired)
		}
		if !q.HasOption(string(c)) {
			return invalid(fmt.Sprintf("%q is not a valid option", string(c)))
		}
	case domain.KindMultiChoice:
		sel, ok := value.(domain.Selection)
		if !ok || len(sel) == 0 {
			return invalid(domain.AnswerRequired)
		}
		for _, o := range sel {
			if !q.HasOption(o) {
				return invalid(fmt.Sprintf("%q is not a valid option", o))
			}
		}
	case domain.KindNumeric:
		n, ok := value.(domain.Number)
		if !ok || n.Unanswered() {
			return invalid(domain.AnswerRequired)
		}
		if !n.Finite() {
			return invalid(domain.NumberNotFinite)
		}
	}
	return nil
}

// Advance moves to the next step, or to Complete from the last step.
// An invalid current answer leaves the state untouched.
func (e *Engine) Advance() (Outcome, error) {
	if e.state.Complete {
		return Outcome{}, domain.ErrSessionComplete
	}
	if err := e.ValidateCurrent(); err != nil {
		return Outcome{StepIndex: e.state.CurrentStepIndex}, err
	}
	if e.IsLastStep() {
		e.state.Complete = true
		return Outcome{
			Completed: true,
			StepIndex: e.state.CurrentStepIndex,
			Answers:   e.state.Answers.Clone(),
		}, nil
	}
	e.state.CurrentStepIndex++
	return Outcome{StepIndex: e.state.CurrentStepIndex}, nil
}

// GoBack steps back once, stopping at 0. Rewinding a completed quiz is not supported.
func (e *Engine) GoBack() error {
	if e.state.Complete {
		return domain.ErrSessionComplete
	}
	if e.state.CurrentStepIndex > 0 {
		e.state.CurrentStepIndex--
	}
	return nil
}

// Reset returns to step 0 with no answers.
func (e *Engine) Reset() {
	e.state = freshState()
}

func (e *Engine) IsLastStep() bool {
	return e.state.CurrentStepIndex == e.catalog.Len()-1
}

// ProgressFraction is (step+1)/len.
func (e *Engine) ProgressFraction() float64 {
	return float64(e.state.CurrentStepIndex+1) / float64(e.catalog.Len())
}

// FirstUnanswered returns the earliest step whose stored answer does not validate.
func (e *Engine) FirstUnanswered() (int, bool) {
	for i := 0; i < e.catalog.Len(); i++ {
		q, _ := e.catalog.QuestionAt(i)
		if validateAnswer(q, e.state.Answers[q.Key]) != nil {
			return i, true
		}
	}
	return 0, false
}

// JumpTo moves an in-progress session to step i.
func (e *Engine) JumpTo(i int) error {
	if _, err := e.catalog.QuestionAt(i); err != nil {
		return err
	}
	e.state.CurrentStepIndex = i
	e.state.Complete = false
	return nil
}

func (e *Engine) question(key string) (domain.Question, error) {
	i, ok := e.catalog.IndexOfKey(key)
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, key)
	}
	return e.catalog.QuestionAt(i)
}
