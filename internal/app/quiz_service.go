package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/metrics"
)

// QuizService is the single-user facade over the engine, calculator and history.
// Every mutation is persisted before it returns; if the save fails the in-memory
// state is rolled back. It is not safe for concurrent use.
type QuizService struct {
	engine  *Engine
	storage Storage
	history *History
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewQuizService(c *catalog.Catalog, storage Storage, logger *zap.Logger) *QuizService {
	return NewQuizServiceWithClock(c, storage, logger, time.Now)
}

// NewQuizServiceWithClock is for deterministic result timestamps in tests.
func NewQuizServiceWithClock(c *catalog.Catalog, storage Storage, logger *zap.Logger, now func() time.Time) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		engine:  NewEngine(c),
		storage: storage,
		history: NewHistory(storage, logger),
		logger:  logger,
		now:     now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Resume loads the persisted session. Absent or unreadable data starts a fresh
// session; a read failure also starts fresh but is returned to the caller.
func (s *QuizService) Resume(ctx context.Context) error {
	data, err := s.storage.Load(ctx, domain.RecordSession)
	if errors.Is(err, domain.ErrRecordNotFound) {
		s.engine.Reset()
		return nil
	}
	if err != nil {
		s.engine.Reset()
		return &domain.PersistenceError{Op: "load", Record: domain.RecordSession, Err: err}
	}
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("discarding unreadable session", zap.Error(err))
		s.engine.Reset()
		return nil
	}
	s.engine.Restore(state)
	s.logger.Debug("session resumed",
		zap.Int("step", s.engine.StepIndex()),
		zap.Bool("complete", s.engine.Complete()))
	return nil
}

func (s *QuizService) State() domain.SessionState {
	return s.engine.State()
}

func (s *QuizService) Complete() bool {
	return s.engine.Complete()
}

func (s *QuizService) CurrentQuestion() (domain.Question, error) {
	return s.engine.CurrentQuestion()
}

// CurrentAnswer is the stored answer for the current question, if any.
func (s *QuizService) CurrentAnswer() (domain.Answer, bool) {
	q, err := s.engine.CurrentQuestion()
	if err != nil {
		return nil, false
	}
	return s.engine.Answer(q.Key)
}

func (s *QuizService) ProgressFraction() float64 {
	return s.engine.ProgressFraction()
}

// IsLastStep reports whether the next successful advance completes the quiz.
func (s *QuizService) IsLastStep() bool {
	return s.engine.IsLastStep()
}

func (s *QuizService) ValidateCurrent() error {
	return s.engine.ValidateCurrent()
}

func (s *QuizService) SetAnswer(ctx context.Context, key string, value domain.Answer) error {
	return s.mutate(ctx, func(e *Engine) error { return e.SetAnswer(key, value) })
}

// Toggle flips option in the current question's selection when key is empty.
func (s *QuizService) Toggle(ctx context.Context, key, option string) error {
	if key == "" {
		q, err := s.engine.CurrentQuestion()
		if err != nil {
			return err
		}
		key = q.Key
	}
	return s.mutate(ctx, func(e *Engine) error { return e.Toggle(key, option) })
}

func (s *QuizService) Advance(ctx context.Context) (Outcome, error) {
	var out Outcome
	err := s.mutate(ctx, func(e *Engine) error {
		var err error
		out, err = e.Advance()
		return err
	})
	if err != nil {
		return Outcome{StepIndex: s.engine.StepIndex()}, err
	}
	if out.Completed {
		s.logger.Info("quiz complete", zap.Int("answers", len(out.Answers)))
	}
	return out, nil
}

// SubmitAndAdvance stores value for the current question and advances.
// A rejected value stays stored so the user can correct it.
func (s *QuizService) SubmitAndAdvance(ctx context.Context, value domain.Answer) (Outcome, error) {
	q, err := s.engine.CurrentQuestion()
	if err != nil {
		return Outcome{}, err
	}
	if err := s.SetAnswer(ctx, q.Key, value); err != nil {
		return Outcome{StepIndex: s.engine.StepIndex()}, err
	}
	return s.Advance(ctx)
}

func (s *QuizService) GoBack(ctx context.Context) error {
	return s.mutate(ctx, func(e *Engine) error { return e.GoBack() })
}

func (s *QuizService) Reset(ctx context.Context) error {
	return s.mutate(ctx, func(e *Engine) error {
		e.Reset()
		return nil
	})
}

// ComputeAndRecord derives the report for answers and appends the result to history.
func (s *QuizService) ComputeAndRecord(ctx context.Context, answers domain.AnswerSet) (metrics.Report, domain.QuizResult, error) {
	report, err := metrics.Compute(answers)
	if err != nil {
		return metrics.Report{}, domain.QuizResult{}, err
	}
	result := domain.QuizResult{
		ID:                s.newID(),
		Timestamp:         s.now().UTC(),
		BMR:               report.BMR,
		ProteinIntake:     report.ProteinIntake,
		IdealWeight:       report.IdealWeight,
		WaterIntakeLiters: report.WaterIntakeLiters,
	}
	if _, err := s.history.Append(ctx, result); err != nil {
		return report, domain.QuizResult{}, err
	}
	s.logger.Info("result recorded", zap.String("id", result.ID), zap.Float64("bmr", result.BMR))
	return report, result, nil
}

// Results computes and records the report for a completed session. When the
// answers are incomplete the session is sent back to the missing question,
// or to the first unanswered one when the catalog lacks that key, and the
// *domain.IncompleteInputError is returned.
func (s *QuizService) Results(ctx context.Context) (metrics.Report, domain.QuizResult, error) {
	if !s.engine.Complete() {
		return metrics.Report{}, domain.QuizResult{}, domain.ErrNotComplete
	}
	report, result, err := s.ComputeAndRecord(ctx, s.engine.State().Answers)
	var incomplete *domain.IncompleteInputError
	if errors.As(err, &incomplete) {
		i, ok := s.engine.catalog.IndexOfKey(incomplete.Key)
		if !ok {
			i, ok = s.engine.FirstUnanswered()
		}
		if !ok {
			s.logger.Error("incomplete answers with no question to return to", zap.String("key", incomplete.Key))
			return report, result, err
		}
		if jumpErr := s.mutate(ctx, func(e *Engine) error { return e.JumpTo(i) }); jumpErr != nil {
			return report, result, jumpErr
		}
		s.logger.Warn("incomplete answers, returning to question", zap.String("key", incomplete.Key), zap.Int("step", i))
	}
	return report, result, err
}

// History exposes the result log.
func (s *QuizService) History() *History {
	return s.history
}

// mutate applies fn and persists the new state, restoring the previous state on failure.
func (s *QuizService) mutate(ctx context.Context, fn func(*Engine) error) error {
	before := s.engine.State()
	if err := fn(s.engine); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		s.engine.Restore(before)
		return err
	}
	return nil
}

func (s *QuizService) persist(ctx context.Context) error {
	data, err := json.Marshal(s.engine.State())
	if err != nil {
		return &domain.PersistenceError{Op: "save", Record: domain.RecordSession, Err: err}
	}
	if err := s.storage.Save(ctx, domain.RecordSession, data); err != nil {
		s.logger.Error("session save failed", zap.Error(err))
		return &domain.PersistenceError{Op: "save", Record: domain.RecordSession, Err: err}
	}
	return nil
}
