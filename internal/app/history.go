package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wellness-quiz/internal/domain"
)

// HistoryLimit is the maximum number of results kept.
const HistoryLimit = 10

// History is the bounded, most-recent-first log of results, written through to storage.
type History struct {
	storage Storage
	logger  *zap.Logger
}

func NewHistory(storage Storage, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{storage: storage, logger: logger}
}

// Append prepends result and keeps the newest HistoryLimit entries.
// A failed read aborts before anything is written.
func (h *History) Append(ctx context.Context, result domain.QuizResult) ([]domain.QuizResult, error) {
	current, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	next := make([]domain.QuizResult, 0, HistoryLimit)
	next = append(next, result)
	next = append(next, current...)
	if len(next) > HistoryLimit {
		next = next[:HistoryLimit]
	}

	data, err := json.Marshal(next)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "save", Record: domain.RecordHistory, Err: err}
	}
	if err := h.storage.Save(ctx, domain.RecordHistory, data); err != nil {
		return nil, &domain.PersistenceError{Op: "save", Record: domain.RecordHistory, Err: err}
	}
	h.logger.Debug("history appended", zap.String("id", result.ID), zap.Int("entries", len(next)))
	return append([]domain.QuizResult(nil), next...), nil
}

// List returns the log, most recent first. Unreadable data yields an empty log.
func (h *History) List(ctx context.Context) ([]domain.QuizResult, error) {
	results, err := h.load(ctx)
	if err != nil {
		return []domain.QuizResult{}, err
	}
	return results, nil
}

// Clear empties the log.
func (h *History) Clear(ctx context.Context) error {
	if err := h.storage.Delete(ctx, domain.RecordHistory); err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return &domain.PersistenceError{Op: "save", Record: domain.RecordHistory, Err: err}
	}
	h.logger.Info("history cleared")
	return nil
}

func (h *History) load(ctx context.Context) ([]domain.QuizResult, error) {
	data, err := h.storage.Load(ctx, domain.RecordHistory)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return []domain.QuizResult{}, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Record: domain.RecordHistory, Err: err}
	}
	var results []domain.QuizResult
	if err := json.Unmarshal(data, &results); err != nil {
		h.logger.Warn("discarding unreadable history", zap.Error(fmt.Errorf("%w: %v", domain.ErrMalformedData, err)))
		return []domain.QuizResult{}, nil
	}
	if len(results) > HistoryLimit {
		results = results[:HistoryLimit]
	}
	if results == nil {
		results = []domain.QuizResult{}
	}
	return results, nil
}
