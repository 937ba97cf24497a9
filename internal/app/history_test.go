package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/infra/memory"
)

// MockStorage is a testify mock of app.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Load(ctx context.Context, record string) ([]byte, error) {
	args := m.Called(ctx, record)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStorage) Save(ctx context.Context, record string, data []byte) error {
	args := m.Called(ctx, record, data)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, record string) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func result(i int) domain.QuizResult {
	return domain.QuizResult{
		ID:        fmt.Sprintf("r%d", i),
		Timestamp: time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		BMR:       1500 + float64(i),
	}
}

func TestHistoryKeepsTenMostRecent(t *testing.T) {
	ctx := context.Background()
	h := app.NewHistory(memory.NewStorage(), nil)

	for i := 1; i <= 13; i++ {
		_, err := h.Append(ctx, result(i))
		require.NoError(t, err)
	}

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, app.HistoryLimit)
	for i, r := range list {
		assert.Equal(t, fmt.Sprintf("r%d", 13-i), r.ID)
	}
}

func TestHistoryClear(t *testing.T) {
	ctx := context.Background()
	h := app.NewHistory(memory.NewStorage(), nil)
	require.NoError(t, h.Clear(ctx), "clearing an empty log is fine")

	for i := 0; i < 3; i++ {
		_, err := h.Append(ctx, result(i))
		require.NoError(t, err)
	}
	require.NoError(t, h.Clear(ctx))

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHistoryTreatsMalformedDataAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	require.NoError(t, store.Save(ctx, domain.RecordHistory, []byte(`{not json`)))
	h := app.NewHistory(store, nil)

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = h.Append(ctx, result(1))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHistoryReadFailureLeavesStoredDataUntouched(t *testing.T) {
	ctx := context.Background()
	store := new(MockStorage)
	store.On("Load", ctx, domain.RecordHistory).Return(nil, errors.New("disk on fire"))
	h := app.NewHistory(store, nil)

	_, err := h.Append(ctx, result(1))
	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "load", perr.Op)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)

	list, err := h.List(ctx)
	assert.Error(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestHistorySaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	store := new(MockStorage)
	store.On("Load", ctx, domain.RecordHistory).Return(nil, domain.ErrRecordNotFound)
	store.On("Save", ctx, domain.RecordHistory, mock.Anything).Return(errors.New("read-only"))
	h := app.NewHistory(store, nil)

	_, err := h.Append(ctx, result(1))
	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "save", perr.Op)
	store.AssertExpectations(t)
}
