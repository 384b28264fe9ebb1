package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
)

// MockEventSource は EventSource のテスト用モック
type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

// MockNotifier は Notifier のテスト用モック
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, content string) (int, error) {
	args := m.Called(ctx, content)
	return args.Int(0), args.Error(1)
}

// --- Execute テスト ---

func TestExecute_Success(t *testing.T) {
	mockSource := new(MockEventSource)
	mockNotifier := new(MockNotifier)
	uc := NewNotifyTodayUseCase(mockSource, mockNotifier)

	snapshot := domain.Snapshot{
		Date: "2024-01-15",
		Events: []domain.Event{
			{Title: "Standup", AllDay: true},
			{Title: "Sync", Start: "09:00", End: "10:00", Location: "Room A"},
		},
	}
	content := "All day: Standup\n09:00–10:00: Sync @ Room A"

	mockSource.On("FetchSnapshot", mock.Anything).Return(snapshot, nil)
	mockNotifier.On("Send", mock.Anything, content).Return(204, nil)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Date: "2024-01-15", EventCount: 2, Content: content, StatusCode: 204}, result)
	mockSource.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestExecute_NoEvents_StillSends(t *testing.T) {
	mockSource := new(MockEventSource)
	mockNotifier := new(MockNotifier)
	uc := NewNotifyTodayUseCase(mockSource, mockNotifier)

	mockSource.On("FetchSnapshot", mock.Anything).Return(domain.Snapshot{Events: []domain.Event{}}, nil)
	mockNotifier.On("Send", mock.Anything, "No events today.").Return(200, nil)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EventCount)
	assert.Equal(t, 200, result.StatusCode)
	mockNotifier.AssertExpectations(t)
}

func TestExecute_SourceError(t *testing.T) {
	mockSource := new(MockEventSource)
	mockNotifier := new(MockNotifier)
	uc := NewNotifyTodayUseCase(mockSource, mockNotifier)

	mockSource.On("FetchSnapshot", mock.Anything).Return(domain.Snapshot{}, errors.New("producer error"))

	_, err := uc.Execute(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "producer error")
	mockNotifier.AssertNotCalled(t, "Send")
}

func TestExecute_NotifierError(t *testing.T) {
	mockSource := new(MockEventSource)
	mockNotifier := new(MockNotifier)
	uc := NewNotifyTodayUseCase(mockSource, mockNotifier)

	mockSource.On("FetchSnapshot", mock.Anything).Return(domain.Snapshot{}, nil)
	mockNotifier.On("Send", mock.Anything, "No events today.").Return(429, errors.New("rate limited"))

	result, err := uc.Execute(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 429, result.StatusCode)
	assert.Contains(t, err.Error(), "rate limited")
}
