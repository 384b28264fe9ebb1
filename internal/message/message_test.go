package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
)

// --- Build テスト ---

func TestBuild_NoEvents(t *testing.T) {
	assert.Equal(t, "No events today.", Build(nil))
	assert.Equal(t, "No events today.", Build([]domain.Event{}))
}

func TestBuild_AllDayEvent(t *testing.T) {
	events := []domain.Event{
		{Title: "Standup", AllDay: true},
	}
	assert.Equal(t, "All day: Standup", Build(events))
}

func TestBuild_TimedEventWithLocation(t *testing.T) {
	events := []domain.Event{
		{Title: "Sync", Start: "09:00", End: "10:00", Location: "Room A"},
	}
	assert.Equal(t, "09:00–10:00: Sync @ Room A", Build(events))
}

func TestBuild_StartEndUsedVerbatim(t *testing.T) {
	events := []domain.Event{
		{
			Title: "Review",
			Start: "2024-01-15T10:00:00.000+09:00",
			End:   "2024-01-15T11:00:00.000+09:00",
		},
	}
	assert.Equal(t, "2024-01-15T10:00:00.000+09:00–2024-01-15T11:00:00.000+09:00: Review", Build(events))
}

func TestBuild_AllDayIgnoresStartEnd(t *testing.T) {
	events := []domain.Event{
		{Title: "休暇", AllDay: true, Start: "09:00", End: "10:00"},
	}
	assert.Equal(t, "All day: 休暇", Build(events))
}

func TestBuild_EmptyTitle(t *testing.T) {
	events := []domain.Event{
		{AllDay: true},
	}
	assert.Equal(t, "All day: (No title)", Build(events))
}

func TestBuild_NoLocationSuffix(t *testing.T) {
	result := Build([]domain.Event{
		{Title: "Sync", Start: "09:00", End: "10:00"},
	})
	assert.Equal(t, "09:00–10:00: Sync", result)
	assert.NotContains(t, result, " @ ")
}

func TestBuild_PreservesOrder(t *testing.T) {
	events := []domain.Event{
		{Title: "Late", Start: "17:00", End: "18:00"},
		{Title: "Holiday", AllDay: true},
		{Title: "Early", Start: "08:00", End: "08:30", Location: "Cafe"},
	}

	result := Build(events)

	lines := strings.Split(result, "\n")
	assert.Equal(t, []string{
		"17:00–18:00: Late",
		"All day: Holiday",
		"08:00–08:30: Early @ Cafe",
	}, lines)
	assert.False(t, strings.HasSuffix(result, "\n"))
}
