package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/discord-calendar-notifier/internal/config"
	"github.com/k-negishi/discord-calendar-notifier/internal/gateway"
)

func TestNewEventSource_Command(t *testing.T) {
	cfg := &config.Config{EventSource: config.SourceCommand, ProducerPath: "/opt/calendar"}

	source, err := NewEventSource(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &gateway.CommandEventSource{}, source)
}

func TestNewEventSource_GoogleInvalidCredentials(t *testing.T) {
	cfg := &config.Config{
		EventSource:       config.SourceGoogle,
		GoogleCredentials: "not valid json",
		CalendarID:        "primary",
		Timezone:          time.UTC,
	}

	_, err := NewEventSource(context.Background(), cfg)
	var producerErr *gateway.ProducerError
	require.ErrorAs(t, err, &producerErr)
	assert.Equal(t, gateway.LaunchFailure, producerErr.Kind)
}

func TestNewNotifier(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &gateway.StdoutNotifier{}, NewNotifier(&config.Config{DryRun: true}, &buf))
	assert.IsType(t, &gateway.DiscordNotifier{}, NewNotifier(&config.Config{
		WebhookURL:     "https://discord.example/hook",
		WebhookTimeout: config.DefaultWebhookTimeout,
	}, &buf))
}
