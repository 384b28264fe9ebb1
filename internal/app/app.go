package app

import (
	"context"
	"io"

	"github.com/k-negishi/discord-calendar-notifier/internal/config"
	"github.com/k-negishi/discord-calendar-notifier/internal/gateway"
	"github.com/k-negishi/discord-calendar-notifier/internal/usecase"
)

// NewNotifyTodayUseCase 設定に応じたイベント取得元と通知先でユースケースを組み立てる
func NewNotifyTodayUseCase(ctx context.Context, cfg *config.Config, out io.Writer) (*usecase.NotifyTodayUseCase, error) {
	source, err := NewEventSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewNotifyTodayUseCase(source, NewNotifier(cfg, out)), nil
}

// NewEventSource 設定されたイベント取得元を作成
func NewEventSource(ctx context.Context, cfg *config.Config) (usecase.EventSource, error) {
	if cfg.EventSource == config.SourceGoogle {
		source, err := gateway.NewGoogleCalendarEventSource(ctx, []byte(cfg.GoogleCredentials), cfg.CalendarID, cfg.Timezone)
		if err != nil {
			return nil, &gateway.ProducerError{Kind: gateway.LaunchFailure, Source: "google-calendar", Err: err}
		}
		return source, nil
	}
	return gateway.NewCommandEventSource(cfg.ProducerPath), nil
}

// NewNotifier ドライラン時は out へ書き出し、それ以外は Discord へ送信する
func NewNotifier(cfg *config.Config, out io.Writer) usecase.Notifier {
	if cfg.DryRun {
		return gateway.NewStdoutNotifier(out)
	}
	return gateway.NewDiscordNotifier(cfg.WebhookURL, cfg.WebhookTimeout)
}
