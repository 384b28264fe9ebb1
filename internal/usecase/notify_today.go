package usecase

import (
	"context"
	"log/slog"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
	"github.com/k-negishi/discord-calendar-notifier/internal/message"
)

// EventSource 今日のイベント一覧を取得するポート
type EventSource interface {
	FetchSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// Notifier メッセージを送信するポート
type Notifier interface {
	Send(ctx context.Context, content string) (int, error)
}

// Result 通知処理の結果
type Result struct {
	Date       string
	EventCount int
	Content    string
	StatusCode int
}

// NotifyTodayUseCase 今日の予定通知ユースケース
type NotifyTodayUseCase struct {
	source   EventSource
	notifier Notifier
}

// NewNotifyTodayUseCase ユースケースを生成
func NewNotifyTodayUseCase(source EventSource, notifier Notifier) *NotifyTodayUseCase {
	return &NotifyTodayUseCase{
		source:   source,
		notifier: notifier,
	}
}

// Execute 今日の予定を取得し、メッセージを整形して送信する
// 予定がない日も "No events today." を送信する
// エラーはログ出力せず呼び出し元へ返す
func (uc *NotifyTodayUseCase) Execute(ctx context.Context) (Result, error) {
	snapshot, err := uc.source.FetchSnapshot(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Date:       snapshot.Date,
		EventCount: len(snapshot.Events),
		Content:    message.Build(snapshot.Events),
	}
	slog.Info("予定を取得しました", slog.String("date", result.Date), slog.Int("events", result.EventCount))

	status, err := uc.notifier.Send(ctx, result.Content)
	result.StatusCode = status
	if err != nil {
		return result, err
	}

	return result, nil
}
