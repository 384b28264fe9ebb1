package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/k-negishi/discord-calendar-notifier/internal/app"
	"github.com/k-negishi/discord-calendar-notifier/internal/config"
	"github.com/k-negishi/discord-calendar-notifier/internal/gateway"
	"github.com/k-negishi/discord-calendar-notifier/internal/usecase"
)

// LambdaEvent Lambda実行時のイベント構造体
type LambdaEvent struct {
	// EventBridge Schedulerからの実行なので特に使用しない
}

// LambdaResponse Lambda実行結果のレスポンス
type LambdaResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// newUseCase テストで差し替え可能なユースケース生成関数
var newUseCase = func(ctx context.Context) (*usecase.NotifyTodayUseCase, error) {
	cfg, err := config.Load(ctx, config.Options{BaseDir: os.Getenv("LAMBDA_TASK_ROOT")})
	if err != nil {
		return nil, err
	}
	return app.NewNotifyTodayUseCase(ctx, cfg, os.Stdout)
}

// handler Lambda関数のメインハンドラー
func handler(ctx context.Context, _ LambdaEvent) (LambdaResponse, error) {
	uc, err := newUseCase(ctx)
	if err != nil {
		slog.Error("初期化に失敗しました", slog.Any("error", err))
		return LambdaResponse{
			StatusCode: 500,
			Message:    "設定読み込みエラー",
		}, err
	}

	result, err := uc.Execute(ctx)
	if err != nil {
		slog.Error("通知処理に失敗しました", slog.Any("error", err))
		var producerErr *gateway.ProducerError
		if errors.As(err, &producerErr) {
			return LambdaResponse{
				StatusCode: 500,
				Message:    "予定取得エラー",
			}, err
		}
		return LambdaResponse{
			StatusCode: 502,
			Message:    "Discord通知送信エラー",
		}, err
	}

	slog.Info("通知送信完了", slog.String("date", result.Date), slog.Int("events", result.EventCount), slog.Int("status", result.StatusCode))
	return LambdaResponse{
		StatusCode: 200,
		Message:    "通知送信完了",
	}, nil
}

func main() {
	lambda.Start(handler)
}
