package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody エラー時に読み込むレスポンスボディの上限
const maxErrorBody = 64 << 10

// DeliveryError Webhookが 200/204 以外を返した
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("Webhook failed: HTTP %d\n%s", e.StatusCode, e.Body)
}

// TransportError タイムアウトや接続失敗などで応答を受け取れなかった
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Webhookリクエストの送信に失敗しました: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DiscordNotifier Discord Webhookを使用したNotifierの実装
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// webhookMessage Webhookに送信するリクエスト構造体
type webhookMessage struct {
	Content string `json:"content"`
}

// NewDiscordNotifier Discord通知クライアントを作成
func NewDiscordNotifier(webhookURL string, timeout time.Duration) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send メッセージをWebhookへPOSTし、HTTPステータスコードを返す
func (n *DiscordNotifier) Send(ctx context.Context, content string) (int, error) {
	requestBody, err := json.Marshal(webhookMessage{Content: content})
	if err != nil {
		return 0, fmt.Errorf("リクエストボディのJSON変換に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(requestBody))
	if err != nil {
		return 0, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		slog.Debug("Webhookへの送信が完了しました", slog.Int("status", resp.StatusCode))
		return resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		slog.Warn("エラーレスポンスの読み込みに失敗しました", slog.Any("error", err))
	}
	return resp.StatusCode, &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
}

// StdoutNotifier 送信せずにメッセージを書き出すNotifierの実装（ドライラン用）
type StdoutNotifier struct {
	w io.Writer
}

// NewStdoutNotifier ドライラン用の通知クライアントを作成
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	return &StdoutNotifier{w: w}
}

// Send メッセージを書き出す。HTTP送信は行わないためステータスは0
func (n *StdoutNotifier) Send(_ context.Context, content string) (int, error) {
	if _, err := fmt.Fprintln(n.w, content); err != nil {
		return 0, err
	}
	return 0, nil
}
