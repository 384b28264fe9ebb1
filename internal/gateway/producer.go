package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
)

// ProducerErrorKind イベント取得失敗の種別
type ProducerErrorKind int

const (
	// LaunchFailure 実行ファイルの起動に失敗
	LaunchFailure ProducerErrorKind = iota + 1
	// NonZeroExit プロデューサーが0以外の終了コードで終了
	NonZeroExit
	// MalformedPayload 出力がJSONとして解析できない
	MalformedPayload
)

func (k ProducerErrorKind) String() string {
	switch k {
	case LaunchFailure:
		return "launch failure"
	case NonZeroExit:
		return "non-zero exit"
	case MalformedPayload:
		return "malformed payload"
	default:
		return "unknown"
	}
}

// ProducerError イベント取得元のエラー
type ProducerError struct {
	Kind     ProducerErrorKind
	Source   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProducerError) Error() string {
	switch e.Kind {
	case NonZeroExit:
		msg := fmt.Sprintf("%s: %s (exit code %d)", e.Source, e.Kind, e.ExitCode)
		if e.Stderr != "" {
			msg += ": " + e.Stderr
		}
		return msg
	default:
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	}
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

// commandRunner 外部コマンドを実行し標準出力と標準エラーを返す
type commandRunner func(ctx context.Context, path string) (stdout, stderr []byte, err error)

// CommandEventSource 外部プロデューサー実行ファイルを使用したEventSourceの実装
type CommandEventSource struct {
	path string
	run  commandRunner
}

// NewCommandEventSource プロデューサーを引数なしで実行するイベント取得元を作成
func NewCommandEventSource(path string) *CommandEventSource {
	return &CommandEventSource{
		path: path,
		run:  runCommand,
	}
}

// FetchSnapshot プロデューサーを実行し、出力されたJSONを解析
func (s *CommandEventSource) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	slog.Debug("プロデューサーを実行します", slog.String("path", s.path))

	stdout, stderr, err := s.run(ctx, s.path)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return domain.Snapshot{}, &ProducerError{
				Kind:     NonZeroExit,
				Source:   s.path,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(string(stderr)),
				Err:      err,
			}
		}
		return domain.Snapshot{}, &ProducerError{Kind: LaunchFailure, Source: s.path, Err: err}
	}

	snapshot, err := DecodeSnapshot(stdout)
	if err != nil {
		return domain.Snapshot{}, &ProducerError{Kind: MalformedPayload, Source: s.path, Err: err}
	}
	return snapshot, nil
}

func runCommand(ctx context.Context, path string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// snapshotPayload プロデューサー出力のJSON構造体
type snapshotPayload struct {
	Date   *string        `json:"date"`
	Events []eventPayload `json:"events"`
}

// eventPayload プロデューサー出力のイベント
// 全項目省略可能なためポインタで受ける
type eventPayload struct {
	Title    *string `json:"title"`
	Location *string `json:"location"`
	AllDay   *bool   `json:"allDay"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
}

// DecodeSnapshot プロデューサーのJSON出力をドメインエンティティに変換
// 省略された項目はここでデフォルト値に置き換える
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Snapshot{}, fmt.Errorf("プロデューサー出力のJSON解析に失敗しました: %w", err)
	}

	events := make([]domain.Event, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, e.toDomain())
	}

	return domain.Snapshot{
		Date:   deref(payload.Date),
		Events: events,
	}, nil
}

func (e eventPayload) toDomain() domain.Event {
	title := deref(e.Title)
	if title == "" {
		title = domain.NoTitle
	}
	allDay := false
	if e.AllDay != nil {
		allDay = *e.AllDay
	}
	return domain.Event{
		Title:    title,
		Location: deref(e.Location),
		AllDay:   allDay,
		Start:    deref(e.Start),
		End:      deref(e.End),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
