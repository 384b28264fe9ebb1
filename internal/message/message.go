package message

import (
	"strings"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
)

const (
	// NoEvents 予定がない日のメッセージ
	NoEvents = "No events today."

	allDayLabel = "All day"
	// 開始と終了の区切りはen dash (U+2013)
	rangeSeparator = "–"
)

// Build イベント一覧から通知メッセージを構築
// 1イベント1行、入力順のまま改行で連結する
func Build(events []domain.Event) string {
	if len(events) == 0 {
		return NoEvents
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, formatLine(event))
	}
	return strings.Join(lines, "\n")
}

// formatLine イベント1件を1行に整形
func formatLine(event domain.Event) string {
	var builder strings.Builder

	if event.AllDay {
		builder.WriteString(allDayLabel)
	} else {
		builder.WriteString(event.Start)
		builder.WriteString(rangeSeparator)
		builder.WriteString(event.End)
	}

	builder.WriteString(": ")
	title := event.Title
	if title == "" {
		title = domain.NoTitle
	}
	builder.WriteString(title)

	// 場所情報があれば追加
	if event.Location != "" {
		builder.WriteString(" @ ")
		builder.WriteString(event.Location)
	}

	return builder.String()
}
