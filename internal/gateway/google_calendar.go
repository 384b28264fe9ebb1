package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k-negishi/discord-calendar-notifier/internal/domain"
)

// googleSource ProducerError に記録する取得元名
const googleSource = "google-calendar"

// EventsProvider カレンダーAPIからイベント一覧を取得する
type EventsProvider interface {
	ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error)
}

// serviceEventsProvider calendar.Service を使用した EventsProvider の実装
type serviceEventsProvider struct {
	service *calendar.Service
}

func (p *serviceEventsProvider) ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	events, err := p.service.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50). // 1日の予定上限を50件に設定
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

// GoogleCalendarEventSource Google Calendar APIを使用したEventSourceの実装
type GoogleCalendarEventSource struct {
	provider   EventsProvider
	calendarID string
	timezone   *time.Location
	clock      func() time.Time
}

// NewGoogleCalendarEventSource サービスアカウント認証でイベント取得元を作成
func NewGoogleCalendarEventSource(ctx context.Context, credentialsJSON []byte, calendarID string, timezone *time.Location) (*GoogleCalendarEventSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google認証情報の読み込みに失敗しました: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("google Calendar APIサービスの作成に失敗しました: %w", err)
	}

	return NewGoogleCalendarEventSourceWithProvider(&serviceEventsProvider{service: service}, calendarID, timezone), nil
}

// NewGoogleCalendarEventSourceWithProvider 任意の EventsProvider からイベント取得元を作成
func NewGoogleCalendarEventSourceWithProvider(provider EventsProvider, calendarID string, timezone *time.Location) *GoogleCalendarEventSource {
	return &GoogleCalendarEventSource{
		provider:   provider,
		calendarID: calendarID,
		timezone:   timezone,
		clock:      time.Now,
	}
}

// FetchSnapshot 今日の予定を開始時刻順に取得
func (s *GoogleCalendarEventSource) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	now := s.clock().In(s.timezone)

	// 開始時刻: 当日00:00:00 - inclusive、終了時刻: 翌日00:00:00 - exclusive
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.timezone)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	items, err := s.provider.ListEvents(ctx, s.calendarID, startOfDay.Format(time.RFC3339), endOfDay.Format(time.RFC3339))
	if err != nil {
		return domain.Snapshot{}, &ProducerError{
			Kind:   LaunchFailure,
			Source: googleSource,
			Err:    fmt.Errorf("カレンダーイベントの取得に失敗しました: %w", err),
		}
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		event, err := convertToEvent(item)
		if err != nil {
			slog.Warn("イベントの変換をスキップしました", slog.String("id", item.Id), slog.Any("error", err))
			continue
		}
		events = append(events, event)
	}

	return domain.Snapshot{
		Date:   startOfDay.Format("2006-01-02"),
		Events: events,
	}, nil
}

// convertToEvent Google Calendar APIのイベントをドメインエンティティに変換
// 時刻はAPIが返した文字列をそのまま使用する
func convertToEvent(item *calendar.Event) (domain.Event, error) {
	if item.Start == nil || item.End == nil {
		return domain.Event{}, fmt.Errorf("開始時刻または終了時刻が設定されていません")
	}

	event := domain.Event{
		Title:    item.Summary,
		Location: item.Location,
	}
	if event.Title == "" {
		event.Title = domain.NoTitle
	}

	switch {
	case item.Start.DateTime != "":
		event.Start = item.Start.DateTime
		event.End = item.End.DateTime
		if event.End == "" {
			event.End = item.End.Date
		}
	case item.Start.Date != "":
		event.AllDay = true
	default:
		return domain.Event{}, fmt.Errorf("開始時刻が設定されていません")
	}

	return event, nil
}
