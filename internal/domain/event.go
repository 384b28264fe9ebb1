package domain

// NoTitle タイトル未設定のイベントに使用するプレースホルダー
const NoTitle = "(No title)"

// Event カレンダーイベントのドメインエンティティ
// Start/End はプロデューサーが出力した文字列をそのまま保持し、解析しない
type Event struct {
	Title    string
	Location string
	AllDay   bool
	Start    string
	End      string
}

// Snapshot 1日分のイベント一覧
type Snapshot struct {
	Date   string
	Events []Event
}
