package webhook

import (
	"time"

	"github.com/jinford/chat-ingest/internal/core/ingestion"
)

// Update はプラットフォームから届く更新イベント
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message は更新イベントに含まれるメッセージ
type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"` // UNIX秒
	Text      string `json:"text"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
}

// User は送信者
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Chat は会話
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

const (
	chatTypeGroup      = "group"
	chatTypeSupergroup = "supergroup"
)

// isGroupChat はグループ会話かどうかを返す
func (c Chat) isGroupChat() bool {
	return c.Type == chatTypeGroup || c.Type == chatTypeSupergroup
}

// toIncoming はグループ会話のテキストメッセージを IncomingMessage に変換する
// 取り込み対象外の更新は false を返す
func (u Update) toIncoming() (ingestion.IncomingMessage, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Text == "" || !m.Chat.isGroupChat() {
		return ingestion.IncomingMessage{}, false
	}

	return ingestion.IncomingMessage{
		ExternalMessageID: m.MessageID,
		Text:              m.Text,
		SenderID:          m.From.ID,
		ConversationID:    m.Chat.ID,
		SentAt:            time.Unix(m.Date, 0).UTC(),
		SenderDisplayName: optional(m.From.Username),
		SenderGivenName:   optional(m.From.FirstName),
		SenderFamilyName:  optional(m.From.LastName),
	}, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
