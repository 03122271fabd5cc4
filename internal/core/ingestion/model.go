package ingestion

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinford/chat-ingest/internal/core/embedding"
)

// IncomingMessage はトランスポート層から受け取ったメッセージ
// 受信イベントごとに生成され、そのままの形では保存されない
type IncomingMessage struct {
	ExternalMessageID int64     // プラットフォーム上のメッセージID
	Text              string    // 本文（空でないこと）
	SenderID          int64     // 送信者ID
	ConversationID    int64     // 会話（グループ）ID
	SentAt            time.Time // 送信日時

	SenderDisplayName *string
	SenderGivenName   *string
	SenderFamilyName  *string
}

// ConversationRecord は永続化されたメッセージ
type ConversationRecord struct {
	ID                uuid.UUID        // ストア側で採番
	ExternalMessageID int64            // 一意キー
	Text              string           // 本文
	SenderID          int64            // 送信者ID
	ConversationID    int64            // 会話ID
	OccurredAt        time.Time        // 送信日時（UTC）
	Vector            embedding.Result // 埋め込みベクトル（なしの場合あり）

	SenderDisplayName *string
	SenderGivenName   *string
	SenderFamilyName  *string

	IngestedAt time.Time // ストア側で設定
}

// OptOutEntry は収集対象外の送信者
type OptOutEntry struct {
	ID         uuid.UUID
	SenderID   int64
	OptedOutAt time.Time
}
