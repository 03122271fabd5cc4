package ingestion

import (
	"github.com/jinford/chat-ingest/internal/core/embedding"
)

// BuildRecord は受信メッセージとベクトルから保存用のレコードを組み立てる
// I/Oを伴わない純粋関数で、同じ入力には常に同じ出力を返す
func BuildRecord(msg IncomingMessage, vector embedding.Result) ConversationRecord {
	record := ConversationRecord{
		ExternalMessageID: msg.ExternalMessageID,
		Text:              msg.Text,
		SenderID:          msg.SenderID,
		ConversationID:    msg.ConversationID,
		OccurredAt:        msg.SentAt.UTC(),
		Vector:            embedding.Absent(),
		SenderDisplayName: cloneString(msg.SenderDisplayName),
		SenderGivenName:   cloneString(msg.SenderGivenName),
		SenderFamilyName:  cloneString(msg.SenderFamilyName),
	}

	if v, ok := vector.Get(); ok {
		record.Vector = embedding.Present(v.Clone())
	}

	return record
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Validate はメッセージが取り込み可能な形かを検証する
func (m IncomingMessage) Validate() error {
	if m.Text == "" || m.SenderID == 0 || m.ConversationID == 0 {
		return ErrMalformedMessage
	}
	return nil
}
