package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
	"github.com/samber/mo"
)

// MessageRepository は ingestion.MessageRepository を実装する PostgreSQL リポジトリです
type MessageRepository struct {
	q sqlc.Querier
}

// NewMessageRepository は新しい MessageRepository を作成します
func NewMessageRepository(q sqlc.Querier) *MessageRepository {
	return &MessageRepository{q: q}
}

// コンパイル時の型チェック
var _ ingestion.MessageRepository = (*MessageRepository)(nil)

// Insert はメッセージを保存します
// externalMessageId の一意制約違反は ingestion.ErrDuplicateMessage として返します
func (r *MessageRepository) Insert(ctx context.Context, record *ingestion.ConversationRecord) (*ingestion.ConversationRecord, error) {
	row, err := r.q.InsertMessage(ctx, sqlc.InsertMessageParams{
		ExternalMessageID: record.ExternalMessageID,
		Text:              record.Text,
		SenderID:          record.SenderID,
		ConversationID:    record.ConversationID,
		OccurredAt:        TimeToPgtimestamptz(record.OccurredAt),
		Embedding:         ResultToPgvector(record.Vector),
		SenderDisplayName: StringPtrToPgtext(record.SenderDisplayName),
		SenderGivenName:   StringPtrToPgtext(record.SenderGivenName),
		SenderFamilyName:  StringPtrToPgtext(record.SenderFamilyName),
	})
	if err != nil {
		if isDuplicateMessage(err) {
			return nil, fmt.Errorf("external_message_id %d: %w", record.ExternalMessageID, ingestion.ErrDuplicateMessage)
		}
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return convertSQLCMessage(row), nil
}

// GetByExternalID は externalMessageId でメッセージを取得します
func (r *MessageRepository) GetByExternalID(ctx context.Context, externalMessageID int64) (mo.Option[*ingestion.ConversationRecord], error) {
	row, err := r.q.GetMessageByExternalID(ctx, externalMessageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[*ingestion.ConversationRecord](), nil
		}
		return mo.None[*ingestion.ConversationRecord](), fmt.Errorf("failed to get message: %w", err)
	}

	return mo.Some(convertSQLCMessage(row)), nil
}

// Count は総件数を返します
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.q.CountMessages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// CountBySender は送信者ごとの件数を返します
func (r *MessageRepository) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	n, err := r.q.CountMessagesBySender(ctx, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages by sender: %w", err)
	}
	return n, nil
}

// DeleteBySender は送信者のメッセージを削除し、削除件数を返します
func (r *MessageRepository) DeleteBySender(ctx context.Context, senderID int64) (int64, error) {
	n, err := r.q.DeleteMessagesBySender(ctx, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages by sender: %w", err)
	}
	return n, nil
}
