package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/samber/mo"
)

const messageColumns = `id, external_message_id, text, sender_id, conversation_id, occurred_at, embedding,
	sender_display_name, sender_given_name, sender_family_name, ingested_at`

// MessageRepository は ingestion.MessageRepository の SQLite 実装です
type MessageRepository struct {
	db  dbtx
	now func() time.Time
}

// NewMessageRepository は新しい MessageRepository を作成します
func NewMessageRepository(db dbtx) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

var _ ingestion.MessageRepository = (*MessageRepository)(nil)

// Insert はメッセージを保存します
// 一意制約に衝突した場合は行が返らないため ingestion.ErrDuplicateMessage を返します
func (r *MessageRepository) Insert(ctx context.Context, record *ingestion.ConversationRecord) (*ingestion.ConversationRecord, error) {
	vector, err := encodeVector(record.Vector)
	if err != nil {
		return nil, err
	}

	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_message_id) DO NOTHING
		RETURNING `+messageColumns,
		id.String(),
		record.ExternalMessageID,
		record.Text,
		record.SenderID,
		record.ConversationID,
		formatTime(record.OccurredAt),
		vector,
		stringPtrToNull(record.SenderDisplayName),
		stringPtrToNull(record.SenderGivenName),
		stringPtrToNull(record.SenderFamilyName),
		formatTime(r.now()),
	)

	saved, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("external_message_id %d: %w", record.ExternalMessageID, ingestion.ErrDuplicateMessage)
		}
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return saved, nil
}

// GetByExternalID は externalMessageId でメッセージを取得します
func (r *MessageRepository) GetByExternalID(ctx context.Context, externalMessageID int64) (mo.Option[*ingestion.ConversationRecord], error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE external_message_id = ?`,
		externalMessageID,
	)

	record, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*ingestion.ConversationRecord](), nil
		}
		return mo.None[*ingestion.ConversationRecord](), fmt.Errorf("failed to get message: %w", err)
	}

	return mo.Some(record), nil
}

// Count は総件数を返します
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// CountBySender は送信者ごとの件数を返します
func (r *MessageRepository) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE sender_id = ?`, senderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages by sender: %w", err)
	}
	return n, nil
}

// DeleteBySender は送信者のメッセージを削除し、削除件数を返します
func (r *MessageRepository) DeleteBySender(ctx context.Context, senderID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE sender_id = ?`, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages by sender: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func scanMessage(row *sql.Row) (*ingestion.ConversationRecord, error) {
	var (
		id                                 string
		record                             ingestion.ConversationRecord
		occurredAt, ingestedAt             string
		vector                             sql.NullString
		displayName, givenName, familyName sql.NullString
	)

	if err := row.Scan(
		&id,
		&record.ExternalMessageID,
		&record.Text,
		&record.SenderID,
		&record.ConversationID,
		&occurredAt,
		&vector,
		&displayName,
		&givenName,
		&familyName,
		&ingestedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if record.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse message id: %w", err)
	}
	if record.OccurredAt, err = parseTime(occurredAt); err != nil {
		return nil, err
	}
	if record.IngestedAt, err = parseTime(ingestedAt); err != nil {
		return nil, err
	}
	if record.Vector, err = decodeVector(vector); err != nil {
		return nil, err
	}
	record.SenderDisplayName = nullToStringPtr(displayName)
	record.SenderGivenName = nullToStringPtr(givenName)
	record.SenderFamilyName = nullToStringPtr(familyName)

	return &record, nil
}
