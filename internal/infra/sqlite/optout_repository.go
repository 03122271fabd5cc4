package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
)

// OptOutRepository は ingestion.OptOutRepository の SQLite 実装です
type OptOutRepository struct {
	db  dbtx
	now func() time.Time
}

// NewOptOutRepository は新しい OptOutRepository を作成します
func NewOptOutRepository(db dbtx) *OptOutRepository {
	return &OptOutRepository{db: db, now: time.Now}
}

var _ ingestion.OptOutRepository = (*OptOutRepository)(nil)

// Exists は送信者がオプトアウト済みかを返します
func (r *OptOutRepository) Exists(ctx context.Context, senderID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM opt_outs WHERE sender_id = ?)`,
		senderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check opt-out: %w", err)
	}
	return exists, nil
}

// Add はオプトアウトを登録します（登録済みなら何もしない）
func (r *OptOutRepository) Add(ctx context.Context, senderID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opt_outs (id, sender_id, opted_out_at)
		VALUES (?, ?, ?)
		ON CONFLICT (sender_id) DO NOTHING`,
		uuid.New().String(),
		senderID,
		formatTime(r.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert opt-out: %w", err)
	}
	return nil
}

// Remove はオプトアウトを解除し、解除件数を返します
func (r *OptOutRepository) Remove(ctx context.Context, senderID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM opt_outs WHERE sender_id = ?`, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete opt-out: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// Count はオプトアウト済みの送信者数を返します
func (r *OptOutRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM opt_outs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count opt-outs: %w", err)
	}
	return n, nil
}
