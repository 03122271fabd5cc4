package postgres

import (
	"context"
	"fmt"

	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
)

// OptOutRepository は ingestion.OptOutRepository を実装する PostgreSQL リポジトリです
type OptOutRepository struct {
	q sqlc.Querier
}

// NewOptOutRepository は新しい OptOutRepository を作成します
func NewOptOutRepository(q sqlc.Querier) *OptOutRepository {
	return &OptOutRepository{q: q}
}

var _ ingestion.OptOutRepository = (*OptOutRepository)(nil)

// Exists は送信者がオプトアウト済みかを返します
func (r *OptOutRepository) Exists(ctx context.Context, senderID int64) (bool, error) {
	exists, err := r.q.OptOutExists(ctx, senderID)
	if err != nil {
		return false, fmt.Errorf("failed to check opt-out: %w", err)
	}
	return exists, nil
}

// Add はオプトアウトを登録します（ON CONFLICT DO NOTHING で冪等）
func (r *OptOutRepository) Add(ctx context.Context, senderID int64) error {
	if err := r.q.InsertOptOut(ctx, senderID); err != nil {
		return fmt.Errorf("failed to insert opt-out: %w", err)
	}
	return nil
}

// Remove はオプトアウトを解除し、解除件数を返します
func (r *OptOutRepository) Remove(ctx context.Context, senderID int64) (int64, error) {
	n, err := r.q.DeleteOptOut(ctx, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete opt-out: %w", err)
	}
	return n, nil
}

// Count はオプトアウト済みの送信者数を返します
func (r *OptOutRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.q.CountOptOuts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count opt-outs: %w", err)
	}
	return n, nil
}
