package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
)

// TransactionProvider follows the pattern described in https://threedots.tech/post/database-transactions-in-go/
// It hides pgx transactions behind a callback that receives data-access adapters.
type TransactionProvider struct {
	pool *pgxpool.Pool
}

// NewTransactionProvider は新しいTransactionProviderを作成します
func NewTransactionProvider(pool *pgxpool.Pool) *TransactionProvider {
	return &TransactionProvider{pool: pool}
}

// Adapter bundles repository adapters that operate inside a single transaction.
type Adapter struct {
	Messages *MessageRepository
	OptOuts  *OptOutRepository
}

func newAdapter(tx pgx.Tx) *Adapter {
	queries := sqlc.New(tx)
	return &Adapter{
		Messages: NewMessageRepository(queries),
		OptOuts:  NewOptOutRepository(queries),
	}
}

// Transact opens a transaction, builds adapters, and passes them to fn.
func Transact[T any](ctx context.Context, p *TransactionProvider, fn func(*Adapter) (T, error)) (T, error) {
	var zero T
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}

	adapters := newAdapter(tx)

	result, err := fn(adapters)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return zero, fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// OptOutAndPurge はオプトアウト登録と送信者のメッセージ削除を同一トランザクションで行います
func (p *TransactionProvider) OptOutAndPurge(ctx context.Context, senderID int64) (int64, error) {
	return Transact(ctx, p, func(a *Adapter) (int64, error) {
		if err := a.OptOuts.Add(ctx, senderID); err != nil {
			return 0, err
		}
		return a.Messages.DeleteBySender(ctx, senderID)
	})
}

var _ ingestion.ForgetRepository = (*TransactionProvider)(nil)
