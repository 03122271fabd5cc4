package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jinford/chat-ingest/internal/core/ingestion"
)

// TransactionProvider は database/sql のトランザクションをコールバックで隠蔽します
type TransactionProvider struct {
	db *sql.DB
}

// NewTransactionProvider は新しい TransactionProvider を作成します
func NewTransactionProvider(db *sql.DB) *TransactionProvider {
	return &TransactionProvider{db: db}
}

// Adapter は単一トランザクション内で動作するリポジトリの束
type Adapter struct {
	Messages *MessageRepository
	OptOuts  *OptOutRepository
}

// Transact はトランザクションを開始し、fn にリポジトリを渡します
func Transact[T any](ctx context.Context, p *TransactionProvider, fn func(*Adapter) (T, error)) (T, error) {
	var zero T
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}

	adapters := &Adapter{
		Messages: NewMessageRepository(tx),
		OptOuts:  NewOptOutRepository(tx),
	}

	result, err := fn(adapters)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return zero, fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return zero, err
	}

	if err := tx.Commit(); err != nil {
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
