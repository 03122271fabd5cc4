package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
)

// Schema はメッセージテーブルとオプトアウトテーブルの DDL
//
//go:embed schema/schema.sql
var Schema string

// ApplySchema はスキーマを適用します（IF NOT EXISTS のため冪等）
func ApplySchema(ctx context.Context, db sqlc.DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
