// Package sqlite はメッセージとオプトアウトを SQLite ファイルに保存する単体運用向けのストアです
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Schema はメッセージテーブルとオプトアウトテーブルの DDL
//
//go:embed schema/schema.sql
var Schema string

// dbtx は *sql.DB と *sql.Tx の共通部分
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open は SQLite データベースを開きます
// path に ":memory:" を渡すとインメモリDBになります
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// 書き込みは単一接続に直列化する（インメモリDBも接続ごとに別DBになるため）
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return db, nil
}

// ApplySchema はスキーマを適用します（IF NOT EXISTS のため冪等）
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
