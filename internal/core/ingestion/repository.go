package ingestion

import "context"

// MessageRepository はメッセージテーブルへのアクセスを提供する
// テスト時のモック用に消費者側で定義
type MessageRepository interface {
	// Insert はレコードを保存する。externalMessageId が重複する場合は ErrDuplicateMessage を返す
	Insert(ctx context.Context, record *ConversationRecord) (*ConversationRecord, error)
	Count(ctx context.Context) (int64, error)
	CountBySender(ctx context.Context, senderID int64) (int64, error)
	DeleteBySender(ctx context.Context, senderID int64) (int64, error)
}

// OptOutRepository はオプトアウトテーブルへのアクセスを提供する
type OptOutRepository interface {
	// Exists は送信者がオプトアウト済みかを返す。行がない場合は false, nil
	Exists(ctx context.Context, senderID int64) (bool, error)
	// Add は冪等にオプトアウトを登録する
	Add(ctx context.Context, senderID int64) error
	// Remove はオプトアウトを解除する。解除した件数を返す
	Remove(ctx context.Context, senderID int64) (int64, error)
}

// ForgetRepository はオプトアウト登録とメッセージ削除を単一トランザクションで行う
type ForgetRepository interface {
	OptOutAndPurge(ctx context.Context, senderID int64) (int64, error)
}
