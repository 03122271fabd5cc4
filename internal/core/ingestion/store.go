package ingestion

import (
	"context"
	"errors"
	"log/slog"
)

// PersistOutcome は Insert の結果区分
type PersistOutcome int

const (
	// PersistStored は新規に保存された
	PersistStored PersistOutcome = iota
	// PersistDuplicate は既に保存済みだった（エラー扱いしない）
	PersistDuplicate
	// PersistFailed はその他の理由で保存できなかった
	PersistFailed
)

func (o PersistOutcome) String() string {
	switch o {
	case PersistStored:
		return "stored"
	case PersistDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// MessageStore は MessageRepository の薄いファサード
// 重複挿入の許容と、失敗時に0を返す集計系の振る舞いを担う
type MessageStore struct {
	repo   MessageRepository
	logger *slog.Logger
}

// NewMessageStore は新しい MessageStore を作成する
func NewMessageStore(repo MessageRepository, logger *slog.Logger) *MessageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageStore{repo: repo, logger: logger}
}

// Insert はレコードを保存する
// 重複は PersistDuplicate として Info で記録し、その他の失敗は Error で記録する
// リトライは行わない
func (s *MessageStore) Insert(ctx context.Context, record ConversationRecord) (*ConversationRecord, PersistOutcome, error) {
	stored, err := s.repo.Insert(ctx, &record)
	if err == nil {
		return stored, PersistStored, nil
	}

	if errors.Is(err, ErrDuplicateMessage) {
		s.logger.Info("メッセージは取り込み済みのためスキップします",
			"external_message_id", record.ExternalMessageID,
			"conversation_id", record.ConversationID,
		)
		return nil, PersistDuplicate, nil
	}

	s.logger.Error("メッセージの保存に失敗しました",
		"external_message_id", record.ExternalMessageID,
		"conversation_id", record.ConversationID,
		"error", err,
	)
	return nil, PersistFailed, err
}

// Count は総件数を返す。失敗時は0
func (s *MessageStore) Count(ctx context.Context) int64 {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("メッセージ件数の取得に失敗しました", "error", err)
		return 0
	}
	return n
}

// CountBySender は送信者ごとの件数を返す。失敗時は0
func (s *MessageStore) CountBySender(ctx context.Context, senderID int64) int64 {
	n, err := s.repo.CountBySender(ctx, senderID)
	if err != nil {
		s.logger.Error("送信者のメッセージ件数の取得に失敗しました", "sender_id", senderID, "error", err)
		return 0
	}
	return n
}

// DeleteBySender は送信者のメッセージをすべて削除し、削除件数を返す
// 失敗時は (0, false) を返すため、0件削除と区別できる
func (s *MessageStore) DeleteBySender(ctx context.Context, senderID int64) (int64, bool) {
	n, err := s.repo.DeleteBySender(ctx, senderID)
	if err != nil {
		s.logger.Error("送信者のメッセージ削除に失敗しました", "sender_id", senderID, "error", err)
		return 0, false
	}
	return n, true
}
