package ingestion

import (
	"context"
	"log/slog"
)

// PrivacyGate は送信者のオプトアウト状態を判定する
type PrivacyGate struct {
	optOuts  OptOutRepository
	messages *MessageStore
	forget   ForgetRepository
	logger   *slog.Logger
}

type privacyGateOptions struct {
	logger *slog.Logger
	forget ForgetRepository
}

// PrivacyGateOption は PrivacyGate のオプション設定
type PrivacyGateOption func(*privacyGateOptions)

// WithPrivacyLogger はロガーを差し替える
func WithPrivacyLogger(logger *slog.Logger) PrivacyGateOption {
	return func(o *privacyGateOptions) {
		o.logger = logger
	}
}

// WithForgetRepository はオプトアウトと削除をまとめて行うリポジトリを設定する
func WithForgetRepository(repo ForgetRepository) PrivacyGateOption {
	return func(o *privacyGateOptions) {
		o.forget = repo
	}
}

// NewPrivacyGate は新しい PrivacyGate を作成する
func NewPrivacyGate(optOuts OptOutRepository, messages *MessageStore, opts ...PrivacyGateOption) *PrivacyGate {
	options := privacyGateOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	return &PrivacyGate{
		optOuts:  optOuts,
		messages: messages,
		forget:   options.forget,
		logger:   options.logger,
	}
}

// IsOptedOut は送信者がオプトアウト済みかを返す
// 参照に失敗した場合は fail-open として false を返し、警告を記録する
func (g *PrivacyGate) IsOptedOut(ctx context.Context, senderID int64) bool {
	optedOut, err := g.optOuts.Exists(ctx, senderID)
	if err != nil {
		g.logger.Warn("オプトアウト状態の確認に失敗しました。取り込みを続行します",
			"sender_id", senderID,
			"error", err,
		)
		return false
	}
	return optedOut
}

// OptOut は送信者をオプトアウト登録する。登録済みでも成功として扱う
func (g *PrivacyGate) OptOut(ctx context.Context, senderID int64) bool {
	if err := g.optOuts.Add(ctx, senderID); err != nil {
		g.logger.Error("オプトアウトの登録に失敗しました", "sender_id", senderID, "error", err)
		return false
	}
	g.logger.Info("オプトアウトを登録しました", "sender_id", senderID)
	return true
}

// OptIn はオプトアウトを解除する。未登録でも成功として扱う
func (g *PrivacyGate) OptIn(ctx context.Context, senderID int64) bool {
	removed, err := g.optOuts.Remove(ctx, senderID)
	if err != nil {
		g.logger.Error("オプトアウトの解除に失敗しました", "sender_id", senderID, "error", err)
		return false
	}
	g.logger.Info("オプトアウトを解除しました", "sender_id", senderID, "removed", removed)
	return true
}

// PurgeMessages は送信者のメッセージをすべて削除し、削除件数を返す
// 削除に失敗した場合は false を返す
func (g *PrivacyGate) PurgeMessages(ctx context.Context, senderID int64) (int64, bool) {
	deleted, ok := g.messages.DeleteBySender(ctx, senderID)
	if !ok {
		return 0, false
	}
	g.logger.Info("送信者のメッセージを削除しました", "sender_id", senderID, "deleted", deleted)
	return deleted, true
}

// Forget はオプトアウト登録とメッセージ削除を単一トランザクションで行う
// トランザクション非対応のストアでは OptOut と PurgeMessages を順に実行する
func (g *PrivacyGate) Forget(ctx context.Context, senderID int64) (int64, bool) {
	if g.forget == nil {
		if !g.OptOut(ctx, senderID) {
			return 0, false
		}
		return g.PurgeMessages(ctx, senderID)
	}

	deleted, err := g.forget.OptOutAndPurge(ctx, senderID)
	if err != nil {
		g.logger.Error("オプトアウトとメッセージ削除に失敗しました", "sender_id", senderID, "error", err)
		return 0, false
	}
	g.logger.Info("オプトアウトを登録し、メッセージを削除しました", "sender_id", senderID, "deleted", deleted)
	return deleted, true
}
