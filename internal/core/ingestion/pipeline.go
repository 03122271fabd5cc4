package ingestion

import (
	"context"
	"log/slog"

	"github.com/jinford/chat-ingest/internal/core/embedding"
)

// State はメッセージ単位の処理状態
type State string

const (
	StateReceived           State = "received"
	StatePrivacyChecked     State = "privacy_checked"
	StateEmbeddingAttempted State = "embedding_attempted"
	StateRecordBuilt        State = "record_built"

	// 終端状態
	StateDroppedMalformed  State = "dropped_malformed"
	StateDroppedOptedOut   State = "dropped_opted_out"
	StatePersisted         State = "persisted"
	StatePersistDuplicate  State = "persist_error_duplicate"
	StatePersistOtherError State = "persist_error_other"
)

// IsStored は処理結果として行が存在する状態かを返す
// 重複は取り込み成功として扱う
func (s State) IsStored() bool {
	return s == StatePersisted || s == StatePersistDuplicate
}

// Embedder はパイプラインが利用する埋め込み生成のインターフェース
// embedding.Registry が実装する
type Embedder interface {
	IsAvailable() bool
	Embed(ctx context.Context, text string) embedding.Result
}

// Pipeline は受信メッセージ1件ごとの取り込みを行う
type Pipeline struct {
	gate     *PrivacyGate
	embedder Embedder
	store    *MessageStore
	logger   *slog.Logger
}

type pipelineOptions struct {
	logger *slog.Logger
}

// PipelineOption は Pipeline のオプション設定
type PipelineOption func(*pipelineOptions)

// WithPipelineLogger はロガーを差し替える
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(o *pipelineOptions) {
		o.logger = logger
	}
}

// NewPipeline は新しい Pipeline を作成する
func NewPipeline(gate *PrivacyGate, embedder Embedder, store *MessageStore, opts ...PipelineOption) *Pipeline {
	options := pipelineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	if embedder == nil {
		embedder = embedding.NewUnavailableRegistry()
	}

	return &Pipeline{
		gate:     gate,
		embedder: embedder,
		store:    store,
		logger:   options.logger,
	}
}

// Ingest はメッセージを取り込み、到達した終端状態を返す
// 失敗はすべて内部で吸収され、呼び出し元にエラーは返らない
func (p *Pipeline) Ingest(ctx context.Context, msg IncomingMessage) State {
	// Received
	if err := msg.Validate(); err != nil {
		p.logger.Debug("取り込み対象外のメッセージを破棄します",
			"external_message_id", msg.ExternalMessageID,
		)
		return StateDroppedMalformed
	}

	// PrivacyChecked
	if p.gate.IsOptedOut(ctx, msg.SenderID) {
		p.logger.Debug("オプトアウト済みの送信者のため破棄します",
			"external_message_id", msg.ExternalMessageID,
			"sender_id", msg.SenderID,
		)
		return StateDroppedOptedOut
	}

	// EmbeddingAttempted
	vector := embedding.Absent()
	if p.embedder.IsAvailable() {
		vector = p.embedder.Embed(ctx, msg.Text)
	}

	// RecordBuilt
	record := BuildRecord(msg, vector)

	// Persisted / PersistError
	_, outcome, _ := p.store.Insert(ctx, record)
	switch outcome {
	case PersistStored:
		p.logger.Debug("メッセージを取り込みました",
			"external_message_id", msg.ExternalMessageID,
			"conversation_id", msg.ConversationID,
			"has_vector", record.Vector.IsPresent(),
		)
		return StatePersisted
	case PersistDuplicate:
		return StatePersistDuplicate
	default:
		return StatePersistOtherError
	}
}
