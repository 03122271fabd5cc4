package container

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/infra/gemini"
	"github.com/jinford/chat-ingest/internal/infra/openai"
	"github.com/jinford/chat-ingest/internal/infra/postgres"
	pgsqlc "github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
	"github.com/jinford/chat-ingest/internal/infra/sqlite"
	"github.com/jinford/chat-ingest/internal/platform/config"
	"github.com/jinford/chat-ingest/internal/platform/database"
)

// OptOutCounter はオプトアウト件数を返す
type OptOutCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ServiceContainer は取り込みに必要な依存関係を保持する
// プロバイダ選択結果（Registry）は生成時に一度だけ決まり、以降は変更されない
type ServiceContainer struct {
	Config      *config.Config
	Registry    *embedding.Registry
	Store       *ingestion.MessageStore
	PrivacyGate *ingestion.PrivacyGate
	Pipeline    *ingestion.Pipeline
	OptOuts     OptOutCounter

	logger  *slog.Logger
	migrate func(ctx context.Context) error
	closers []func()
}

type containerOptions struct {
	candidates []embedding.Candidate
	stores     *Stores
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerCandidates は埋め込みプロバイダの候補を差し替える
func WithContainerCandidates(candidates ...embedding.Candidate) ContainerOption {
	return func(opts *containerOptions) {
		opts.candidates = candidates
	}
}

// WithContainerStores はストアを差し替える
func WithContainerStores(stores *Stores) ContainerOption {
	return func(opts *containerOptions) {
		opts.stores = stores
	}
}

// Stores はストア実装ごとのリポジトリの束
type Stores struct {
	Messages ingestion.MessageRepository
	OptOuts  interface {
		ingestion.OptOutRepository
		OptOutCounter
	}
	Forget  ingestion.ForgetRepository
	Migrate func(ctx context.Context) error
	Close   func()
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stores := options.stores
	if stores == nil {
		var err error
		stores, err = OpenStores(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	candidates := options.candidates
	if candidates == nil {
		candidates = EmbeddingCandidates(cfg, logger)
	}
	registry := embedding.Select(ctx, candidates, embedding.WithRegistryLogger(logger))

	store := ingestion.NewMessageStore(stores.Messages, logger)
	gateOpts := []ingestion.PrivacyGateOption{ingestion.WithPrivacyLogger(logger)}
	if stores.Forget != nil {
		gateOpts = append(gateOpts, ingestion.WithForgetRepository(stores.Forget))
	}
	gate := ingestion.NewPrivacyGate(stores.OptOuts, store, gateOpts...)
	pipeline := ingestion.NewPipeline(gate, registry, store, ingestion.WithPipelineLogger(logger))

	c := &ServiceContainer{
		Config:      cfg,
		Registry:    registry,
		Store:       store,
		PrivacyGate: gate,
		Pipeline:    pipeline,
		OptOuts:     stores.OptOuts,
		logger:      logger,
		migrate:     stores.Migrate,
	}
	if stores.Close != nil {
		c.closers = append(c.closers, stores.Close)
	}
	c.closers = append(c.closers, func() {
		if err := registry.Close(); err != nil {
			logger.Warn("埋め込みプロバイダのクローズに失敗しました", "error", err)
		}
	})

	return c, nil
}

// OpenStores は STORE_DRIVER に応じてストアを開く
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("SQLite 初期化に失敗しました: %w", err)
		}
		return newSQLiteStores(db), nil
	default:
		db, err := database.New(ctx, database.ConnectionParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
		}
		return newPostgresStores(db), nil
	}
}

func newPostgresStores(db *database.Database) *Stores {
	queries := pgsqlc.New(db.Pool)
	return &Stores{
		Messages: postgres.NewMessageRepository(queries),
		OptOuts:  postgres.NewOptOutRepository(queries),
		Forget:   postgres.NewTransactionProvider(db.Pool),
		Migrate: func(ctx context.Context) error {
			return postgres.ApplySchema(ctx, db.Pool)
		},
		Close: db.Close,
	}
}

func newSQLiteStores(db *sql.DB) *Stores {
	return &Stores{
		Messages: sqlite.NewMessageRepository(db),
		OptOuts:  sqlite.NewOptOutRepository(db),
		Forget:   sqlite.NewTransactionProvider(db),
		Migrate: func(ctx context.Context) error {
			return sqlite.ApplySchema(ctx, db)
		},
		Close: func() { db.Close() },
	}
}

// EmbeddingCandidates は優先順（OpenAI → Gemini）の候補リストを返す
func EmbeddingCandidates(cfg *config.Config, logger *slog.Logger) []embedding.Candidate {
	return []embedding.Candidate{
		{
			Kind:      embedding.KindOpenAI,
			Dimension: cfg.OpenAI.EmbeddingDimension,
			New: func(ctx context.Context) (embedding.Provider, error) {
				opts := []openai.EmbedderOption{
					openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
					openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
				}
				if cfg.OpenAI.APIKey != "" && cfg.OpenAI.MaxInputTokens > 0 {
					truncator, err := openai.NewTokenTruncator(cfg.OpenAI.MaxInputTokens)
					if err != nil {
						logger.Warn("トークナイザの初期化に失敗しました。入力を切り詰めずに送信します", "error", err)
					} else {
						opts = append(opts, openai.WithTruncator(truncator))
					}
				}
				return openai.NewEmbedder(cfg.OpenAI.APIKey, opts...)
			},
		},
		{
			Kind:      embedding.KindGemini,
			Dimension: embedding.GeminiDimension,
			New: func(ctx context.Context) (embedding.Provider, error) {
				return gemini.NewEmbedder(ctx, cfg.Gemini.APIKey,
					gemini.WithEmbeddingModel(cfg.Gemini.EmbeddingModel),
				)
			},
		},
	}
}

// NewDispatcher は設定されたワーカー数と取り込み期限で非同期ディスパッチャを作成する
func (c *ServiceContainer) NewDispatcher(ctx context.Context, opts ...ingestion.DispatcherOption) (*ingestion.Dispatcher, error) {
	base := []ingestion.DispatcherOption{
		ingestion.WithWorkerCount(c.Config.IngestWorkers),
		ingestion.WithTaskTimeout(c.Config.IngestTimeout),
		ingestion.WithMaxPending(c.Config.IngestMaxPending),
		ingestion.WithDispatcherLogger(c.logger),
	}
	return ingestion.NewDispatcher(ctx, c.Pipeline, append(base, opts...)...)
}

// Migrate はストアのスキーマを適用する
func (c *ServiceContainer) Migrate(ctx context.Context) error {
	if c.migrate == nil {
		return fmt.Errorf("schema migration is not supported by this store")
	}
	return c.migrate(ctx)
}

// Close は内部リソースを解放する
func (c *ServiceContainer) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Logger はロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
