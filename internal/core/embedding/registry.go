package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Candidate は優先順位付きのプロバイダ候補
// New は認証情報がない場合 ErrCredentialMissing を返す
type Candidate struct {
	Kind      Kind
	Dimension int
	New       func(ctx context.Context) (Provider, error)
}

// Registry は起動時に選択された単一のプロバイダを保持する
// 生成後は読み取り専用のため、並行アクセスにロックは不要
type Registry struct {
	state    State
	provider Provider
	logger   *slog.Logger
}

type registryOptions struct {
	logger *slog.Logger
}

// RegistryOption は Registry のオプション設定
type RegistryOption func(*registryOptions)

// WithRegistryLogger はロガーを差し替える
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// Select は候補を順に試し、最初に生成に成功したプロバイダで Registry を作成する
// 以降の候補は試行しない。すべて失敗した場合は Unavailable になる
func Select(ctx context.Context, candidates []Candidate, opts ...RegistryOption) *Registry {
	options := registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.logger

	for _, c := range candidates {
		provider, err := construct(ctx, c)
		if err != nil {
			if errors.Is(err, ErrCredentialMissing) {
				logger.Info("埋め込みプロバイダの認証情報が未設定のためスキップします", "provider", c.Kind)
			} else {
				logger.Warn("埋め込みプロバイダの初期化に失敗しました", "provider", c.Kind, "error", err)
			}
			continue
		}

		logger.Info("埋め込みプロバイダを選択しました",
			"provider", c.Kind,
			"model", provider.ModelName(),
			"dimension", c.Dimension,
		)
		return &Registry{
			state:    Active(c.Kind, c.Dimension),
			provider: provider,
			logger:   logger,
		}
	}

	logger.Warn("利用可能な埋め込みプロバイダがありません。ベクトルなしで取り込みを続行します")
	return &Registry{
		state:  Unavailable(),
		logger: logger,
	}
}

func construct(ctx context.Context, c Candidate) (Provider, error) {
	if c.New == nil {
		return nil, ErrCredentialMissing
	}
	if c.Dimension <= 0 {
		return nil, &ProviderInitError{Kind: c.Kind, Err: fmt.Errorf("invalid dimension %d", c.Dimension)}
	}
	provider, err := c.New(ctx)
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return nil, err
		}
		return nil, &ProviderInitError{Kind: c.Kind, Err: err}
	}
	if provider == nil {
		return nil, &ProviderInitError{Kind: c.Kind, Err: errors.New("constructor returned nil provider")}
	}
	return provider, nil
}

// NewUnavailableRegistry はプロバイダなしの Registry を返す
func NewUnavailableRegistry() *Registry {
	return &Registry{state: Unavailable(), logger: slog.Default()}
}

// State は選択結果を返す
func (r *Registry) State() State {
	return r.state
}

// IsAvailable はプロバイダが選択済みかどうかを返す
func (r *Registry) IsAvailable() bool {
	return r.state.IsActive()
}

// Dimension はアクティブなプロバイダのベクトル次元を返す（未選択時は0）
func (r *Registry) Dimension() int {
	return r.state.Dimension
}

// ProviderLabel は統計表示用のプロバイダ名を返す
func (r *Registry) ProviderLabel() string {
	if !r.IsAvailable() {
		return NoneLabel
	}
	return r.state.Kind.Label()
}

// Embed は単一テキストのベクトルを生成する
// 失敗はすべて Absent に変換され、呼び出し元にエラーは返らない
func (r *Registry) Embed(ctx context.Context, text string) Result {
	if !r.IsAvailable() || text == "" {
		return Absent()
	}

	vector, err := r.provider.Embed(ctx, text)
	if err != nil {
		r.logger.Warn("埋め込みベクトルの生成に失敗しました",
			"provider", r.state.Kind,
			"error", err,
		)
		return Absent()
	}

	return r.validate(vector)
}

// EmbedBatch は複数テキストのベクトルを入力と同じ順序で生成する
// バッチ単位の失敗は該当範囲をすべて Absent にする
func (r *Registry) EmbedBatch(ctx context.Context, texts []string) []Result {
	if len(texts) == 0 {
		return []Result{}
	}
	if !r.IsAvailable() {
		return absentResults(len(texts))
	}

	batchSize := r.provider.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	results := make([]Result, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		results = append(results, r.embedChunk(ctx, texts[start:end])...)
	}

	return results
}

func (r *Registry) embedChunk(ctx context.Context, texts []string) []Result {
	batch, err := r.provider.BatchEmbed(ctx, texts)
	if err != nil {
		r.logger.Warn("バッチ埋め込みの生成に失敗しました",
			"provider", r.state.Kind,
			"batch_size", len(texts),
			"error", err,
		)
		return absentResults(len(texts))
	}
	if len(batch) != len(texts) {
		r.logger.Warn("バッチ埋め込みの件数が入力と一致しません",
			"provider", r.state.Kind,
			"expected", len(texts),
			"actual", len(batch),
		)
		return absentResults(len(texts))
	}

	results := make([]Result, len(batch))
	for i, item := range batch {
		vector, ok := item.Get()
		if !ok {
			results[i] = Absent()
			continue
		}
		results[i] = r.validate(vector)
	}
	return results
}

func (r *Registry) validate(vector Vector) Result {
	if len(vector) == 0 {
		return Absent()
	}
	if len(vector) != r.state.Dimension {
		r.logger.Warn("埋め込みベクトルの次元が想定と異なります",
			"provider", r.state.Kind,
			"expected", r.state.Dimension,
			"actual", len(vector),
		)
		return Absent()
	}
	return Present(vector)
}

// Close はプロバイダがクライアントを保持している場合に解放する
func (r *Registry) Close() error {
	if closer, ok := r.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
