package openai

import (
	"context"
	"fmt"

	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Embedder は OpenAI API を使用してテキストをベクトルに変換する
type Embedder struct {
	client    openai.Client
	model     string
	dimension int
	truncator *TokenTruncator
}

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-3-small"
	// DefaultEmbeddingDimension はOpenAI推奨のデフォルト次元
	DefaultEmbeddingDimension = embedding.OpenAIDimension
	// MaxBatchSize は1リクエストあたりの最大入力数
	MaxBatchSize = 100
)

// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
var ErrAPIKeyNotSet = fmt.Errorf("OpenAI API key not set: %w", embedding.ErrCredentialMissing)

type embedderOptions struct {
	model          string
	dimension      int
	truncator      *TokenTruncator
	requestOptions []option.RequestOption
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithEmbeddingModel はモデル名を上書きする
func WithEmbeddingModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithEmbeddingDimension はベクトル次元を上書きする
func WithEmbeddingDimension(dimension int) EmbedderOption {
	return func(o *embedderOptions) {
		o.dimension = dimension
	}
}

// WithTruncator は入力テキストをトークン上限で切り詰める
func WithTruncator(t *TokenTruncator) EmbedderOption {
	return func(o *embedderOptions) {
		o.truncator = t
	}
}

// WithRequestOptions は OpenAI クライアントのリクエストオプションを追加する
func WithRequestOptions(opts ...option.RequestOption) EmbedderOption {
	return func(o *embedderOptions) {
		o.requestOptions = append(o.requestOptions, opts...)
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(apiKey string, opts ...EmbedderOption) (*Embedder, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	options := embedderOptions{
		model:     DefaultEmbeddingModel,
		dimension: DefaultEmbeddingDimension,
	}
	for _, opt := range opts {
		opt(&options)
	}

	requestOptions := append([]option.RequestOption{option.WithAPIKey(apiKey)}, options.requestOptions...)

	return &Embedder{
		client:    openai.NewClient(requestOptions...),
		model:     options.model,
		dimension: options.dimension,
		truncator: options.truncator,
	}, nil
}

// Embed は単一テキストの Embedding を生成する
func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	results, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	vector, ok := results[0].Get()
	if !ok {
		return nil, fmt.Errorf("no embeddings generated")
	}

	return vector, nil
}

// BatchEmbed はバッチで Embedding を生成する（最大100件）
// 空のテキストは送信せず、該当位置を Absent にする
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) ([]embedding.Result, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("batch size exceeds maximum of %d", MaxBatchSize)
	}

	results := make([]embedding.Result, len(texts))
	inputs := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		results[i] = embedding.Absent()
		if text == "" {
			continue
		}
		if e.truncator != nil {
			text = e.truncator.Truncate(text)
		}
		inputs = append(inputs, text)
		positions = append(positions, i)
	}

	if len(inputs) == 0 {
		return results, nil
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
	}

	if len(inputs) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(inputs[0]),
		}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		}
	}

	// dimensionパラメータを追加（text-embedding-3-smallなどで有効）
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	// レスポンスの index は送信した inputs の位置を指す
	for _, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= len(positions) {
			continue
		}
		vector := make(embedding.Vector, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		results[positions[idx]] = embedding.Present(vector)
	}

	return results, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}

// MaxBatchSize はバッチ処理の最大サイズを返す（OpenAI APIは最大100件）
func (e *Embedder) MaxBatchSize() int {
	return MaxBatchSize
}

// インターフェース実装の確認
var _ embedding.Provider = (*Embedder)(nil)
