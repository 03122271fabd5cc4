package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/jinford/chat-ingest/internal/core/embedding"
	"google.golang.org/api/option"
)

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultEmbeddingDimension は text-embedding-004 の出力次元
	DefaultEmbeddingDimension = embedding.GeminiDimension
	// MaxBatchSize は batchEmbedContents の最大リクエスト数
	MaxBatchSize = 100
)

// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
var ErrAPIKeyNotSet = fmt.Errorf("Gemini API key not set: %w", embedding.ErrCredentialMissing)

// embedModel は genai.EmbeddingModel のうち Embedder が使う操作
type embedModel interface {
	EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
	BatchEmbedContents(ctx context.Context, b *genai.EmbeddingBatch) (*genai.BatchEmbedContentsResponse, error)
	NewBatch() *genai.EmbeddingBatch
}

// Embedder は Gemini API を使用してテキストをベクトルに変換する
type Embedder struct {
	client *genai.Client
	model  embedModel
	name   string
}

type embedderOptions struct {
	model         string
	clientOptions []option.ClientOption
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

// WithClientOptions は genai クライアントのオプションを追加する
func WithClientOptions(opts ...option.ClientOption) EmbedderOption {
	return func(o *embedderOptions) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(ctx context.Context, apiKey string, opts ...EmbedderOption) (*Embedder, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	options := embedderOptions{model: DefaultEmbeddingModel}
	for _, opt := range opts {
		opt(&options)
	}

	clientOptions := append([]option.ClientOption{option.WithAPIKey(apiKey)}, options.clientOptions...)
	client, err := genai.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Embedder{
		client: client,
		model:  client.EmbeddingModel(options.model),
		name:   options.model,
	}, nil
}

// Embed は単一テキストの Embedding を生成する
func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embeddings generated")
	}

	return embedding.Vector(resp.Embedding.Values), nil
}

// BatchEmbed はバッチで Embedding を生成する（最大100件）
// 個別に値が返らなかった項目は該当位置を Absent にする
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) ([]embedding.Result, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("batch size exceeds maximum of %d", MaxBatchSize)
	}

	batch := e.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no embeddings generated")
	}

	results := make([]embedding.Result, len(texts))
	for i := range texts {
		results[i] = embedding.Absent()
		if i >= len(resp.Embeddings) || resp.Embeddings[i] == nil {
			continue
		}
		results[i] = embedding.Present(embedding.Vector(resp.Embeddings[i].Values))
	}

	return results, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.name
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return DefaultEmbeddingDimension
}

// MaxBatchSize はバッチ処理の最大サイズを返す
func (e *Embedder) MaxBatchSize() int {
	return MaxBatchSize
}

// Close はクライアントを解放する
func (e *Embedder) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// インターフェース実装の確認
var _ embedding.Provider = (*Embedder)(nil)
