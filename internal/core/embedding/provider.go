package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Kind は埋め込みプロバイダの種別
type Kind string

const (
	// KindOpenAI は OpenAI Embeddings API（1536次元）
	KindOpenAI Kind = "openai"
	// KindGemini は Gemini Embedding API（768次元）
	KindGemini Kind = "gemini"
)

const (
	// OpenAIDimension は OpenAI プロバイダのベクトル次元
	OpenAIDimension = 1536
	// GeminiDimension は Gemini プロバイダのベクトル次元
	GeminiDimension = 768
)

// Label は統計表示用のプロバイダ名を返す
func (k Kind) Label() string {
	switch k {
	case KindOpenAI:
		return "OpenAI"
	case KindGemini:
		return "Gemini"
	default:
		return string(k)
	}
}

// NoneLabel はプロバイダ未選択時の表示名
const NoneLabel = "none"

// ErrCredentialMissing は認証情報が設定されていない場合のエラー
var ErrCredentialMissing = errors.New("embedding provider credential not set")

// Provider は埋め込みバックエンドの共通インターフェース
type Provider interface {
	// Embed は単一テキストのベクトルを生成する
	Embed(ctx context.Context, text string) (Vector, error)

	// BatchEmbed は複数テキストのベクトルを入力と同じ順序で生成する
	// バッチ全体の失敗は error、個別の失敗は該当位置の Absent で返す
	BatchEmbed(ctx context.Context, texts []string) ([]Result, error)

	// MaxBatchSize は1リクエストあたりの最大件数を返す
	MaxBatchSize() int

	// ModelName はモデル名を返す
	ModelName() string
}

// ProviderInitError はプロバイダのクライアント生成に失敗したことを表す
type ProviderInitError struct {
	Kind Kind
	Err  error
}

func (e *ProviderInitError) Error() string {
	return fmt.Sprintf("failed to initialize %s embedding provider: %v", e.Kind, e.Err)
}

func (e *ProviderInitError) Unwrap() error {
	return e.Err
}
