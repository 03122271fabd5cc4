package openai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultEncoding は text-embedding-3 系モデルのエンコーディング
	DefaultEncoding = "cl100k_base"
	// DefaultMaxInputTokens は Embeddings API の入力トークン上限
	DefaultMaxInputTokens = 8191
)

// TokenTruncator は入力テキストをトークン上限で切り詰める
type TokenTruncator struct {
	encoding  *tiktoken.Tiktoken
	maxTokens int
}

// NewTokenTruncator は新しい TokenTruncator を作成する
func NewTokenTruncator(maxTokens int) (*TokenTruncator, error) {
	encoding, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxInputTokens
	}

	return &TokenTruncator{
		encoding:  encoding,
		maxTokens: maxTokens,
	}, nil
}

// CountTokens はテキストのトークン数をカウントする
func (t *TokenTruncator) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate は上限を超えるテキストを先頭から maxTokens 分に切り詰める
func (t *TokenTruncator) Truncate(text string) string {
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:t.maxTokens])
}
