package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	embedResp *genai.EmbedContentResponse
	batchResp *genai.BatchEmbedContentsResponse
	err       error
	lastBatch *genai.EmbeddingBatch
}

func (m *stubModel) EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error) {
	return m.embedResp, m.err
}

func (m *stubModel) BatchEmbedContents(ctx context.Context, b *genai.EmbeddingBatch) (*genai.BatchEmbedContentsResponse, error) {
	m.lastBatch = b
	return m.batchResp, m.err
}

func (m *stubModel) NewBatch() *genai.EmbeddingBatch {
	return (&genai.EmbeddingModel{}).NewBatch()
}

func TestNewEmbedderWithoutKey(t *testing.T) {
	_, err := NewEmbedder(context.Background(), "")

	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
	assert.ErrorIs(t, err, embedding.ErrCredentialMissing)
}

func TestEmbedder_Embed(t *testing.T) {
	model := &stubModel{
		embedResp: &genai.EmbedContentResponse{
			Embedding: &genai.ContentEmbedding{Values: []float32{0.1, 0.2}},
		},
	}
	e := &Embedder{model: model, name: DefaultEmbeddingModel}

	vector, err := e.Embed(context.Background(), "test")

	require.NoError(t, err)
	assert.Equal(t, embedding.Vector{0.1, 0.2}, vector)
	assert.Equal(t, DefaultEmbeddingModel, e.ModelName())
	assert.Equal(t, embedding.GeminiDimension, e.Dimension())
}

func TestEmbedder_EmbedEmptyResponse(t *testing.T) {
	e := &Embedder{model: &stubModel{embedResp: &genai.EmbedContentResponse{}}}

	_, err := e.Embed(context.Background(), "test")

	assert.Error(t, err)
}

func TestEmbedder_BatchEmbedPerItemFailure(t *testing.T) {
	model := &stubModel{
		batchResp: &genai.BatchEmbedContentsResponse{
			Embeddings: []*genai.ContentEmbedding{
				{Values: []float32{1}},
				nil,
				{Values: []float32{3}},
			},
		},
	}
	e := &Embedder{model: model}

	results, err := e.BatchEmbed(context.Background(), []string{"t1", "t2", "t3"})

	require.NoError(t, err)
	require.Len(t, results, 3)
	first, ok := results[0].Get()
	require.True(t, ok)
	assert.Equal(t, embedding.Vector{1}, first)
	assert.True(t, results[1].IsAbsent())
	third, ok := results[2].Get()
	require.True(t, ok)
	assert.Equal(t, embedding.Vector{3}, third)
}

func TestEmbedder_BatchEmbedShortResponse(t *testing.T) {
	model := &stubModel{
		batchResp: &genai.BatchEmbedContentsResponse{
			Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
		},
	}
	e := &Embedder{model: model}

	results, err := e.BatchEmbed(context.Background(), []string{"t1", "t2"})

	require.NoError(t, err)
	assert.True(t, results[0].IsPresent())
	assert.True(t, results[1].IsAbsent())
}

func TestEmbedder_BatchEmbedError(t *testing.T) {
	e := &Embedder{model: &stubModel{err: errors.New("RESOURCE_EXHAUSTED")}}

	_, err := e.BatchEmbed(context.Background(), []string{"t1"})

	assert.Error(t, err)
}

func TestEmbedder_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, (&Embedder{}).Close())
}
