package container

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sqliteConfig() *config.Config {
	return &config.Config{
		StoreDriver:      config.StoreDriverSQLite,
		SQLite:           config.SQLiteConfig{Path: ":memory:"},
		OpenAI:           config.OpenAIConfig{EmbeddingDimension: embedding.OpenAIDimension},
		IngestWorkers:    4,
		IngestTimeout:    5 * time.Second,
		IngestMaxPending: 16,
	}
}

func newTestContainer(t *testing.T, cfg *config.Config, opts ...ContainerOption) *ServiceContainer {
	t.Helper()
	c, err := NewContainer(context.Background(), discardLogger(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.Migrate(context.Background()))
	return c
}

func TestNewContainer_NoCredentialsIsUnavailable(t *testing.T) {
	c := newTestContainer(t, sqliteConfig())

	assert.False(t, c.Registry.IsAvailable())
	assert.Equal(t, embedding.NoneLabel, c.Registry.ProviderLabel())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), discardLogger(), &config.Config{StoreDriver: config.StoreDriverSQLite})

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "SQLITE_PATH")
}

func TestNewContainer_RejectsMismatchedOpenAIDimension(t *testing.T) {
	cfg := sqliteConfig()
	cfg.OpenAI.EmbeddingDimension = 0

	_, err := NewContainer(context.Background(), discardLogger(), cfg)
	require.ErrorIs(t, err, config.ErrInvalidEmbeddingDimension)
}

func TestEmbeddingCandidates_Order(t *testing.T) {
	candidates := EmbeddingCandidates(sqliteConfig(), discardLogger())

	require.Len(t, candidates, 2)
	assert.Equal(t, embedding.KindOpenAI, candidates[0].Kind)
	assert.Equal(t, embedding.OpenAIDimension, candidates[0].Dimension)
	assert.Equal(t, embedding.KindGemini, candidates[1].Kind)
	assert.Equal(t, embedding.GeminiDimension, candidates[1].Dimension)

	for _, c := range candidates {
		_, err := c.New(context.Background())
		assert.ErrorIs(t, err, embedding.ErrCredentialMissing)
	}
}

func TestNewContainer_PipelineAndPrivacyWired(t *testing.T) {
	c := newTestContainer(t, sqliteConfig())
	ctx := context.Background()

	msg := ingestion.IncomingMessage{
		ExternalMessageID: 1,
		Text:              "hello",
		SenderID:          42,
		ConversationID:    100,
		SentAt:            time.Now(),
	}
	assert.Equal(t, ingestion.StatePersisted, c.Pipeline.Ingest(ctx, msg))
	assert.Equal(t, int64(1), c.Store.Count(ctx))

	deleted, ok := c.PrivacyGate.Forget(ctx, 42)
	assert.True(t, ok)
	assert.Equal(t, int64(1), deleted)

	n, err := c.OptOuts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestServiceContainer_NewDispatcher(t *testing.T) {
	c := newTestContainer(t, sqliteConfig())

	var (
		mu     sync.Mutex
		states []ingestion.State
		wg     sync.WaitGroup
	)
	d, err := c.NewDispatcher(context.Background(), ingestion.WithCompletionHook(func(_ ingestion.IncomingMessage, s ingestion.State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
		wg.Done()
	}))
	require.NoError(t, err)

	for i := range 5 {
		wg.Add(1)
		require.NoError(t, d.Submit(ingestion.IncomingMessage{
			ExternalMessageID: int64(100 + i),
			Text:              "async",
			SenderID:          1,
			ConversationID:    100,
			SentAt:            time.Now(),
		}))
	}
	wg.Wait()
	require.NoError(t, d.Close())

	assert.Len(t, states, 5)
	assert.Equal(t, int64(5), c.Store.Count(context.Background()))
}
