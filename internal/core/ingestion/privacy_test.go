package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForget struct {
	OptOutAndPurgeFunc func(ctx context.Context, senderID int64) (int64, error)
}

func (s *stubForget) OptOutAndPurge(ctx context.Context, senderID int64) (int64, error) {
	return s.OptOutAndPurgeFunc(ctx, senderID)
}

func TestPrivacyGate_OptOutIsIdempotent(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	ctx := context.Background()

	assert.True(t, f.gate.OptOut(ctx, 3))
	assert.True(t, f.gate.OptOut(ctx, 3))
	assert.True(t, f.gate.IsOptedOut(ctx, 3))
	assert.False(t, f.gate.IsOptedOut(ctx, 4))
}

func TestPrivacyGate_OptOutReportsFailure(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	f.optOuts.AddErr = errors.New("connection reset")

	assert.False(t, f.gate.OptOut(context.Background(), 3))
}

func TestPrivacyGate_OptIn(t *testing.T) {
	f := newFixture(&stubEmbedder{}, 3)
	ctx := context.Background()

	assert.True(t, f.gate.OptIn(ctx, 3))
	assert.False(t, f.gate.IsOptedOut(ctx, 3))
	assert.True(t, f.gate.OptIn(ctx, 3), "未登録でも成功")
}

func TestPrivacyGate_OptOutThenPurge(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	ctx := context.Background()
	for i, text := range []string{"a", "b", "c"} {
		f.pipeline.Ingest(ctx, textMessage(int64(100+i), 3, 100, text))
	}
	f.pipeline.Ingest(ctx, textMessage(200, 4, 100, "other"))
	prior := f.store.CountBySender(ctx, 3)
	total := f.store.Count(ctx)

	assert.True(t, f.gate.OptOut(ctx, 3))
	deleted, ok := f.gate.PurgeMessages(ctx, 3)

	require.True(t, ok)
	assert.Equal(t, prior, deleted)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, total-deleted, f.store.Count(ctx))
}

func TestPrivacyGate_PurgeErrorIsReportedAsFailure(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	ctx := context.Background()
	f.pipeline.Ingest(ctx, textMessage(1, 3, 100, "a"))
	f.messages.DeleteErr = errors.New("timeout")

	deleted, ok := f.gate.PurgeMessages(ctx, 3)

	assert.False(t, ok)
	assert.Equal(t, int64(0), deleted)
	f.messages.DeleteErr = nil
	assert.Equal(t, int64(1), f.store.CountBySender(ctx, 3))
}

func TestPrivacyGate_PurgeWithoutRowsSucceedsWithZero(t *testing.T) {
	f := newFixture(&stubEmbedder{})

	deleted, ok := f.gate.PurgeMessages(context.Background(), 3)

	assert.True(t, ok)
	assert.Equal(t, int64(0), deleted)
}

func TestPrivacyGate_ForgetReportsPurgeFailure(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	f.messages.DeleteErr = errors.New("timeout")

	_, ok := f.gate.Forget(context.Background(), 3)

	assert.False(t, ok)
}

func TestPrivacyGate_ForgetWithoutTransactionalRepository(t *testing.T) {
	f := newFixture(&stubEmbedder{})
	ctx := context.Background()
	f.pipeline.Ingest(ctx, textMessage(1, 3, 100, "a"))

	deleted, ok := f.gate.Forget(ctx, 3)

	assert.True(t, ok)
	assert.Equal(t, int64(1), deleted)
	assert.True(t, f.gate.IsOptedOut(ctx, 3))
}

func TestPrivacyGate_ForgetUsesTransactionalRepository(t *testing.T) {
	logger := discardLogger()
	store := NewMessageStore(newMemoryMessages(), logger)
	forget := &stubForget{
		OptOutAndPurgeFunc: func(ctx context.Context, senderID int64) (int64, error) {
			return 5, nil
		},
	}
	gate := NewPrivacyGate(newMemoryOptOuts(), store, WithPrivacyLogger(logger), WithForgetRepository(forget))

	deleted, ok := gate.Forget(context.Background(), 3)

	assert.True(t, ok)
	assert.Equal(t, int64(5), deleted)
}

func TestPrivacyGate_ForgetFailure(t *testing.T) {
	logger := discardLogger()
	store := NewMessageStore(newMemoryMessages(), logger)
	forget := &stubForget{
		OptOutAndPurgeFunc: func(ctx context.Context, senderID int64) (int64, error) {
			return 0, errors.New("tx aborted")
		},
	}
	gate := NewPrivacyGate(newMemoryOptOuts(), store, WithPrivacyLogger(logger), WithForgetRepository(forget))

	deleted, ok := gate.Forget(context.Background(), 3)

	assert.False(t, ok)
	assert.Equal(t, int64(0), deleted)
}
