package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStore_InsertOutcomes(t *testing.T) {
	messages := newMemoryMessages()
	store := NewMessageStore(messages, discardLogger())
	ctx := context.Background()
	record := BuildRecord(textMessage(555, 42, 100, "hello"), embedding.Absent())

	stored, outcome, err := store.Insert(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, PersistStored, outcome)
	assert.NotNil(t, stored)

	stored, outcome, err = store.Insert(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, PersistDuplicate, outcome)
	assert.Nil(t, stored)
	assert.Equal(t, int64(1), store.Count(ctx))
}

func TestMessageStore_WrappedDuplicateIsDetected(t *testing.T) {
	messages := newMemoryMessages()
	messages.InsertErr = fmt.Errorf("insert message: %w", ErrDuplicateMessage)
	store := NewMessageStore(messages, discardLogger())

	_, outcome, err := store.Insert(context.Background(), BuildRecord(textMessage(1, 2, 3, "x"), embedding.Absent()))

	assert.NoError(t, err)
	assert.Equal(t, PersistDuplicate, outcome)
}

func TestMessageStore_OtherErrorIsReturned(t *testing.T) {
	messages := newMemoryMessages()
	messages.InsertErr = errors.New("duplicate-looking text but not a conflict")
	store := NewMessageStore(messages, discardLogger())

	_, outcome, err := store.Insert(context.Background(), BuildRecord(textMessage(1, 2, 3, "x"), embedding.Absent()))

	assert.Error(t, err)
	assert.Equal(t, PersistFailed, outcome)
}

func TestMessageStore_FailuresReturnZero(t *testing.T) {
	messages := newMemoryMessages()
	messages.CountErr = errors.New("down")
	messages.DeleteErr = errors.New("down")
	store := NewMessageStore(messages, discardLogger())
	ctx := context.Background()

	assert.Equal(t, int64(0), store.Count(ctx))
	assert.Equal(t, int64(0), store.CountBySender(ctx, 1))
	deleted, ok := store.DeleteBySender(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, int64(0), deleted)
}

func TestPersistOutcome_String(t *testing.T) {
	assert.Equal(t, "stored", PersistStored.String())
	assert.Equal(t, "duplicate", PersistDuplicate.String())
	assert.Equal(t, "failed", PersistFailed.String())
}
