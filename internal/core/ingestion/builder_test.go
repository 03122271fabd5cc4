package ingestion

import (
	"testing"
	"time"

	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecord_IsDeterministic(t *testing.T) {
	name := "alice"
	msg := textMessage(10, 42, 100, "hello")
	msg.SenderGivenName = &name
	vec := embedding.Present(embedding.Vector{0.1, 0.2, 0.3})

	first := BuildRecord(msg, vec)
	second := BuildRecord(msg, vec)

	assert.Equal(t, first, second)
}

func TestBuildRecord_MapsFields(t *testing.T) {
	display, given, family := "bob_the_builder", "Bob", "Builder"
	msg := textMessage(555, 9, -100123, "test")
	msg.SenderDisplayName = &display
	msg.SenderGivenName = &given
	msg.SenderFamilyName = &family

	record := BuildRecord(msg, embedding.Present(embedding.Vector{1, 2}))

	assert.Equal(t, int64(555), record.ExternalMessageID)
	assert.Equal(t, int64(9), record.SenderID)
	assert.Equal(t, int64(-100123), record.ConversationID)
	assert.Equal(t, "test", record.Text)
	assert.Equal(t, time.UTC, record.OccurredAt.Location())
	assert.True(t, record.OccurredAt.Equal(msg.SentAt))
	require.NotNil(t, record.SenderDisplayName)
	assert.Equal(t, "bob_the_builder", *record.SenderDisplayName)
	assert.Equal(t, "Bob", *record.SenderGivenName)
	assert.Equal(t, "Builder", *record.SenderFamilyName)

	v, ok := record.Vector.Get()
	require.True(t, ok)
	assert.Equal(t, embedding.Vector{1, 2}, v)
}

func TestBuildRecord_AbsentVectorAndNames(t *testing.T) {
	record := BuildRecord(textMessage(1, 42, 100, "hello"), embedding.Absent())

	assert.True(t, record.Vector.IsAbsent())
	assert.Nil(t, record.SenderDisplayName)
	assert.Nil(t, record.SenderGivenName)
	assert.Nil(t, record.SenderFamilyName)
}

func TestBuildRecord_DoesNotAliasInput(t *testing.T) {
	name := "carol"
	msg := textMessage(1, 42, 100, "hello")
	msg.SenderGivenName = &name
	vec := embedding.Vector{1, 2, 3}

	record := BuildRecord(msg, embedding.Present(vec))
	vec[0] = 99
	name = "mallory"

	v, _ := record.Vector.Get()
	assert.Equal(t, float32(1), v[0])
	assert.Equal(t, "carol", *record.SenderGivenName)
}

func TestIncomingMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     IncomingMessage
		wantErr bool
	}{
		{"valid", textMessage(1, 2, 3, "x"), false},
		{"empty text", textMessage(1, 2, 3, ""), true},
		{"no sender", textMessage(1, 0, 3, "x"), true},
		{"no conversation", textMessage(1, 2, 0, "x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
