package ingestion

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/chat-ingest/internal/core/embedding"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryMessages は externalMessageId の一意制約を持つインメモリのメッセージリポジトリ
type memoryMessages struct {
	mu          sync.Mutex
	rows        map[int64]ConversationRecord
	insertCalls int
	InsertErr   error
	CountErr    error
	DeleteErr   error
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{rows: make(map[int64]ConversationRecord)}
}

func (m *memoryMessages) Insert(ctx context.Context, record *ConversationRecord) (*ConversationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	if _, ok := m.rows[record.ExternalMessageID]; ok {
		return nil, ErrDuplicateMessage
	}
	stored := *record
	stored.ID = uuid.New()
	stored.IngestedAt = time.Now()
	m.rows[record.ExternalMessageID] = stored
	return &stored, nil
}

func (m *memoryMessages) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return int64(len(m.rows)), nil
}

func (m *memoryMessages) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	var n int64
	for _, r := range m.rows {
		if r.SenderID == senderID {
			n++
		}
	}
	return n, nil
}

func (m *memoryMessages) DeleteBySender(ctx context.Context, senderID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	var n int64
	for id, r := range m.rows {
		if r.SenderID == senderID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryMessages) get(externalID int64) (ConversationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[externalID]
	return r, ok
}

func (m *memoryMessages) inserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCalls
}

// memoryOptOuts はインメモリのオプトアウトリポジトリ
type memoryOptOuts struct {
	mu        sync.Mutex
	senders   map[int64]struct{}
	ExistsErr error
	AddErr    error
}

func newMemoryOptOuts(senders ...int64) *memoryOptOuts {
	m := &memoryOptOuts{senders: make(map[int64]struct{})}
	for _, s := range senders {
		m.senders[s] = struct{}{}
	}
	return m
}

func (m *memoryOptOuts) Exists(ctx context.Context, senderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, ok := m.senders[senderID]
	return ok, nil
}

func (m *memoryOptOuts) Add(ctx context.Context, senderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.senders[senderID] = struct{}{}
	return nil
}

func (m *memoryOptOuts) Remove(ctx context.Context, senderID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.senders[senderID]; !ok {
		return 0, nil
	}
	delete(m.senders, senderID)
	return 1, nil
}

// stubEmbedder は呼び出し回数を数える Embedder
type stubEmbedder struct {
	mu        sync.Mutex
	available bool
	dimension int
	calls     int
}

func (e *stubEmbedder) IsAvailable() bool {
	return e.available
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) embedding.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if !e.available {
		return embedding.Absent()
	}
	return embedding.Present(make(embedding.Vector, e.dimension))
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// hangingEmbedder は release が閉じられるか ctx が終わるまで応答しない Embedder
type hangingEmbedder struct {
	started chan struct{}
	release chan struct{}
}

func newHangingEmbedder() *hangingEmbedder {
	return &hangingEmbedder{
		started: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (e *hangingEmbedder) IsAvailable() bool {
	return true
}

func (e *hangingEmbedder) Embed(ctx context.Context, text string) embedding.Result {
	e.started <- struct{}{}
	select {
	case <-ctx.Done():
	case <-e.release:
	}
	return embedding.Absent()
}

type fixture struct {
	messages *memoryMessages
	optOuts  *memoryOptOuts
	embedder *stubEmbedder
	store    *MessageStore
	gate     *PrivacyGate
	pipeline *Pipeline
}

func newFixture(embedder *stubEmbedder, optedOut ...int64) *fixture {
	logger := discardLogger()
	f := &fixture{
		messages: newMemoryMessages(),
		optOuts:  newMemoryOptOuts(optedOut...),
		embedder: embedder,
	}
	f.store = NewMessageStore(f.messages, logger)
	f.gate = NewPrivacyGate(f.optOuts, f.store, WithPrivacyLogger(logger))
	f.pipeline = NewPipeline(f.gate, embedder, f.store, WithPipelineLogger(logger))
	return f
}

func textMessage(externalID, senderID, conversationID int64, text string) IncomingMessage {
	return IncomingMessage{
		ExternalMessageID: externalID,
		Text:              text,
		SenderID:          senderID,
		ConversationID:    conversationID,
		SentAt:            time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("JST", 9*60*60)),
	}
}
