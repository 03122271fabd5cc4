package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jinford/chat-ingest/internal/core/embedding"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
	"github.com/jinford/chat-ingest/internal/infra/postgres/sqlc"
	pgvector "github.com/pgvector/pgvector-go"
)

// PgtypeToUUID converts pgtype.UUID to uuid.UUID
func PgtypeToUUID(id pgtype.UUID) uuid.UUID {
	return id.Bytes
}

// StringPtrToPgtext converts *string to pgtype.Text
func StringPtrToPgtext(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// PgtextToStringPtr converts pgtype.Text to *string
func PgtextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

// TimeToPgtimestamptz converts time.Time to pgtype.Timestamptz
func TimeToPgtimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// PgtimestamptzToTime converts pgtype.Timestamptz to time.Time (UTC)
func PgtimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// ResultToPgvector converts embedding.Result to a nullable pgvector.Vector
func ResultToPgvector(r embedding.Result) *pgvector.Vector {
	v, ok := r.Get()
	if !ok {
		return nil
	}
	vec := pgvector.NewVector(v)
	return &vec
}

// PgvectorToResult converts a nullable pgvector.Vector to embedding.Result
func PgvectorToResult(v *pgvector.Vector) embedding.Result {
	if v == nil {
		return embedding.Absent()
	}
	return embedding.Present(embedding.Vector(v.Slice()))
}

func convertSQLCMessage(m sqlc.Message) *ingestion.ConversationRecord {
	return &ingestion.ConversationRecord{
		ID:                PgtypeToUUID(m.ID),
		ExternalMessageID: m.ExternalMessageID,
		Text:              m.Text,
		SenderID:          m.SenderID,
		ConversationID:    m.ConversationID,
		OccurredAt:        PgtimestamptzToTime(m.OccurredAt),
		Vector:            PgvectorToResult(m.Embedding),
		SenderDisplayName: PgtextToStringPtr(m.SenderDisplayName),
		SenderGivenName:   PgtextToStringPtr(m.SenderGivenName),
		SenderFamilyName:  PgtextToStringPtr(m.SenderFamilyName),
		IngestedAt:        PgtimestamptzToTime(m.IngestedAt),
	}
}
