package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinford/chat-ingest/internal/core/embedding"
)

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func stringPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullToStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// encodeVector はベクトルを JSON 配列として保存用に変換します（Absent は NULL）
func encodeVector(r embedding.Result) (sql.NullString, error) {
	v, ok := r.Get()
	if !ok {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeVector(s sql.NullString) (embedding.Result, error) {
	if !s.Valid || s.String == "" {
		return embedding.Absent(), nil
	}
	var v embedding.Vector
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return embedding.Absent(), fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	return embedding.Present(v), nil
}
