package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "メッセージIDの一意制約違反",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "messages_external_message_id_key"},
			want: true,
		},
		{
			name: "ラップされた一意制約違反",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "messages_external_message_id_key"}),
			want: true,
		},
		{
			name: "別の一意制約",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "messages_pkey"},
			want: false,
		},
		{
			name: "別のエラーコード",
			err:  &pgconn.PgError{Code: "23502"},
			want: false,
		},
		{
			name: "duplicate を含む文字列でも構造化エラーでなければ false",
			err:  errors.New("duplicate key value violates unique constraint"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateMessage(tt.err))
		})
	}
}
