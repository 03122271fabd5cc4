package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation = "23505"

	// messagesExternalIDConstraint は messages.external_message_id の一意制約名
	messagesExternalIDConstraint = "messages_external_message_id_key"
)

// isDuplicateMessage は externalMessageId の一意制約違反(23505)かどうかを判定します
func isDuplicateMessage(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrCodeUniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == messagesExternalIDConstraint
}
