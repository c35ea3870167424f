package postgres

import (
	"context"
	"errors"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx so every
// repository method works inside and outside a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// mapIntegrityError converts unique (23505) and foreign-key (23503)
// violations into storage.IntegrityError; other errors pass through.
func mapIntegrityError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23503") {
		detail := pgErr.Detail
		if detail == "" {
			detail = pgErr.Message
		}
		return &storage.IntegrityError{Constraint: pgErr.ConstraintName, Detail: detail}
	}
	return err
}

// sortDirection renders the ORDER BY direction keyword. Directions never
// come from user input verbatim; only these two tokens reach the SQL text.
func sortDirection(params paging.Params) string {
	if params.Descending() {
		return "DESC"
	}
	return "ASC"
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
