package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, letting a
// repository method take part in a caller-managed transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
