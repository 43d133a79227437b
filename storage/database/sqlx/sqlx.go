package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	pqForeignKeyViolation     = "23503"
	sqliteConstraint          = 19  // SQLITE_CONSTRAINT
	sqliteForeignKeyViolation = 787 // SQLITE_CONSTRAINT_FOREIGNKEY
)

// sqliteError is implemented by modernc.org/sqlite errors.
type sqliteError interface {
	Code() int
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr sqliteError
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqliteForeignKeyViolation ||
			(code&0xff == sqliteConstraint && strings.Contains(err.Error(), "FOREIGN KEY"))
	}
	return false
}

// where joins the non-empty conditions with AND.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
