package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ofertaeducativa/catalogo/core"
)

// pq error code for unique_violation
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

// wrap converts a driver error into the error returned by the repositories.
func wrap(op, resource string, id int64, err error) error {
	if err == sql.ErrNoRows {
		return core.NewNotFoundError(resource, id)
	}
	return core.NewStorageError(op, err)
}

// checkAffected reports a NotFoundError when a write matched no row.
func checkAffected(res sql.Result, op, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError(op, err)
	}
	if n == 0 {
		return core.NewNotFoundError(resource, id)
	}
	return nil
}
