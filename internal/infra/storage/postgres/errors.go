package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes worth retrying outside of class 08 (connection exception).
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"53300": true, // too_many_connections
	"55P03": true, // lock_not_available
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
}

func isTransientCode(code string) bool {
	return strings.HasPrefix(code, "08") || transientCodes[code]
}

// IsTransient reports whether err is a PostgreSQL failure that may succeed on
// retry. Both the pgx and lib/pq drivers are recognized.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isTransientCode(string(pqErr.Code))
	}

	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}
