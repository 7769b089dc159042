package pgutils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"
	codeTooManyConnections   = "53300"
	classConnectionException = "08"
)

// IsUniqueViolation reports whether err is a unique_violation, and on which
// constraint.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}

	return "", false
}

// IsTransient reports whether err is a store condition worth retrying:
// lock or statement timeout, deadlock, serialization failure, connection
// loss or an expired deadline (including the pool acquire bound). A caller
// that canceled its own context is not a store failure.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeQueryCanceled, codeSerializationFailure,
			codeDeadlockDetected, codeAdminShutdown, codeTooManyConnections:
			return true
		}

		return strings.HasPrefix(pgErr.Code, classConnectionException)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// Classify tags transient store failures with apperr.ErrStoreUnavailable
// and caller cancellation with apperr.ErrCanceled. Every other error is
// returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, apperr.ErrStoreUnavailable) || errors.Is(err, apperr.ErrCanceled) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", apperr.ErrCanceled, err)
	}

	if IsTransient(err) {
		return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}

	return err
}
