package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes with a mapping other than ErrorCodeDB
const (
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrReadOnlySQLTransaction    = "25006"
	pgErrCannotConnectNow          = "57P03"
	pgErrUndefinedTable            = "42P01"
)

// DBErrorCode maps a Postgres error to an ErrorCode, ok is false when err holds no PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErrStringDataRightTruncation, pgErrInvalidTextRepresentation:
		return ErrorCodeInvalidArgument, true
	case pgErrReadOnlySQLTransaction, pgErrCannotConnectNow, pgErrUndefinedTable:
		// the merge log is optional, a missing table reads as a disabled log
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code, nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}
