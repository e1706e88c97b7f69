package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Code identifies an error class with a stable value that API clients can
// branch on.
type Code string

const (
	CodeReferentialIntegrity Code = "REFERENTIAL_INTEGRITY"
	CodeRecordNotFound       Code = "RECORD_NOT_FOUND"
	CodeTxConflict           Code = "TX_CONFLICT"
	CodeConstraintViolation  Code = "CONSTRAINT_VIOLATION"
	CodeTimeout              Code = "TIMEOUT"
	CodeOperationInProgress  Code = "OPERATION_IN_PROGRESS"
	CodeInternal             Code = "INTERNAL"
)

// ErrOperationInProgress is returned when another purge or seed for the same
// tenant holds the tenant lock.
var ErrOperationInProgress = &Error{
	Code: CodeOperationInProgress,
	Op:   "lock",
	Err:  errors.New("a purge or seed operation is already running for this tenant"),
}

// Error is a classified engine error. Op names the step ("purge", "seed",
// "snapshot", ...), Entity the entity type being processed when known, and
// Constraint the violated relation or constraint when the database reported
// one.
type Error struct {
	Code       Code
	Op         string
	Entity     string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Code)
	if e.Entity != "" {
		msg += " (" + e.Entity + ")"
	}
	if e.Constraint != "" {
		msg += " [" + e.Constraint + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the whole operation. The
// engine itself never retries.
func (e *Error) Retryable() bool { return e.Code == CodeTxConflict }

// CodeOf extracts the error code, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// SQLSTATE classes of interest. Serialization failures and deadlocks are
// both reported as transaction conflicts.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgQueryCanceled       = "57014"
)

// classify converts a data-layer error into a typed engine error. Timeouts
// are distinguished from data errors so operators can tell "too slow" apart
// from "inconsistent".
func classify(op, entity string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Op: op, Entity: entity, Err: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Code: CodeRecordNotFound, Op: op, Entity: entity, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &Error{Code: CodeReferentialIntegrity, Op: op, Entity: entity,
				Constraint: pgErr.ConstraintName, Err: err}
		case pgUniqueViolation, pgCheckViolation:
			return &Error{Code: CodeConstraintViolation, Op: op, Entity: entity,
				Constraint: pgErr.ConstraintName, Err: err}
		case pgSerializationFail, pgDeadlockDetected:
			return &Error{Code: CodeTxConflict, Op: op, Entity: entity, Err: err}
		case pgQueryCanceled:
			return &Error{Code: CodeTimeout, Op: op, Entity: entity, Err: err}
		}
	}

	return &Error{Code: CodeInternal, Op: op, Entity: entity, Err: err}
}
