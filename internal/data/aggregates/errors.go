package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrInvariant indicates invariant rule violation.
	ErrInvariant = errors.New("aggregate invariant violation")
	// ErrConflict indicates optimistic/concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
	// ErrPrecondition indicates a business rule refused the write.
	ErrPrecondition = errors.New("aggregate precondition")
	// ErrNotFound indicates the target is absent or outside the caller's scope.
	ErrNotFound = errors.New("aggregate not found")
)

// taggedError carries a caller-facing message plus the tag used by MapError.
type taggedError struct {
	kind  error
	msg   string
	cause error
}

func (e *taggedError) Error() string        { return e.msg }
func (e *taggedError) Is(target error) bool { return target == e.kind }
func (e *taggedError) Unwrap() error        { return e.cause }

func tag(kind error, msg string, cause error) error {
	return &taggedError{kind: kind, msg: strings.TrimSpace(msg), cause: cause}
}

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error { return tag(ErrValidation, msg, nil) }

// InvariantError tags an error as invariant violation.
func InvariantError(msg string) error { return tag(ErrInvariant, msg, nil) }

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error { return tag(ErrConflict, msg, nil) }

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error { return tag(ErrRetryable, msg, nil) }

// NotFoundError tags a scoped lookup miss.
func NotFoundError(msg string) error { return tag(ErrNotFound, msg, nil) }

// PreconditionError tags a domain sentinel (ErrInsufficientFunds, ...) so errors.Is still matches it.
func PreconditionError(sentinel error) error {
	return tag(ErrPrecondition, sentinel.Error(), sentinel)
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}

	var tagged *taggedError
	if errors.As(err, &tagged) {
		code := domainagg.CodeInternal
		switch tagged.kind {
		case ErrValidation:
			code = domainagg.CodeValidation
		case ErrInvariant:
			code = domainagg.CodeInvariantViolation
		case ErrConflict:
			code = domainagg.CodeConflict
		case ErrRetryable:
			code = domainagg.CodeRetryable
		case ErrPrecondition:
			code = domainagg.CodePreconditionFailed
		case ErrNotFound:
			code = domainagg.CodeNotFound
		}
		return domainagg.NewError(code, op, tagged.msg, err)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "23503":
			return domainagg.Wrap(domainagg.CodePreconditionFailed, op, err) // foreign_key_violation
		case "23514":
			return domainagg.Wrap(domainagg.CodeInvariantViolation, op, err) // check_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "unique constraint"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
