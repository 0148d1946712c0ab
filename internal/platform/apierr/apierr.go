package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
)

// FieldError is one failed request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Status int
	Code   string
	Err    error
	Fields []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf builds an error whose message is safe to return to clients.
func Newf(status int, code string, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

func Validation(fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Err: errors.New("Validation failed"), Fields: fields}
}

const InternalMessage = "Something went wrong"

// FromError converts any error into an *Error. Aggregate failures keep their public
// message; anything unrecognised becomes a generic 500.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		status := StatusForCode(aggErr.Code)
		if status == http.StatusInternalServerError {
			return &Error{Status: status, Code: "internal", Err: err}
		}
		return &Error{Status: status, Code: string(aggErr.Code), Err: errors.New(domainagg.PublicMessage(err))}
	}
	return &Error{Status: http.StatusInternalServerError, Code: "internal", Err: err}
}

func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation, domainagg.CodeInvariantViolation,
		domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message a client may see for e.
func (e *Error) PublicMessage() string {
	if e == nil {
		return InternalMessage
	}
	switch {
	case e.Status == http.StatusBadGateway, e.Status == http.StatusServiceUnavailable:
	case e.Status >= http.StatusInternalServerError:
		return InternalMessage
	}
	if e.Err == nil {
		return http.StatusText(e.Status)
	}
	return e.Err.Error()
}
