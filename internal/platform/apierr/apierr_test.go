package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
)

func TestFromErrorMapsAggregateCodes(t *testing.T) {
	cases := []struct {
		code   domainagg.ErrorCode
		status int
	}{
		{domainagg.CodeValidation, http.StatusBadRequest},
		{domainagg.CodeInvariantViolation, http.StatusBadRequest},
		{domainagg.CodeConflict, http.StatusBadRequest},
		{domainagg.CodePreconditionFailed, http.StatusBadRequest},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeRetryable, http.StatusServiceUnavailable},
		{domainagg.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := domainagg.NewError(tc.code, "Test.Op", "boom", nil)
		got := FromError(fmt.Errorf("wrapped: %w", err))
		if got.Status != tc.status {
			t.Fatalf("%s: want=%d got=%d", tc.code, tc.status, got.Status)
		}
	}
}

func TestFromErrorHidesInternals(t *testing.T) {
	got := FromError(errors.New("pq: connection refused"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", got.Status)
	}
	if got.PublicMessage() != InternalMessage {
		t.Fatalf("public message leaked: %q", got.PublicMessage())
	}
}

func TestFromErrorKeepsDomainMessage(t *testing.T) {
	err := domainagg.NewError(domainagg.CodePreconditionFailed, "Tokens.LedgerAggregate.Apply", domainagg.ErrInsufficientFunds.Error(), domainagg.ErrInsufficientFunds)
	got := FromError(err)
	if got.PublicMessage() != "Insufficient tokens" {
		t.Fatalf("public message: got=%q", got.PublicMessage())
	}
	if got.Status != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", got.Status)
	}
}

func TestFromErrorPassesThroughAPIErrors(t *testing.T) {
	in := Newf(http.StatusBadGateway, "gateway_error", "Failed to create payment")
	got := FromError(fmt.Errorf("ctx: %w", in))
	if got != in {
		t.Fatalf("expected the same *Error back")
	}
	if got.PublicMessage() != "Failed to create payment" {
		t.Fatalf("gateway message: got=%q", got.PublicMessage())
	}
}
