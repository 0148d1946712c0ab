package aggregates

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if got := domainagg.PublicMessage(err); got != "bad input" {
		t.Fatalf("public message: want=%q got=%q", "bad input", got)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	err = MapError("op", NotFoundError("Session not found or already started"))
	if !domainagg.IsCode(err, domainagg.CodeNotFound) || domainagg.PublicMessage(err) != "Session not found or already started" {
		t.Fatalf("scoped not found: %v", err)
	}
}

func TestMapError_PreconditionKeepsSentinel(t *testing.T) {
	err := MapError("op", PreconditionError(domainagg.ErrInsufficientFunds))
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("expected precondition code, got %q", domainagg.CodeOf(err))
	}
	if !errors.Is(err, domainagg.ErrInsufficientFunds) {
		t.Fatalf("errors.Is must reach the sentinel: %v", err)
	}
	if got := domainagg.PublicMessage(err); got != "Insufficient tokens" {
		t.Fatalf("public message: got=%q", got)
	}
}

func TestMapError_SQLiteUniqueIsConflict(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: user_skill.user_id"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
