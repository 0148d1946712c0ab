package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/domain/user"
)

var LedgerAggregateContract = Contract{
	Name:             "Tokens.LedgerAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Sole writer of token_balance and the earned/spent totals. Every balance change " +
		"inserts exactly one token_transaction row in the same transaction.",
}

// LedgerAggregate owns user balance mutations.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed (ErrInsufficientFunds,
// ErrAlreadyClaimedToday), CodeConflict, CodeRetryable, CodeInternal.
type LedgerAggregate interface {
	Aggregate

	// Apply locks the user row, applies a signed amount and appends the ledger row.
	// When IdempotencyKey matches an existing row that row is returned unchanged.
	Apply(ctx context.Context, in ApplyLedgerEntryInput) (ApplyLedgerEntryResult, error)

	// ClaimDailyChallenge credits the daily reward at most once per UTC day.
	ClaimDailyChallenge(ctx context.Context, in ClaimDailyChallengeInput) (ClaimDailyChallengeResult, error)
}

type ApplyLedgerEntryInput struct {
	UserID         uuid.UUID
	Amount         int64
	Entry          ledger.Entry
	IdempotencyKey string
	At             time.Time
}

type ApplyLedgerEntryResult struct {
	Transaction *ledger.TokenTransaction
	// Replayed is true when an earlier row with the same idempotency key was returned.
	Replayed bool
}

type ClaimDailyChallengeInput struct {
	UserID uuid.UUID
	At     time.Time
}

type ClaimDailyChallengeResult struct {
	Transaction *ledger.TokenTransaction
	// StreakBonus is set when this claim completed a bonus streak.
	StreakBonus *ledger.TokenTransaction
	Streak      int
	NewBalance  int64
}

var AccountAggregateContract = Contract{
	Name:             "Identity.AccountAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Creates the user row and its signup ledger entry together.",
}

// AccountAggregate owns account creation so a new balance is backed by ledger rows from the start.
type AccountAggregate interface {
	Aggregate

	Register(ctx context.Context, in RegisterAccountInput) (RegisterAccountResult, error)
}

type RegisterAccountInput struct {
	User *user.User
	// ReferrerID is optional; an active referrer is credited the referral reward.
	ReferrerID uuid.UUID
	At         time.Time
}

type RegisterAccountResult struct {
	User        *user.User
	Transaction *ledger.TokenTransaction
	Referral    *ledger.TokenTransaction
}
