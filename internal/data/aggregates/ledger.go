package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

// ledgerWriter is the single code path that moves token_balance. Callers must already
// be inside a transaction.
type ledgerWriter struct {
	users repos.UserRepo
	txs   repos.TokenTransactionRepo
}

type ledgerApply struct {
	UserID         uuid.UUID
	Amount         int64
	Entry          ledger.Entry
	IdempotencyKey string
	At             time.Time
}

func (w ledgerWriter) apply(dbc dbctx.Context, in ledgerApply) (*types.TokenTransaction, bool, error) {
	if in.UserID == uuid.Nil {
		return nil, false, ValidationError("user id is required")
	}
	if in.Entry == nil {
		return nil, false, ValidationError("ledger entry is required")
	}
	if in.Amount == 0 {
		return nil, false, ValidationError("Invalid token amount")
	}
	if ledger.IsDebit(in.Entry) != (in.Amount < 0) {
		return nil, false, ValidationError(fmt.Sprintf("amount sign does not match %s", in.Entry.Type()))
	}

	u, err := w.users.LockByID(dbc, in.UserID)
	if err != nil {
		return nil, false, err
	}
	if u == nil {
		return nil, false, NotFoundError("User not found")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := w.txs.GetByIdempotencyKey(dbc, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	if u.TokenBalance+in.Amount < 0 {
		return nil, false, PreconditionError(domainagg.ErrInsufficientFunds)
	}

	earned, spent := ledger.CounterDeltas(in.Entry, in.Amount)
	ok, err := w.users.ApplyBalanceDelta(dbc, u.ID, in.Amount, earned, spent)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, PreconditionError(domainagg.ErrInsufficientFunds)
	}

	var md datatypes.JSON
	if m := in.Entry.Metadata(); len(m) > 0 {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, false, err
		}
		md = datatypes.JSON(b)
	}
	refID, refType := in.Entry.Reference()
	row := &types.TokenTransaction{
		UserID:        u.ID,
		Amount:        in.Amount,
		Type:          in.Entry.Type(),
		Description:   in.Entry.Description(abs(in.Amount)),
		BalanceBefore: u.TokenBalance,
		BalanceAfter:  u.TokenBalance + in.Amount,
		ReferenceID:   refID,
		ReferenceType: refType,
		Metadata:      md,
		CreatedAt:     in.At.UTC(),
	}
	if key != "" {
		row.IdempotencyKey = &key
	}
	if _, err := w.txs.Create(dbc, []*types.TokenTransaction{row}); err != nil {
		return nil, false, err
	}
	return row, false, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func orNow(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at.UTC()
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type LedgerDeps struct {
	Base    BaseDeps
	Users   repos.UserRepo
	Txs     repos.TokenTransactionRepo
	Economy ledger.Economy
}

type ledgerAggregate struct {
	deps LedgerDeps
	w    ledgerWriter
}

var _ domainagg.LedgerAggregate = (*ledgerAggregate)(nil)

func NewLedgerAggregate(deps LedgerDeps) domainagg.LedgerAggregate {
	deps.Base = deps.Base.withDefaults()
	return &ledgerAggregate{deps: deps, w: ledgerWriter{users: deps.Users, txs: deps.Txs}}
}

func (a *ledgerAggregate) Contract() domainagg.Contract {
	return domainagg.LedgerAggregateContract
}

func (a *ledgerAggregate) Apply(ctx context.Context, in domainagg.ApplyLedgerEntryInput) (domainagg.ApplyLedgerEntryResult, error) {
	const op = "Tokens.LedgerAggregate.Apply"
	out := domainagg.ApplyLedgerEntryResult{}
	if a == nil || a.deps.Users == nil || a.deps.Txs == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "ledger aggregate not initialized", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, replayed, err := a.w.apply(dbc, ledgerApply{
			UserID:         in.UserID,
			Amount:         in.Amount,
			Entry:          in.Entry,
			IdempotencyKey: in.IdempotencyKey,
			At:             orNow(in.At),
		})
		if err != nil {
			return err
		}
		out.Transaction = row
		out.Replayed = replayed
		return nil
	})
	if err != nil {
		return domainagg.ApplyLedgerEntryResult{}, err
	}
	return out, nil
}

func (a *ledgerAggregate) ClaimDailyChallenge(ctx context.Context, in domainagg.ClaimDailyChallengeInput) (domainagg.ClaimDailyChallengeResult, error) {
	const op = "Tokens.LedgerAggregate.ClaimDailyChallenge"
	out := domainagg.ClaimDailyChallengeResult{}
	if a == nil || a.deps.Users == nil || a.deps.Txs == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "ledger aggregate not initialized", nil)
	}
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "user id is required", nil)
	}
	at := orNow(in.At)
	today := utcMidnight(at)
	day := today.Format("2006-01-02")

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// Serializes concurrent claims for the same user before the existence check.
		u, err := a.deps.Users.LockByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return NotFoundError("User not found")
		}
		claimed, err := a.deps.Txs.ExistsSince(dbc, u.ID, ledger.TypeEarnedChallenge, today)
		if err != nil {
			return err
		}
		if claimed {
			return PreconditionError(domainagg.ErrAlreadyClaimedToday)
		}

		row, replayed, err := a.w.apply(dbc, ledgerApply{
			UserID:         u.ID,
			Amount:         a.deps.Economy.DailyChallengeTokens,
			Entry:          ledger.ChallengeEarned{Day: day},
			IdempotencyKey: "challenge:" + u.ID.String() + ":" + day,
			At:             at,
		})
		if err != nil {
			return err
		}
		if replayed {
			return PreconditionError(domainagg.ErrAlreadyClaimedToday)
		}
		out.Transaction = row
		out.NewBalance = row.BalanceAfter

		streak := 1
		if u.LastActiveDate != nil && utcMidnight(*u.LastActiveDate).Equal(today.AddDate(0, 0, -1)) {
			streak = u.CurrentStreak + 1
		} else if u.LastActiveDate != nil && utcMidnight(*u.LastActiveDate).Equal(today) {
			streak = max(u.CurrentStreak, 1)
		}
		longest := max(u.LongestStreak, streak)
		if err := a.deps.Users.UpdateStreak(dbc, u.ID, streak, longest, today); err != nil {
			return err
		}
		out.Streak = streak

		if a.deps.Economy.StreakBonusDue(streak) {
			bonus, _, err := a.w.apply(dbc, ledgerApply{
				UserID:         u.ID,
				Amount:         a.deps.Economy.StreakBonusTokens,
				Entry:          ledger.StreakEarned{Days: streak},
				IdempotencyKey: "streak:" + u.ID.String() + ":" + day,
				At:             at,
			})
			if err != nil {
				return err
			}
			out.StreakBonus = bonus
			out.NewBalance = bonus.BalanceAfter
		}
		return nil
	})
	if err != nil {
		return domainagg.ClaimDailyChallengeResult{}, err
	}
	return out, nil
}

type AccountDeps struct {
	Base    BaseDeps
	Users   repos.UserRepo
	Txs     repos.TokenTransactionRepo
	Economy ledger.Economy
}

type accountAggregate struct {
	deps AccountDeps
	w    ledgerWriter
}

var _ domainagg.AccountAggregate = (*accountAggregate)(nil)

func NewAccountAggregate(deps AccountDeps) domainagg.AccountAggregate {
	deps.Base = deps.Base.withDefaults()
	return &accountAggregate{deps: deps, w: ledgerWriter{users: deps.Users, txs: deps.Txs}}
}

func (a *accountAggregate) Contract() domainagg.Contract {
	return domainagg.AccountAggregateContract
}

func (a *accountAggregate) Register(ctx context.Context, in domainagg.RegisterAccountInput) (domainagg.RegisterAccountResult, error) {
	const op = "Identity.AccountAggregate.Register"
	out := domainagg.RegisterAccountResult{}
	if a == nil || a.deps.Users == nil || a.deps.Txs == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "account aggregate not initialized", nil)
	}
	if in.User == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "user is required", nil)
	}
	u := in.User
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" || u.Password == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "email and password are required", nil)
	}
	at := orNow(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		taken, err := a.deps.Users.EmailExists(dbc, u.Email)
		if err != nil {
			return err
		}
		if taken {
			return ConflictError("Email already registered")
		}

		// Balances only ever move through the ledger.
		u.TokenBalance, u.TotalTokensEarned, u.TotalTokensSpent = 0, 0, 0
		u.IsActive = true
		if _, err := a.deps.Users.Create(dbc, []*types.User{u}); err != nil {
			if isUniqueViolation(err) {
				return ConflictError("Email already registered")
			}
			return err
		}

		if a.deps.Economy.InitialUserTokens > 0 {
			row, _, err := a.w.apply(dbc, ledgerApply{
				UserID: u.ID,
				Amount: a.deps.Economy.InitialUserTokens,
				Entry:  ledger.SignupBonus{},
				At:     at,
			})
			if err != nil {
				return err
			}
			out.Transaction = row
			u.TokenBalance = row.BalanceAfter
			u.TotalTokensEarned = row.BalanceAfter
		}

		if in.ReferrerID != uuid.Nil && in.ReferrerID != u.ID && a.deps.Economy.ReferralTokens > 0 {
			referrers, err := a.deps.Users.GetActiveByIDs(dbc, []uuid.UUID{in.ReferrerID})
			if err != nil {
				return err
			}
			if len(referrers) == 1 {
				row, _, err := a.w.apply(dbc, ledgerApply{
					UserID:         in.ReferrerID,
					Amount:         a.deps.Economy.ReferralTokens,
					Entry:          ledger.ReferralEarned{ReferredUserID: u.ID},
					IdempotencyKey: "referral:" + u.ID.String(),
					At:             at,
				})
				if err != nil {
					return err
				}
				out.Referral = row
			}
		}
		out.User = u
		return nil
	})
	if err != nil {
		return domainagg.RegisterAccountResult{}, err
	}
	return out, nil
}
