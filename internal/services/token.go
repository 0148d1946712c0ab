package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/platform/payments"
)

type TokenBalance struct {
	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"totalEarned"`
	TotalSpent  int64 `json:"totalSpent"`
}

type TransactionListInput struct {
	Type  types.TransactionType
	Page  int
	Limit int
}

type TransactionPage struct {
	Transactions []*types.TokenTransaction `json:"transactions"`
	Pagination   Pagination                `json:"pagination"`
}

type DailyChallengeResult struct {
	TokensEarned int64 `json:"tokensEarned"`
	NewBalance   int64 `json:"newBalance"`
	Streak       int   `json:"streak"`
	StreakBonus  int64 `json:"streakBonus,omitempty"`
}

type PurchaseResult struct {
	ClientSecret string  `json:"clientSecret"`
	Amount       int64   `json:"amount"`
	Price        float64 `json:"price"`
}

// AdminAdjustInput is a signed manual correction; negative amounts debit.
type AdminAdjustInput struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

type TokenService interface {
	Balance(ctx context.Context) (*TokenBalance, error)
	Transactions(ctx context.Context, in TransactionListInput) (*TransactionPage, error)
	DailyChallenge(ctx context.Context) (*DailyChallengeResult, error)
	Purchase(ctx context.Context, amount int64) (*PurchaseResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	AdminAdjust(ctx context.Context, userID uuid.UUID, in AdminAdjustInput) (*types.TokenTransaction, error)
}

type tokenService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	txRepo   repos.TokenTransactionRepo
	ledger   domainagg.LedgerAggregate
	gateway  payments.Gateway
	economy  ledger.Economy
	notifier TokenNotifier
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewTokenService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	txRepo repos.TokenTransactionRepo,
	ledgerAgg domainagg.LedgerAggregate,
	gateway payments.Gateway,
	economy ledger.Economy,
	notifier TokenNotifier,
	metrics *observability.Metrics,
) TokenService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &tokenService{
		log:      log.With("service", "TokenService"),
		userRepo: userRepo,
		txRepo:   txRepo,
		ledger:   ledgerAgg,
		gateway:  gateway,
		economy:  economy,
		notifier: notifier,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (ts *tokenService) Balance(ctx context.Context) (*TokenBalance, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := ts.userRepo.GetByID(dbctx.Background(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, errUserNotFound
	}
	return &TokenBalance{
		Balance:     user.TokenBalance,
		TotalEarned: user.TotalTokensEarned,
		TotalSpent:  user.TotalTokensSpent,
	}, nil
}

func (ts *tokenService) Transactions(ctx context.Context, in TransactionListInput) (*TransactionPage, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Type != "" && !ledger.IsKnownType(in.Type) {
		return nil, apierr.Validation(apierr.FieldError{Field: "type", Message: "Invalid transaction type"})
	}
	page, limit, offset := pageWindow(in.Page, in.Limit)
	rows, total, err := ts.txRepo.ListForUser(dbctx.Background(ctx), userID, repos.TransactionListFilter{
		Type:   in.Type,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if rows == nil {
		rows = []*types.TokenTransaction{}
	}
	return &TransactionPage{Transactions: rows, Pagination: newPagination(total, page, limit)}, nil
}

func (ts *tokenService) DailyChallenge(ctx context.Context) (*DailyChallengeResult, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := ts.ledger.ClaimDailyChallenge(ctx, domainagg.ClaimDailyChallengeInput{UserID: userID, At: ts.now()})
	if err != nil {
		return nil, err
	}
	ts.recorded(ctx, userID, res.Transaction)
	out := &DailyChallengeResult{
		TokensEarned: res.Transaction.Amount,
		NewBalance:   res.NewBalance,
		Streak:       res.Streak,
	}
	if res.StreakBonus != nil {
		ts.recorded(ctx, userID, res.StreakBonus)
		out.StreakBonus = res.StreakBonus.Amount
	}
	return out, nil
}

// Purchase creates a payment intent only. Tokens are credited when the provider
// confirms payment through the webhook.
func (ts *tokenService) Purchase(ctx context.Context, amount int64) (*PurchaseResult, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if amount < 1 || amount > ts.economy.MaxPurchaseTokens {
		return nil, apierr.Validation(apierr.FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("Amount must be between 1 and %d", ts.economy.MaxPurchaseTokens),
		})
	}
	cents := ts.economy.PriceCents(amount)
	if cents <= 0 {
		return nil, apierr.Validation(apierr.FieldError{Field: "amount", Message: "Amount is too small to charge"})
	}
	if ts.gateway == nil {
		return nil, errPaymentsUnavailable
	}
	intent, err := ts.gateway.CreatePaymentIntent(ctx, payments.PaymentIntentRequest{
		AmountCents: cents,
		Currency:    ts.economy.PurchaseCurrency,
		Description: fmt.Sprintf("%d tokens", amount),
		Metadata: map[string]string{
			"userId":      userID.String(),
			"tokenAmount": strconv.FormatInt(amount, 10),
		},
	})
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			return nil, errPaymentsUnavailable
		}
		ts.log.Error("create payment intent failed", "user_id", userID, "error", err)
		return nil, apierr.New(http.StatusBadGateway, "gateway_error", errors.New("Payment provider error"))
	}
	return &PurchaseResult{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Price:        float64(cents) / 100,
	}, nil
}

var errPaymentsUnavailable = apierr.Newf(http.StatusServiceUnavailable, "payments_unavailable", "Payments are not configured")

// HandleWebhook verifies and applies a provider event. Events that cannot be
// attributed to a user are logged and acknowledged so the provider stops retrying.
func (ts *tokenService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if ts.gateway == nil {
		return errPaymentsUnavailable
	}
	event, err := ts.gateway.ParseWebhook(payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotConfigured):
			return errPaymentsUnavailable
		case errors.Is(err, payments.ErrInvalidSignature):
			return apierr.New(http.StatusBadRequest, "invalid_signature", errors.New("Invalid webhook signature"))
		default:
			return apierr.New(http.StatusBadRequest, "invalid_payload", errors.New("Invalid webhook payload"))
		}
	}
	if event.Type != payments.EventPaymentIntentSucceeded || event.PaymentIntent == nil {
		ts.log.Debug("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return nil
	}

	pi := event.PaymentIntent
	userID, err := uuid.Parse(strings.TrimSpace(pi.Metadata["userId"]))
	if err != nil {
		ts.log.Warn("payment intent without user", "payment_intent", pi.ID)
		return nil
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(pi.Metadata["tokenAmount"]), 10, 64)
	if err != nil || amount <= 0 {
		ts.log.Warn("payment intent without token amount", "payment_intent", pi.ID, "user_id", userID)
		return nil
	}

	res, err := ts.ledger.Apply(ctx, domainagg.ApplyLedgerEntryInput{
		UserID: userID,
		Amount: amount,
		Entry: ledger.PurchaseCredit{
			PaymentIntentID: pi.ID,
			AmountPaidCents: pi.AmountCents,
			Currency:        pi.Currency,
		},
		IdempotencyKey: "stripe:" + pi.ID,
		At:             ts.now(),
	})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			ts.log.Warn("payment for unknown user", "payment_intent", pi.ID, "user_id", userID)
			return nil
		}
		return err
	}
	if res.Replayed {
		ts.log.Info("duplicate payment webhook", "payment_intent", pi.ID)
		return nil
	}
	ts.recorded(ctx, userID, res.Transaction)
	return nil
}

func (ts *tokenService) AdminAdjust(ctx context.Context, userID uuid.UUID, in AdminAdjustInput) (*types.TokenTransaction, error) {
	if in.Amount == 0 {
		return nil, apierr.Validation(apierr.FieldError{Field: "amount", Message: "Amount must be non-zero"})
	}
	res, err := ts.ledger.Apply(ctx, domainagg.ApplyLedgerEntryInput{
		UserID: userID,
		Amount: in.Amount,
		Entry: ledger.AdminAdjustment{
			AdminID: ctxutil.UserID(ctx),
			Note:    strings.TrimSpace(in.Note),
			Debit:   in.Amount < 0,
		},
		At: ts.now(),
	})
	if err != nil {
		return nil, err
	}
	ts.log.Info("admin token adjustment", "user_id", userID, "amount", in.Amount, "admin_id", ctxutil.UserID(ctx))
	ts.recorded(ctx, userID, res.Transaction)
	return res.Transaction, nil
}

func (ts *tokenService) recorded(ctx context.Context, userID uuid.UUID, tx *types.TokenTransaction) {
	if tx == nil {
		return
	}
	ts.metrics.AddLedgerTokens(string(tx.Type), tx.Amount)
	ts.notifier.BalanceChanged(ctx, userID, tx)
}
