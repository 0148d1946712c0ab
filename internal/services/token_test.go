package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/payments"
)

func succeeded(piID string, userID uuid.UUID, tokens string) *payments.WebhookEvent {
	return &payments.WebhookEvent{
		ID:   "evt_" + piID,
		Type: payments.EventPaymentIntentSucceeded,
		PaymentIntent: &payments.PaymentIntent{
			ID:          piID,
			AmountCents: 500,
			Currency:    "usd",
			Metadata:    map[string]string{"userId": userID.String(), "tokenAmount": tokens},
		},
	}
}

func TestPurchaseCreatesIntentWithoutLedgerWrite(t *testing.T) {
	f := newFixture(t)
	gw := &fakeGateway{}
	svc := f.tokenService(gw, nil)
	u := f.user(t, 0)
	ctx := asUser(f.ctx, u)

	res, err := svc.Purchase(ctx, 50)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if res.ClientSecret != "pi_test_secret" || res.Amount != 50 || res.Price != 5 {
		t.Fatalf("purchase result: got=%+v", res)
	}
	if len(gw.requests) != 1 {
		t.Fatalf("intent requests: want=1 got=%d", len(gw.requests))
	}
	req := gw.requests[0]
	if req.AmountCents != 500 || req.Metadata["userId"] != u.ID.String() || req.Metadata["tokenAmount"] != "50" {
		t.Fatalf("intent request: got=%+v", req)
	}
	if got := f.reload(t, u.ID).TokenBalance; got != 0 {
		t.Fatalf("balance after purchase intent: want=0 got=%d", got)
	}

	if _, err := svc.Purchase(ctx, 0); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("zero amount: want=400 got=%v", err)
	}
	if _, err := svc.Purchase(ctx, f.econ.MaxPurchaseTokens+1); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("over max: want=400 got=%v", err)
	}

	gw.createErr = errors.New("card network down")
	if _, err := svc.Purchase(ctx, 10); statusOf(err) != http.StatusBadGateway {
		t.Fatalf("gateway failure: want=502 got=%v", err)
	}
	gw.createErr = payments.ErrNotConfigured
	if _, err := svc.Purchase(ctx, 10); statusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured: want=503 got=%v", err)
	}
}

func TestWebhookCreditsOncePerPaymentIntent(t *testing.T) {
	f := newFixture(t)
	gw := &fakeGateway{}
	n := newRecordingNotifier()
	svc := f.tokenService(gw, n)
	u := f.user(t, 10)

	gw.event = succeeded("pi_1", u.ID, "50")
	for i := 0; i < 2; i++ {
		if err := svc.HandleWebhook(f.ctx, []byte("{}"), "sig"); err != nil {
			t.Fatalf("HandleWebhook #%d: %v", i, err)
		}
	}
	if got := f.reload(t, u.ID).TokenBalance; got != 60 {
		t.Fatalf("balance: want=60 got=%d", got)
	}
	rows, total, err := f.txs.ListForUser(dbctx.Context{Ctx: f.ctx}, u.ID, ledgerFilterAll())
	if err != nil || total != 2 {
		t.Fatalf("ledger rows: want=2 got=%d err=%v", total, err)
	}
	if rows[0].Type != ledger.TypePurchased {
		t.Fatalf("newest row type: want=%s got=%s", ledger.TypePurchased, rows[0].Type)
	}
	if len(n.balances[u.ID]) != 1 {
		t.Fatalf("balance notifications: want=1 got=%d", len(n.balances[u.ID]))
	}

	gw.event = succeeded("pi_2", uuid.New(), "50")
	if err := svc.HandleWebhook(f.ctx, nil, "sig"); err != nil {
		t.Fatalf("unknown user should be acknowledged: %v", err)
	}

	gw.parseErr = payments.ErrInvalidSignature
	if err := svc.HandleWebhook(f.ctx, nil, "bad"); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad signature: want=400 got=%v", err)
	}
}

func TestDailyChallengeOncePerDay(t *testing.T) {
	f := newFixture(t)
	svc := f.tokenService(&fakeGateway{}, nil)
	u := f.user(t, 0)
	ctx := asUser(f.ctx, u)

	res, err := svc.DailyChallenge(ctx)
	if err != nil {
		t.Fatalf("DailyChallenge: %v", err)
	}
	if res.TokensEarned != f.econ.DailyChallengeTokens || res.NewBalance != f.econ.DailyChallengeTokens {
		t.Fatalf("challenge result: got=%+v", res)
	}
	if _, err := svc.DailyChallenge(ctx); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("second claim: want=400 got=%v", err)
	}

	bal, err := svc.Balance(ctx)
	if err != nil || bal.Balance != f.econ.DailyChallengeTokens || bal.TotalEarned != f.econ.DailyChallengeTokens {
		t.Fatalf("Balance: got=%+v err=%v", bal, err)
	}
}

func TestAdminAdjustAndTransactionsPage(t *testing.T) {
	f := newFixture(t)
	svc := f.tokenService(&fakeGateway{}, nil)
	admin := f.user(t, 0)
	u := f.user(t, 30)
	ctx := asUser(f.ctx, admin)

	if _, err := svc.AdminAdjust(ctx, u.ID, AdminAdjustInput{Amount: -50}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("overdraw: want=400 got=%v", err)
	}
	tx, err := svc.AdminAdjust(ctx, u.ID, AdminAdjustInput{Amount: -10, Note: "chargeback"})
	if err != nil {
		t.Fatalf("AdminAdjust: %v", err)
	}
	if tx.Type != ledger.TypeAdminDebit || tx.BalanceAfter != 20 {
		t.Fatalf("adjustment row: type=%s after=%d", tx.Type, tx.BalanceAfter)
	}

	page, err := svc.Transactions(asUser(f.ctx, u), TransactionListInput{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if page.Pagination.Total != 2 || page.Pagination.TotalPages != 2 || len(page.Transactions) != 1 {
		t.Fatalf("pagination: got=%+v rows=%d", page.Pagination, len(page.Transactions))
	}
	if _, err := svc.Transactions(asUser(f.ctx, u), TransactionListInput{Type: "BOGUS"}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad type: want=400 got=%v", err)
	}
}
