package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/skillswap-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/skillswap-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/skillswap-backend/internal/data/repos"
	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func TestLedgerApplyReportsToHooks(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	u := testutil.SeedUser(t, ctx, db, "hooks@example.com", 0)

	hooks := &aggtest.HooksRecorder{}
	runner := &aggtest.InjectedTxRunner{FailBegin: errors.New("connection refused")}
	agg := aggregates.NewLedgerAggregate(aggregates.LedgerDeps{
		Base:    aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks},
		Users:   users,
		Txs:     repos.NewTokenTransactionRepo(db, log),
		Economy: ledger.DefaultEconomy(),
	})

	_, err := agg.Apply(ctx, domainagg.ApplyLedgerEntryInput{UserID: u.ID, Amount: 5, Entry: ledger.SignupBonus{}})
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if runner.BeginCalls != 1 || runner.CommitCalls != 0 {
		t.Fatalf("runner counters: begin=%d commit=%d", runner.BeginCalls, runner.CommitCalls)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "Tokens.LedgerAggregate.Apply" || hooks.Operations[0].Status != "internal" {
		t.Fatalf("unexpected operations: %+v", hooks.Operations)
	}
	got, err := users.GetByID(dbctx.Context{Ctx: ctx}, u.ID)
	if err != nil || got.TokenBalance != 0 {
		t.Fatalf("balance must be untouched: %+v err=%v", got, err)
	}

	runner.FailBegin = nil
	if _, err := agg.Apply(ctx, domainagg.ApplyLedgerEntryInput{UserID: u.ID, Amount: 5, Entry: ledger.SignupBonus{}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if runner.CommitCalls != 1 || hooks.Operations[1].Status != "success" {
		t.Fatalf("second apply: commit=%d ops=%+v", runner.CommitCalls, hooks.Operations)
	}
}
