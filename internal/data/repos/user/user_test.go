package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			ID:        uuid.New(),
			Email:     "userrepo@example.com",
			Password:  "pw",
			FirstName: "Ada",
			LastName:  "Lovelace",
			IsActive:  true,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	byEmail, err := repo.GetByEmail(dbc, "  USERREPO@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", byEmail)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): got=%v err=%v", missing, err)
	}
}

func TestUserRepoApplyBalanceDeltaRejectsOverdraft(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "balance@example.com", 15)
	dbc := dbctx.Context{Ctx: ctx}

	ok, err := repo.ApplyBalanceDelta(dbc, u.ID, -20, 0, 20)
	if err != nil {
		t.Fatalf("ApplyBalanceDelta: %v", err)
	}
	if ok {
		t.Fatalf("overdraft must not apply")
	}
	ok, err = repo.ApplyBalanceDelta(dbc, u.ID, -15, 0, 15)
	if err != nil || !ok {
		t.Fatalf("exact debit: ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TokenBalance != 0 || got.TotalTokensSpent != 15 {
		t.Fatalf("balance/spent: want=0/15 got=%d/%d", got.TokenBalance, got.TotalTokensSpent)
	}

	// refunds give back spending but never push it below zero
	if ok, err := repo.ApplyBalanceDelta(dbc, u.ID, 40, 0, -40); err != nil || !ok {
		t.Fatalf("refund: ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, u.ID)
	if got.TotalTokensSpent != 0 || got.TokenBalance != 40 {
		t.Fatalf("after refund: balance=%d spent=%d", got.TokenBalance, got.TotalTokensSpent)
	}
}

func TestUserRepoAddRatingRunningAverage(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "rated@example.com", 0)
	dbc := dbctx.Context{Ctx: ctx}

	for _, score := range []int{5, 4, 3} {
		if err := repo.AddRating(dbc, u.ID, true, score); err != nil {
			t.Fatalf("AddRating: %v", err)
		}
	}
	got, _ := repo.GetByID(dbc, u.ID)
	if got.TotalRatingsAsTeacher != 3 {
		t.Fatalf("count: want=3 got=%d", got.TotalRatingsAsTeacher)
	}
	if got.AverageRatingAsTeacher < 3.999 || got.AverageRatingAsTeacher > 4.001 {
		t.Fatalf("average: want=4 got=%f", got.AverageRatingAsTeacher)
	}
	if got.TotalRatingsAsLearner != 0 {
		t.Fatalf("learner count must be untouched: %d", got.TotalRatingsAsLearner)
	}
}

func TestUserRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	a := testutil.SeedUser(t, ctx, db, "a@example.com", 0)
	if err := repo.UpdateFields(dbc, a.ID, map[string]any{"first_name": "Marta", "country": "PT"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	b := testutil.SeedUser(t, ctx, db, "b@example.com", 0)
	if err := repo.UpdateFields(dbc, b.ID, map[string]any{"first_name": "Martin"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.SetBlocked(dbc, b.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	s := testutil.SeedSkill(t, ctx, db, "Guitar", "music")
	testutil.SeedUserSkill(t, ctx, db, a.ID, s.ID, types.SkillTypeCanTeach)

	users, total, err := repo.Search(dbc, SearchFilter{Query: "MART", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].ID != a.ID {
		t.Fatalf("Search: blocked users must be excluded, got total=%d users=%d", total, len(users))
	}

	users, total, err = repo.Search(dbc, SearchFilter{SkillID: s.ID, Country: "PT"})
	if err != nil {
		t.Fatalf("Search by skill: %v", err)
	}
	if total != 1 || users[0].ID != a.ID {
		t.Fatalf("Search by skill: total=%d", total)
	}
}

func TestUserRepoListBalanceDrift(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	ok := testutil.SeedUser(t, ctx, db, "ok@example.com", 50)
	drifted := testutil.SeedUser(t, ctx, db, "drift@example.com", 50)
	_ = ok
	if err := db.Exec(`UPDATE "user" SET token_balance = 70 WHERE id = ?`, drifted.ID).Error; err != nil {
		t.Fatalf("force drift: %v", err)
	}

	rows, err := repo.ListBalanceDrift(dbc)
	if err != nil {
		t.Fatalf("ListBalanceDrift: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != drifted.ID || rows[0].Balance != 70 || rows[0].LedgerSum != 50 {
		t.Fatalf("ListBalanceDrift: unexpected %+v", rows)
	}
}
