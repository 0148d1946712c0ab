package rating

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func TestRatingRepoCreateAndExists(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewRatingRepo(db, testutil.Logger(t))

	teacher := testutil.SeedUser(t, ctx, db, "teacher@example.com", 0)
	learner := testutil.SeedUser(t, ctx, db, "learner@example.com", 0)
	s := testutil.SeedSkill(t, ctx, db, "Guitar", "music")
	sess := testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusCompleted)

	if ok, err := repo.Exists(dbc, sess.ID, learner.ID); err != nil || ok {
		t.Fatalf("Exists before create: want=false got=%v err=%v", ok, err)
	}
	rows, err := repo.Create(dbc, []*types.Rating{{
		SessionID: sess.ID, RaterID: learner.ID, RatedUserID: teacher.ID, Score: 5, Tags: []string{"patient"},
	}})
	if err != nil || len(rows) != 1 || rows[0].ID == uuid.Nil {
		t.Fatalf("Create: rows=%v err=%v", rows, err)
	}
	if ok, err := repo.Exists(dbc, sess.ID, learner.ID); err != nil || !ok {
		t.Fatalf("Exists after create: want=true got=%v err=%v", ok, err)
	}
	if ok, err := repo.Exists(dbc, sess.ID, teacher.ID); err != nil || ok {
		t.Fatalf("Exists for other rater: want=false got=%v err=%v", ok, err)
	}

	_, err = repo.Create(dbc, []*types.Rating{{SessionID: sess.ID, RaterID: learner.ID, RatedUserID: teacher.ID, Score: 4}})
	if err == nil {
		t.Fatalf("second rating for the same session and rater must fail")
	}
	if rows, err := repo.Create(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("Create empty: rows=%v err=%v", rows, err)
	}
}

func TestRatingRepoListReceivedAndStats(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewRatingRepo(db, testutil.Logger(t))

	teacher := testutil.SeedUser(t, ctx, db, "teacher@example.com", 0)
	learner := testutil.SeedUser(t, ctx, db, "learner@example.com", 0)
	s := testutil.SeedSkill(t, ctx, db, "Guitar", "music")
	first := testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusCompleted)
	second := testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusCompleted)

	base := time.Now().UTC().Add(-time.Hour)
	_, err := repo.Create(dbc, []*types.Rating{
		{SessionID: first.ID, RaterID: learner.ID, RatedUserID: teacher.ID, Score: 5, CreatedAt: base},
		{SessionID: second.ID, RaterID: learner.ID, RatedUserID: teacher.ID, Score: 3, CreatedAt: base.Add(time.Minute)},
		{SessionID: first.ID, RaterID: teacher.ID, RatedUserID: learner.ID, Score: 4, CreatedAt: base.Add(2 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, total, err := repo.ListReceived(dbc, teacher.ID, 0, 1)
	if err != nil {
		t.Fatalf("ListReceived: %v", err)
	}
	if total != 2 || len(page) != 1 {
		t.Fatalf("ListReceived: want total=2 len=1 got total=%d len=%d", total, len(page))
	}
	if page[0].SessionID != second.ID || page[0].Score != 3 {
		t.Fatalf("ListReceived order: want=%s got=%s", second.ID, page[0].SessionID)
	}
	if page[0].Rater == nil || page[0].Rater.ID != learner.ID {
		t.Fatalf("ListReceived: rater not preloaded: %+v", page[0].Rater)
	}
	rest, _, err := repo.ListReceived(dbc, teacher.ID, 1, 10)
	if err != nil || len(rest) != 1 || rest[0].SessionID != first.ID {
		t.Fatalf("ListReceived offset: len=%d err=%v", len(rest), err)
	}

	asTeacher, asLearner, err := repo.StatsByRole(dbc)
	if err != nil {
		t.Fatalf("StatsByRole: %v", err)
	}
	if got := asTeacher[teacher.ID]; got.Count != 2 || got.Average != 4 {
		t.Fatalf("teacher stats: want=2/4 got=%d/%v", got.Count, got.Average)
	}
	if got := asLearner[learner.ID]; got.Count != 1 || got.Average != 4 {
		t.Fatalf("learner stats: want=1/4 got=%d/%v", got.Count, got.Average)
	}
	if _, ok := asLearner[teacher.ID]; ok {
		t.Fatalf("teacher must not appear in learner stats")
	}
	if _, ok := asTeacher[learner.ID]; ok {
		t.Fatalf("learner must not appear in teacher stats")
	}
}
