package services

import (
	"net/http"
	"testing"

	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func TestReconcileRepairsDerivedCounters(t *testing.T) {
	f := newFixture(t)
	dbc := dbctx.Context{Ctx: f.ctx}

	teacher := f.user(t, 0)
	learner := f.user(t, 10)
	sk := testutil.SeedSkill(t, f.ctx, f.db, "Knitting", skill.CategoryCrafts)
	testutil.SeedUserSkill(t, f.ctx, f.db, teacher.ID, sk.ID, types.SkillTypeCanTeach)
	testutil.SeedUserSkill(t, f.ctx, f.db, learner.ID, sk.ID, types.SkillTypeWantToLearn)

	s := testutil.SeedSession(t, f.ctx, f.db, teacher.ID, learner.ID, sk.ID, types.SessionStatusCompleted)
	if err := f.db.Model(&types.Session{}).Where("id = ?", s.ID).Update("actual_minutes", 90).Error; err != nil {
		t.Fatalf("set minutes: %v", err)
	}
	if err := f.users.UpdateFields(dbc, teacher.ID, map[string]any{"total_lessons_taught": 7, "average_rating_as_teacher": 3.5}); err != nil {
		t.Fatalf("corrupt teacher: %v", err)
	}
	if err := f.users.UpdateFields(dbc, learner.ID, map[string]any{"token_balance": 99}); err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}

	report, err := f.reconciler().Run(f.ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SkillsRepaired != 1 {
		t.Fatalf("skills repaired: want=1 got=%d", report.SkillsRepaired)
	}
	if report.UserStatsRepaired != 2 {
		t.Fatalf("user stats repaired: want=2 got=%d", report.UserStatsRepaired)
	}
	if report.UserRatingsRepaired != 1 {
		t.Fatalf("user ratings repaired: want=1 got=%d", report.UserRatingsRepaired)
	}
	if len(report.BalanceDrift) != 1 || report.BalanceDrift[0].UserID != learner.ID || report.BalanceDrift[0].LedgerSum != 10 {
		t.Fatalf("balance drift: got=%+v", report.BalanceDrift)
	}

	got, err := f.skills.GetByID(dbc, sk.ID)
	if err != nil || got.TotalUsers != 2 {
		t.Fatalf("skill total_users: want=2 got=%+v err=%v", got, err)
	}
	tu := f.reload(t, teacher.ID)
	if tu.TotalLessonsTaught != 1 || tu.TotalTeachingHours != 1.5 || tu.AverageRatingAsTeacher != 0 {
		t.Fatalf("teacher repaired: taught=%d hours=%v avg=%v", tu.TotalLessonsTaught, tu.TotalTeachingHours, tu.AverageRatingAsTeacher)
	}
	if lu := f.reload(t, learner.ID); lu.TokenBalance != 99 {
		t.Fatalf("balances are reported, never rewritten: got=%d", lu.TokenBalance)
	}

	again, err := f.reconciler().Run(f.ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.SkillsRepaired != 0 || again.UserStatsRepaired != 0 || again.UserRatingsRepaired != 0 {
		t.Fatalf("second run should be clean: got=%+v", again)
	}
}

func TestReconcileRejectsOverlappingRuns(t *testing.T) {
	f := newFixture(t)
	svc := f.reconciler().(*reconciliationService)
	svc.running.Lock()
	defer svc.running.Unlock()
	if _, err := svc.Run(f.ctx); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("overlap: want=400 got=%v", err)
	}
}
