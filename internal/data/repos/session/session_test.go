package session

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func TestSessionRepoScopedLookups(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewSessionRepo(db, testutil.Logger(t))

	teacher := testutil.SeedUser(t, ctx, db, "teacher@example.com", 0)
	learner := testutil.SeedUser(t, ctx, db, "learner@example.com", 0)
	stranger := testutil.SeedUser(t, ctx, db, "stranger@example.com", 0)
	s := testutil.SeedSkill(t, ctx, db, "Guitar", "music")
	sess := testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusScheduled)

	got, err := repo.GetForParticipant(dbc, sess.ID, learner.ID)
	if err != nil || got == nil {
		t.Fatalf("GetForParticipant: got=%v err=%v", got, err)
	}
	if got.Teacher == nil || got.Skill == nil || got.Teacher.ID != teacher.ID {
		t.Fatalf("GetForParticipant: participants not preloaded: %+v", got)
	}
	if got, err := repo.GetForParticipant(dbc, sess.ID, stranger.ID); err != nil || got != nil {
		t.Fatalf("stranger lookup: got=%v err=%v", got, err)
	}

	locked, err := repo.LockScoped(dbc, sess.ID, ParticipantScope{
		ActorID:     learner.ID,
		TeacherOnly: true,
		Statuses:    []types.SessionStatus{types.SessionStatusScheduled},
	})
	if err != nil || locked != nil {
		t.Fatalf("teacher-only scope must exclude learner: got=%v err=%v", locked, err)
	}
	locked, err = repo.LockScoped(dbc, sess.ID, ParticipantScope{
		ActorID:  learner.ID,
		Statuses: []types.SessionStatus{types.SessionStatusInProgress},
	})
	if err != nil || locked != nil {
		t.Fatalf("status scope: got=%v err=%v", locked, err)
	}
	locked, err = repo.LockScoped(dbc, sess.ID, ParticipantScope{
		ActorID:  learner.ID,
		Statuses: []types.SessionStatus{types.SessionStatusScheduled},
	})
	if err != nil || locked == nil {
		t.Fatalf("participant scope: got=%v err=%v", locked, err)
	}
}

func TestSessionRepoListForParticipant(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewSessionRepo(db, testutil.Logger(t))

	teacher := testutil.SeedUser(t, ctx, db, "teacher@example.com", 0)
	learner := testutil.SeedUser(t, ctx, db, "learner@example.com", 0)
	s := testutil.SeedSkill(t, ctx, db, "Guitar", "music")
	testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusScheduled)
	done := testutil.SeedSession(t, ctx, db, teacher.ID, learner.ID, s.ID, types.SessionStatusCompleted)
	if err := db.Model(&types.Session{}).Where("id = ?", done.ID).Update("actual_minutes", 45).Error; err != nil {
		t.Fatalf("update minutes: %v", err)
	}

	all, err := repo.ListForParticipant(dbc, teacher.ID, ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListForParticipant: len=%d err=%v", len(all), err)
	}
	upcoming, err := repo.ListForParticipant(dbc, learner.ID, ListFilter{Upcoming: true, Now: time.Now().UTC()})
	if err != nil || len(upcoming) != 1 || upcoming[0].Status != types.SessionStatusScheduled {
		t.Fatalf("upcoming: len=%d err=%v", len(upcoming), err)
	}

	stats, err := repo.CompletedStatsByUser(dbc)
	if err != nil {
		t.Fatalf("CompletedStatsByUser: %v", err)
	}
	if st := stats[teacher.ID]; st == nil || st.LessonsTaught != 1 || st.TeachingMinutes != 45 {
		t.Fatalf("teacher stats: %+v", st)
	}
	if st := stats[learner.ID]; st == nil || st.LessonsAttended != 1 || st.LearningMinutes != 45 {
		t.Fatalf("learner stats: %+v", st)
	}
}
