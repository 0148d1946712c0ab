package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const (
	reconcilePageSize = 500
	floatTolerance    = 1e-6
)

type ReconcileReport struct {
	SkillsRepaired      int                  `json:"skillsRepaired"`
	UserStatsRepaired   int                  `json:"userStatsRepaired"`
	UserRatingsRepaired int                  `json:"userRatingsRepaired"`
	BalanceDrift        []repos.BalanceDrift `json:"balanceDrift"`
	StartedAt           time.Time            `json:"startedAt"`
	DurationMS          int64                `json:"durationMs"`
}

// ReconciliationService recomputes denormalized counters from their source tables.
// Balances are only reported, never rewritten outside the ledger.
type ReconciliationService interface {
	Run(ctx context.Context) (*ReconcileReport, error)
}

type reconciliationService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	skillRepo     repos.SkillRepo
	userSkillRepo repos.UserSkillRepo
	sessionRepo   repos.SessionRepo
	ratingRepo    repos.RatingRepo
	metrics       *observability.Metrics

	running sync.Mutex
}

func NewReconciliationService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	skillRepo repos.SkillRepo,
	userSkillRepo repos.UserSkillRepo,
	sessionRepo repos.SessionRepo,
	ratingRepo repos.RatingRepo,
	metrics *observability.Metrics,
) ReconciliationService {
	return &reconciliationService{
		log:           log.With("service", "ReconciliationService"),
		userRepo:      userRepo,
		skillRepo:     skillRepo,
		userSkillRepo: userSkillRepo,
		sessionRepo:   sessionRepo,
		ratingRepo:    ratingRepo,
		metrics:       metrics,
	}
}

var errReconcileRunning = apierr.New(http.StatusBadRequest, "conflict", errors.New("Reconciliation already running"))

func (rs *reconciliationService) Run(ctx context.Context) (*ReconcileReport, error) {
	if !rs.running.TryLock() {
		return nil, errReconcileRunning
	}
	defer rs.running.Unlock()

	report := &ReconcileReport{StartedAt: time.Now().UTC(), BalanceDrift: []repos.BalanceDrift{}}
	err := rs.run(dbctx.Background(ctx), report)
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	if err != nil {
		rs.metrics.IncReconcileRun("failure")
		rs.log.Error("reconciliation failed", "error", err)
		return nil, err
	}
	rs.metrics.IncReconcileRun("success")
	rs.metrics.SetReconcileDrift("skill_total_users", report.SkillsRepaired)
	rs.metrics.SetReconcileDrift("user_stats", report.UserStatsRepaired)
	rs.metrics.SetReconcileDrift("user_ratings", report.UserRatingsRepaired)
	rs.metrics.SetReconcileDrift("token_balance", len(report.BalanceDrift))
	rs.log.Info("reconciliation finished",
		"skills_repaired", report.SkillsRepaired,
		"user_stats_repaired", report.UserStatsRepaired,
		"user_ratings_repaired", report.UserRatingsRepaired,
		"balance_drift", len(report.BalanceDrift),
		"duration_ms", report.DurationMS,
	)
	return report, nil
}

func (rs *reconciliationService) run(dbc dbctx.Context, report *ReconcileReport) error {
	n, err := rs.reconcileSkills(dbc)
	if err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	report.SkillsRepaired = n

	stats, ratings, err := rs.reconcileUsers(dbc)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	report.UserStatsRepaired, report.UserRatingsRepaired = stats, ratings

	drift, err := rs.userRepo.ListBalanceDrift(dbc)
	if err != nil {
		return fmt.Errorf("balance drift: %w", err)
	}
	for _, d := range drift {
		rs.log.Warn("token balance disagrees with ledger", "user_id", d.UserID, "balance", d.Balance, "ledger_sum", d.LedgerSum)
	}
	if drift != nil {
		report.BalanceDrift = drift
	}
	return nil
}

func (rs *reconciliationService) reconcileSkills(dbc dbctx.Context) (int, error) {
	counts, err := rs.userSkillRepo.CountBySkill(dbc)
	if err != nil {
		return 0, err
	}
	skills, err := rs.skillRepo.ListAll(dbc)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, s := range skills {
		want := counts[s.ID]
		if s.TotalUsers == want {
			continue
		}
		rs.log.Warn("skill total_users drift", "skill_id", s.ID, "stored", s.TotalUsers, "actual", want)
		if err := rs.skillRepo.SetTotalUsers(dbc, s.ID, want); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

func (rs *reconciliationService) reconcileUsers(dbc dbctx.Context) (int, int, error) {
	completed, err := rs.sessionRepo.CompletedStatsByUser(dbc)
	if err != nil {
		return 0, 0, err
	}
	asTeacher, asLearner, err := rs.ratingRepo.StatsByRole(dbc)
	if err != nil {
		return 0, 0, err
	}

	statsRepaired, ratingsRepaired := 0, 0
	for offset := 0; ; offset += reconcilePageSize {
		users, err := rs.userRepo.ListPage(dbc, offset, reconcilePageSize)
		if err != nil {
			return statsRepaired, ratingsRepaired, err
		}
		for _, u := range users {
			if updates := statsUpdates(u, completed[u.ID]); len(updates) > 0 {
				if err := rs.userRepo.UpdateFields(dbc, u.ID, updates); err != nil {
					return statsRepaired, ratingsRepaired, err
				}
				statsRepaired++
			}
			if updates := ratingUpdates(u, asTeacher[u.ID], asLearner[u.ID]); len(updates) > 0 {
				if err := rs.userRepo.UpdateFields(dbc, u.ID, updates); err != nil {
					return statsRepaired, ratingsRepaired, err
				}
				ratingsRepaired++
			}
		}
		if len(users) < reconcilePageSize {
			return statsRepaired, ratingsRepaired, nil
		}
	}
}

func statsUpdates(u *types.User, s *repos.SessionCompletedStats) map[string]any {
	if s == nil {
		s = &repos.SessionCompletedStats{UserID: u.ID}
	}
	teachingHours := float64(s.TeachingMinutes) / 60
	learningHours := float64(s.LearningMinutes) / 60
	updates := map[string]any{}
	if u.TotalLessonsTaught != s.LessonsTaught {
		updates["total_lessons_taught"] = s.LessonsTaught
	}
	if u.TotalLessonsAttended != s.LessonsAttended {
		updates["total_lessons_attended"] = s.LessonsAttended
	}
	if !floatEqual(u.TotalTeachingHours, teachingHours) {
		updates["total_teaching_hours"] = teachingHours
	}
	if !floatEqual(u.TotalLearningHours, learningHours) {
		updates["total_learning_hours"] = learningHours
	}
	return updates
}

func ratingUpdates(u *types.User, teacher, learner repos.RatingStats) map[string]any {
	updates := map[string]any{}
	if u.TotalRatingsAsTeacher != teacher.Count || !floatEqual(u.AverageRatingAsTeacher, teacher.Average) {
		updates["total_ratings_as_teacher"] = teacher.Count
		updates["average_rating_as_teacher"] = teacher.Average
	}
	if u.TotalRatingsAsLearner != learner.Count || !floatEqual(u.AverageRatingAsLearner, learner.Average) {
		updates["total_ratings_as_learner"] = learner.Count
		updates["average_rating_as_learner"] = learner.Average
	}
	return updates
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}
