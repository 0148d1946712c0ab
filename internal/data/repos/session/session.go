package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type ListFilter struct {
	Status   types.SessionStatus
	Type     types.SessionType
	Upcoming bool
	Now      time.Time
}

// ParticipantScope narrows a lookup to sessions the actor may act on.
type ParticipantScope struct {
	ActorID     uuid.UUID
	TeacherOnly bool
	Statuses    []types.SessionStatus
}

// CompletedStats summarizes one user's completed sessions.
type CompletedStats struct {
	UserID          uuid.UUID
	LessonsTaught   int
	LessonsAttended int
	TeachingMinutes int64
	LearningMinutes int64
}

type SessionRepo interface {
	Create(dbc dbctx.Context, sessions []*types.Session) ([]*types.Session, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	GetForParticipant(dbc dbctx.Context, id, userID uuid.UUID) (*types.Session, error)
	LockScoped(dbc dbctx.Context, id uuid.UUID, scope ParticipantScope) (*types.Session, error)
	ListForParticipant(dbc dbctx.Context, userID uuid.UUID, f ListFilter) ([]*types.Session, error)
	CompletedStatsByUser(dbc dbctx.Context) (map[uuid.UUID]*CompletedStats, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (r *sessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func withParticipants(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Teacher").
		Preload("Learner").
		Preload("Skill")
}

func (r *sessionRepo) Create(dbc dbctx.Context, sessions []*types.Session) ([]*types.Session, error) {
	if len(sessions) == 0 {
		return []*types.Session{}, nil
	}
	if err := r.tx(dbc).Omit(clause.Associations).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Session
	if err := withParticipants(r.tx(dbc)).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) GetForParticipant(dbc dbctx.Context, id, userID uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var row types.Session
	if err := withParticipants(r.tx(dbc)).
		Where("id = ? AND (teacher_id = ? OR learner_id = ?)", id, userID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) LockScoped(dbc dbctx.Context, id uuid.UUID, scope ParticipantScope) (*types.Session, error) {
	if id == uuid.Nil || scope.ActorID == uuid.Nil {
		return nil, nil
	}
	q := r.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	if scope.TeacherOnly {
		q = q.Where("teacher_id = ?", scope.ActorID)
	} else {
		q = q.Where("(teacher_id = ? OR learner_id = ?)", scope.ActorID, scope.ActorID)
	}
	if len(scope.Statuses) > 0 {
		q = q.Where("status IN ?", scope.Statuses)
	}
	var row types.Session
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) ListForParticipant(dbc dbctx.Context, userID uuid.UUID, f ListFilter) ([]*types.Session, error) {
	q := withParticipants(r.tx(dbc)).
		Where("(teacher_id = ? OR learner_id = ?)", userID, userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("session_type = ?", f.Type)
	}
	if f.Upcoming {
		now := f.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		q = q.Where("status = ? AND scheduled_start_time >= ?", types.SessionStatusScheduled, now)
	}
	var results []*types.Session
	if err := q.Order("scheduled_start_time DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) CompletedStatsByUser(dbc dbctx.Context) (map[uuid.UUID]*CompletedStats, error) {
	var rows []struct {
		TeacherID     uuid.UUID
		LearnerID     uuid.UUID
		ActualMinutes int64
	}
	if err := r.tx(dbc).
		Model(&types.Session{}).
		Select("teacher_id, learner_id, actual_minutes").
		Where("status = ?", types.SessionStatusCompleted).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[uuid.UUID]*CompletedStats{}
	get := func(id uuid.UUID) *CompletedStats {
		s, ok := out[id]
		if !ok {
			s = &CompletedStats{UserID: id}
			out[id] = s
		}
		return s
	}
	for _, row := range rows {
		t := get(row.TeacherID)
		t.LessonsTaught++
		t.TeachingMinutes += row.ActualMinutes
		l := get(row.LearnerID)
		l.LessonsAttended++
		l.LearningMinutes += row.ActualMinutes
	}
	return out, nil
}
