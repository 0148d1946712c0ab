package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/domain/user"
)

type Type string

const (
	TypeSkillSwap     Type = "skill_swap"
	TypePaidLesson    Type = "paid_lesson"
	TypeGroupWorkshop Type = "group_workshop"
)

func IsKnownType(t Type) bool {
	switch t {
	case TypeSkillSwap, TypePaidLesson, TypeGroupWorkshop:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	// StatusNoShow is part of the schema but no transition produces it yet.
	StatusNoShow Status = "no_show"
)

func IsKnownStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition is the forward-only state machine:
// scheduled -> in_progress -> completed, scheduled -> cancelled.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusScheduled:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}

type Session struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID    `gorm:"type:uuid;not null;index;column:teacher_id" json:"teacherId"`
	Teacher     *user.User   `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	LearnerID   uuid.UUID    `gorm:"type:uuid;not null;index;column:learner_id" json:"learnerId"`
	Learner     *user.User   `gorm:"foreignKey:LearnerID;references:ID" json:"learner,omitempty"`
	SkillID     uuid.UUID    `gorm:"type:uuid;not null;index;column:skill_id" json:"skillId"`
	Skill       *skill.Skill `gorm:"foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	SessionType Type         `gorm:"not null;column:session_type" json:"sessionType"`
	Status      Status       `gorm:"not null;index;default:scheduled;column:status" json:"status"`
	Title       string       `gorm:"not null;column:title" json:"title"`
	Description string       `gorm:"column:description" json:"description,omitempty"`

	ScheduledStartTime time.Time  `gorm:"not null;index;column:scheduled_start_time" json:"scheduledStartTime"`
	ScheduledEndTime   time.Time  `gorm:"not null;column:scheduled_end_time" json:"scheduledEndTime"`
	ActualStartTime    *time.Time `gorm:"column:actual_start_time" json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time `gorm:"column:actual_end_time" json:"actualEndTime,omitempty"`
	DurationMinutes    int        `gorm:"not null;column:duration_minutes" json:"durationMinutes"`
	// ActualMinutes is fixed when the session completes and feeds the hour totals.
	ActualMinutes int   `gorm:"not null;default:0;column:actual_minutes" json:"actualMinutes,omitempty"`
	TokenCost     int64 `gorm:"not null;default:0;column:token_cost" json:"tokenCost"`

	RoomID             string     `gorm:"column:room_id" json:"roomId"`
	VideoToken         string     `gorm:"column:video_token" json:"-"`
	Notes              string     `gorm:"column:notes" json:"notes,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason" json:"cancellationReason,omitempty"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid;column:cancelled_by" json:"cancelledBy,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Session) TableName() string { return "session" }

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HasParticipant reports whether userID is the teacher or the learner.
func (s *Session) HasParticipant(userID uuid.UUID) bool {
	return s != nil && userID != uuid.Nil && (s.TeacherID == userID || s.LearnerID == userID)
}

// CounterpartOf returns the other participant.
func (s *Session) CounterpartOf(userID uuid.UUID) uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	switch userID {
	case s.TeacherID:
		return s.LearnerID
	case s.LearnerID:
		return s.TeacherID
	default:
		return uuid.Nil
	}
}
