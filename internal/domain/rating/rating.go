package rating

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/domain/user"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one participant's score of the other after a completed session.
// A rater scores a session at most once.
type Rating struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_rating_session_rater,priority:1;column:session_id" json:"sessionId"`
	RaterID     uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_rating_session_rater,priority:2;column:rater_id" json:"raterId"`
	Rater       *user.User                  `gorm:"foreignKey:RaterID;constraint:OnDelete:CASCADE" json:"rater,omitempty"`
	RatedUserID uuid.UUID                   `gorm:"type:uuid;not null;index;column:rated_user_id" json:"ratedUserId"`
	Score       int                         `gorm:"not null;column:rating;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment     string                      `gorm:"column:comment" json:"comment,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags,omitempty"`
	CreatedAt   time.Time                   `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

func (Rating) TableName() string { return "rating" }

func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func ValidScore(score int) bool { return score >= MinScore && score <= MaxScore }
