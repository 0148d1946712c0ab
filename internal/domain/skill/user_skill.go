package skill

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeCanTeach    Type = "can_teach"
	TypeWantToLearn Type = "want_to_learn"
)

func IsKnownType(t Type) bool {
	return t == TypeCanTeach || t == TypeWantToLearn
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

func IsKnownLevel(l Level) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	default:
		return false
	}
}

// UserSkill declares that a user teaches or wants to learn a skill.
// At most one row exists per (user_id, skill_id, skill_type).
type UserSkill struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_skill_unique,priority:1;column:user_id" json:"userId"`
	SkillID           uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_skill_unique,priority:2;column:skill_id" json:"skillId"`
	Skill             *Skill    `gorm:"foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	SkillType         Type      `gorm:"not null;uniqueIndex:idx_user_skill_unique,priority:3;column:skill_type" json:"skillType"`
	Level             Level     `gorm:"not null;column:level" json:"level"`
	YearsOfExperience *int      `gorm:"column:years_of_experience" json:"yearsOfExperience,omitempty"`
	Description       string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (UserSkill) TableName() string { return "user_skill" }

func (us *UserSkill) BeforeCreate(*gorm.DB) error {
	if us.ID == uuid.Nil {
		us.ID = uuid.New()
	}
	return nil
}
