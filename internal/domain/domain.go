package domain

import (
	"github.com/yungbote/skillswap-backend/internal/domain/auth"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/domain/rating"
	"github.com/yungbote/skillswap-backend/internal/domain/session"
	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/domain/user"
)

type (
	User         = user.User
	UserRole     = user.Role
	AuthProvider = user.AuthProvider
	UserToken    = auth.UserToken

	Skill          = skill.Skill
	SkillCategory  = skill.Category
	UserSkill      = skill.UserSkill
	UserSkillType  = skill.Type
	UserSkillLevel = skill.Level

	Session       = session.Session
	SessionType   = session.Type
	SessionStatus = session.Status

	TokenTransaction = ledger.TokenTransaction
	TransactionType  = ledger.TransactionType
	LedgerEntry      = ledger.Entry

	Rating = rating.Rating
)

const (
	RoleUser      = user.RoleUser
	RoleAdmin     = user.RoleAdmin
	RoleModerator = user.RoleModerator

	SkillTypeCanTeach    = skill.TypeCanTeach
	SkillTypeWantToLearn = skill.TypeWantToLearn

	SessionTypeSkillSwap     = session.TypeSkillSwap
	SessionTypePaidLesson    = session.TypePaidLesson
	SessionTypeGroupWorkshop = session.TypeGroupWorkshop

	SessionStatusScheduled  = session.StatusScheduled
	SessionStatusInProgress = session.StatusInProgress
	SessionStatusCompleted  = session.StatusCompleted
	SessionStatusCancelled  = session.StatusCancelled
	SessionStatusNoShow     = session.StatusNoShow
)

// Models lists every persisted model in dependency order for AutoMigrate.
func Models() []any {
	return []any{
		&user.User{},
		&auth.UserToken{},
		&skill.Skill{},
		&skill.UserSkill{},
		&session.Session{},
		&ledger.TokenTransaction{},
		&rating.Rating{},
	}
}
