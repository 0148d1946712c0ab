package repos

import (
	"github.com/yungbote/skillswap-backend/internal/data/repos/auth"
	"github.com/yungbote/skillswap-backend/internal/data/repos/ledger"
	"github.com/yungbote/skillswap-backend/internal/data/repos/rating"
	"github.com/yungbote/skillswap-backend/internal/data/repos/session"
	"github.com/yungbote/skillswap-backend/internal/data/repos/skill"
	"github.com/yungbote/skillswap-backend/internal/data/repos/user"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type SkillRepo = skill.SkillRepo
type UserSkillRepo = skill.UserSkillRepo

type SessionRepo = session.SessionRepo
type TokenTransactionRepo = ledger.TokenTransactionRepo
type RatingRepo = rating.RatingRepo

type UserSearchFilter = user.SearchFilter
type BalanceDrift = user.BalanceDrift
type SkillListFilter = skill.ListFilter
type SessionListFilter = session.ListFilter
type SessionScope = session.ParticipantScope
type SessionCompletedStats = session.CompletedStats
type TransactionListFilter = ledger.ListFilter
type RatingStats = rating.ReceivedStats

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return skill.NewSkillRepo(db, baseLog)
}

func NewUserSkillRepo(db *gorm.DB, baseLog *logger.Logger) UserSkillRepo {
	return skill.NewUserSkillRepo(db, baseLog)
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return session.NewSessionRepo(db, baseLog)
}

func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	return ledger.NewTokenTransactionRepo(db, baseLog)
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return rating.NewRatingRepo(db, baseLog)
}
