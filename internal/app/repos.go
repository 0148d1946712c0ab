package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	UserToken        repos.UserTokenRepo
	Skill            repos.SkillRepo
	UserSkill        repos.UserSkillRepo
	Session          repos.SessionRepo
	TokenTransaction repos.TokenTransactionRepo
	Rating           repos.RatingRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserToken:        repos.NewUserTokenRepo(db, log),
		Skill:            repos.NewSkillRepo(db, log),
		UserSkill:        repos.NewUserSkillRepo(db, log),
		Session:          repos.NewSessionRepo(db, log),
		TokenTransaction: repos.NewTokenTransactionRepo(db, log),
		Rating:           repos.NewRatingRepo(db, log),
	}
}
