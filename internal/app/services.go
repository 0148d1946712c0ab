package app

import (
	"fmt"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/skillswap-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/realtime"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type Aggregates struct {
	Ledger   domainagg.LedgerAggregate
	Accounts domainagg.AccountAggregate
	Sessions domainagg.SessionAggregate
	Catalog  domainagg.CatalogAggregate
	Ratings  domainagg.RatingAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := dataagg.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: dataagg.NewObservabilityHooks(metrics),
	}
	return Aggregates{
		Ledger:   dataagg.NewLedgerAggregate(dataagg.LedgerDeps{Base: base, Users: r.User, Txs: r.TokenTransaction, Economy: cfg.Economy}),
		Accounts: dataagg.NewAccountAggregate(dataagg.AccountDeps{Base: base, Users: r.User, Txs: r.TokenTransaction, Economy: cfg.Economy}),
		Sessions: dataagg.NewSessionAggregate(dataagg.SessionDeps{
			Base:     base,
			Users:    r.User,
			Skills:   r.Skill,
			Sessions: r.Session,
			Txs:      r.TokenTransaction,
			Economy:  cfg.Economy,
		}),
		Catalog: dataagg.NewCatalogAggregate(dataagg.CatalogDeps{Base: base, Skills: r.Skill, UserSkills: r.UserSkill}),
		Ratings: dataagg.NewRatingAggregate(dataagg.RatingDeps{Base: base, Users: r.User, Sessions: r.Session, Ratings: r.Rating}),
	}
}

type Services struct {
	Avatar    services.AvatarService
	Auth      services.AuthService
	User      services.UserService
	Skill     services.SkillService
	Token     services.TokenService
	Session   services.SessionService
	Rating    services.RatingService
	Reconcile services.ReconciliationService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	r Repos,
	aggs Aggregates,
	clients Clients,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	// Realtime: publish through Redis when present so every instance's hub sees the event.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.EventBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.EventBus, Log: log}
	}
	realtimeNotifier := services.NewRealtimeNotifier(emitter, metrics)
	sessionNotifier := services.FanoutSessionNotifier(
		realtimeNotifier,
		services.NewEmailNotifier(log, clients.Mailer),
	)

	var avatar services.AvatarService
	if clients.Bucket != nil {
		a, err := services.NewAvatarService(log, r.User, clients.Bucket, services.AvatarConfig{
			FontPath:   cfg.AvatarFontPath,
			ColorsPath: cfg.AvatarColorsPath,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init avatar service: %w", err)
		}
		avatar = a
	}

	auth := services.NewAuthService(db, log, r.User, r.UserToken, aggs.Accounts, avatar, services.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	return Services{
		Avatar:    avatar,
		Auth:      auth,
		User:      services.NewUserService(db, log, r.User, r.UserSkill, r.UserToken, avatar),
		Skill:     services.NewSkillService(log, r.Skill, r.UserSkill, r.User, aggs.Catalog),
		Token:     services.NewTokenService(log, r.User, r.TokenTransaction, aggs.Ledger, clients.Payments, cfg.Economy, realtimeNotifier, metrics),
		Session:   services.NewSessionService(log, r.Session, aggs.Sessions, clients.Video, sessionNotifier, realtimeNotifier, metrics),
		Rating:    services.NewRatingService(log, r.Rating, aggs.Ratings, sessionNotifier),
		Reconcile: services.NewReconciliationService(log, r.User, r.Skill, r.UserSkill, r.Session, r.Rating, metrics),
	}, nil
}
