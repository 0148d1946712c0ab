package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/http"
	httpH "github.com/yungbote/skillswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillswap-backend/internal/http/middleware"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Skill    *httpH.SkillHandler
	Session  *httpH.SessionHandler
	Token    *httpH.TokenHandler
	Admin    *httpH.AdminHandler
	Realtime *httpH.RealtimeHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(services.Auth),
		User:     httpH.NewUserHandler(services.User, services.Rating),
		Skill:    httpH.NewSkillHandler(services.Skill),
		Session:  httpH.NewSessionHandler(services.Session, services.Rating),
		Token:    httpH.NewTokenHandler(services.Token),
		Admin:    httpH.NewAdminHandler(services.Token, services.User, services.Reconcile),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		SkillHandler:    handlers.Skill,
		SessionHandler:  handlers.Session,
		TokenHandler:    handlers.Token,
		AdminHandler:    handlers.Admin,
		RealtimeHandler: handlers.Realtime,
	}
}
