package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skillswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillswap-backend/internal/http/middleware"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const eventStreamRoute = "/api/events/stream"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	SkillHandler    *httpH.SkillHandler
	SessionHandler  *httpH.SessionHandler
	TokenHandler    *httpH.TokenHandler
	AdminHandler    *httpH.AdminHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", eventStreamRoute))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/refresh-token", cfg.AuthHandler.RefreshToken)
	}

	// Payment provider callback; authenticated by signature, not bearer.
	if cfg.TokenHandler != nil {
		api.POST("/tokens/webhook", cfg.TokenHandler.Webhook)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events/stream", cfg.RealtimeHandler.Stream)
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)
			protected.PUT("/users/me/photo", cfg.UserHandler.UploadPhoto)
			protected.GET("/users/search", cfg.UserHandler.Search)
			protected.GET("/users/:id", cfg.UserHandler.GetByID)
			protected.GET("/users/:id/ratings", cfg.UserHandler.ListRatings)
		}

		// Skills
		if cfg.SkillHandler != nil {
			protected.GET("/skills", cfg.SkillHandler.List)
			protected.GET("/skills/my-skills", cfg.SkillHandler.MySkills)
			protected.POST("/skills/my-skills", cfg.SkillHandler.AddMySkill)
			protected.DELETE("/skills/my-skills/:id", cfg.SkillHandler.RemoveMySkill)
			protected.GET("/skills/matches", cfg.SkillHandler.Matches)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			protected.POST("/sessions", cfg.SessionHandler.Create)
			protected.GET("/sessions", cfg.SessionHandler.List)
			protected.GET("/sessions/:id", cfg.SessionHandler.Get)
			protected.POST("/sessions/:id/start", cfg.SessionHandler.Start)
			protected.POST("/sessions/:id/end", cfg.SessionHandler.End)
			protected.POST("/sessions/:id/cancel", cfg.SessionHandler.Cancel)
			protected.POST("/sessions/:id/rate", cfg.SessionHandler.Rate)
		}

		// Tokens
		if cfg.TokenHandler != nil {
			protected.GET("/tokens/balance", cfg.TokenHandler.Balance)
			protected.GET("/tokens/transactions", cfg.TokenHandler.Transactions)
			protected.POST("/tokens/purchase", cfg.TokenHandler.Purchase)
			protected.POST("/tokens/daily-challenge", cfg.TokenHandler.DailyChallenge)
		}
	}

	// Admin
	if cfg.AuthMiddleware != nil {
		admin := protected.Group("/", cfg.AuthMiddleware.RequireRole("admin"))
		if cfg.SkillHandler != nil {
			admin.POST("/skills", cfg.SkillHandler.Create)
		}
		if cfg.AdminHandler != nil {
			admin.POST("/admin/users/:id/tokens", cfg.AdminHandler.AdjustTokens)
			admin.POST("/admin/users/:id/status", cfg.AdminHandler.SetUserStatus)
			admin.POST("/admin/reconcile", cfg.AdminHandler.Reconcile)
		}
	}

	return r
}
