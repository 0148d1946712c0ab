package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domainsession "github.com/yungbote/skillswap-backend/internal/domain/session"
	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	ratingService  services.RatingService
}

func NewSessionHandler(sessionService services.SessionService, ratingService services.RatingService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, ratingService: ratingService}
}

// POST /sessions
func (sh *SessionHandler) Create(c *gin.Context) {
	var req services.ScheduleSessionInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := sh.sessionService.Schedule(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

// GET /sessions?status=&type=&upcoming=true
func (sh *SessionHandler) List(c *gin.Context) {
	sessions, err := sh.sessionService.List(c.Request.Context(), services.SessionListInput{
		Status:   domainsession.Status(strings.TrimSpace(c.Query("status"))),
		Type:     domainsession.Type(strings.TrimSpace(c.Query("type"))),
		Upcoming: c.Query("upcoming") == "true",
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /sessions/:id
func (sh *SessionHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Session not found")
	if !ok {
		return
	}
	s, err := sh.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// POST /sessions/:id/start
func (sh *SessionHandler) Start(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Session not found or already started")
	if !ok {
		return
	}
	res, err := sh.sessionService.Start(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /sessions/:id/end
func (sh *SessionHandler) End(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Session not found or not in progress")
	if !ok {
		return
	}
	s, err := sh.sessionService.End(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, "Session completed successfully", gin.H{"session": s})
}

// POST /sessions/:id/cancel
func (sh *SessionHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Session not found or cannot be cancelled")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	s, err := sh.sessionService.Cancel(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, "Session cancelled successfully", gin.H{"session": s})
}

// POST /sessions/:id/rate
func (sh *SessionHandler) Rate(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Session not found")
	if !ok {
		return
	}
	var req services.RateSessionInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := sh.ratingService.Rate(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"rating": r})
}
