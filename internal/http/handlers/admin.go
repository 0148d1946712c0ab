package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type AdminHandler struct {
	tokenService services.TokenService
	userService  services.UserService
	reconciler   services.ReconciliationService
}

func NewAdminHandler(tokenService services.TokenService, userService services.UserService, reconciler services.ReconciliationService) *AdminHandler {
	return &AdminHandler{tokenService: tokenService, userService: userService, reconciler: reconciler}
}

// POST /admin/users/:id/tokens {amount, note}
func (ah *AdminHandler) AdjustTokens(c *gin.Context) {
	id, ok := pathUUID(c, "id", "User not found")
	if !ok {
		return
	}
	var req services.AdminAdjustInput
	if !bindJSON(c, &req) {
		return
	}
	tx, err := ah.tokenService.AdminAdjust(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"transaction": tx})
}

// POST /admin/users/:id/status {isActive?, isBlocked?}
func (ah *AdminHandler) SetUserStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id", "User not found")
	if !ok {
		return
	}
	var req services.SetUserStatusInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := ah.userService.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// POST /admin/reconcile
func (ah *AdminHandler) Reconcile(c *gin.Context) {
	report, err := ah.reconciler.Run(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}
