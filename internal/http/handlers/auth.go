package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		ReferrerID string `json:"referrerId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if ref := strings.TrimSpace(req.ReferrerID); ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			response.RespondError(c, apierr.Validation(apierr.FieldError{Field: "referrerId", Message: "Invalid referrer"}))
			return
		}
		in.ReferrerID = id
	}
	res, err := ah.authService.Register(c.Request.Context(), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// POST /auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /auth/refresh-token
func (ah *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		response.RespondStatus(c, http.StatusBadRequest, "Refresh token required")
		return
	}
	res, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"token":        res.Token,
		"refreshToken": res.RefreshToken,
		"expiresIn":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// POST /auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, "Logged out", nil)
}
