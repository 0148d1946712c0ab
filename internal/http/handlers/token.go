package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/services"
)

const maxWebhookBytes = 1 << 20

type TokenHandler struct {
	tokenService services.TokenService
}

func NewTokenHandler(tokenService services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// GET /tokens/balance
func (th *TokenHandler) Balance(c *gin.Context) {
	bal, err := th.tokenService.Balance(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, bal)
}

// GET /tokens/transactions?page=&limit=&type=
func (th *TokenHandler) Transactions(c *gin.Context) {
	page, err := th.tokenService.Transactions(c.Request.Context(), services.TransactionListInput{
		Type:  ledger.TransactionType(strings.TrimSpace(c.Query("type"))),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /tokens/purchase
func (th *TokenHandler) Purchase(c *gin.Context) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := th.tokenService.Purchase(c.Request.Context(), req.Amount)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /tokens/webhook. The body must reach the verifier byte-for-byte, so it is
// read raw and never bound.
func (th *TokenHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.RespondStatus(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	if err := th.tokenService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// POST /tokens/daily-challenge
func (th *TokenHandler) DailyChallenge(c *gin.Context) {
	res, err := th.tokenService.DailyChallenge(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}
