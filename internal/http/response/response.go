package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
)

type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ValidationEnvelope struct {
	Errors []apierr.FieldError `json:"errors"`
}

func RespondOK(c *gin.Context, payload any) {
	Respond(c, http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	Respond(c, http.StatusCreated, payload)
}

func Respond(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{Status: "success", Data: payload})
}

// RespondError writes err in the public error shape. The original error is attached
// to the gin context so the request logger can record internals that are not returned.
func RespondError(c *gin.Context, err error) {
	apiErr := apierr.FromError(err)
	if apiErr == nil {
		apiErr = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	_ = c.Error(err)
	if len(apiErr.Fields) > 0 {
		c.AbortWithStatusJSON(apiErr.Status, ValidationEnvelope{Errors: apiErr.Fields})
		return
	}
	c.AbortWithStatusJSON(apiErr.Status, Envelope{Status: "error", Message: apiErr.PublicMessage()})
}

func RespondStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Status: "error", Message: message})
}

// RespondMessage is a success envelope that also carries a human-readable message.
func RespondMessage(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: payload})
}
