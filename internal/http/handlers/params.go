package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
)

var errInvalidBody = apierr.New(http.StatusBadRequest, "invalid_request", errors.New("Invalid request body"))

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, errInvalidBody)
		return false
	}
	return true
}

// pathUUID reads a uuid path parameter. Malformed ids answer 404 like any unknown id.
func pathUUID(c *gin.Context, name string, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondStatus(c, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, apierr.Validation(apierr.FieldError{Field: name, Message: "Invalid id"}))
		return uuid.Nil, false
	}
	return id, true
}
