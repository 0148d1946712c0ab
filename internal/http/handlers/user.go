package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/services"
)

const maxPhotoBytes = 5 << 20

type UserHandler struct {
	userService   services.UserService
	ratingService services.RatingService
}

func NewUserHandler(userService services.UserService, ratingService services.RatingService) *UserHandler {
	return &UserHandler{userService: userService, ratingService: ratingService}
}

// GET /users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// PATCH /users/me
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	me, err := uh.userService.UpdateMe(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// PUT /users/me/photo (multipart/form-data, field "photo")
func (uh *UserHandler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		response.RespondError(c, apierr.Validation(apierr.FieldError{Field: "photo", Message: "Photo is required"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if len(raw) > maxPhotoBytes {
		response.RespondStatus(c, http.StatusRequestEntityTooLarge, "Photo must be 5MB or smaller")
		return
	}
	u, err := uh.userService.UploadPhoto(c.Request.Context(), raw)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// GET /users/search?query=&skillId=&country=&page=&limit=
func (uh *UserHandler) Search(c *gin.Context) {
	skillID, ok := queryUUID(c, "skillId")
	if !ok {
		return
	}
	res, err := uh.userService.Search(c.Request.Context(), services.UserSearchInput{
		Query:   strings.TrimSpace(c.Query("query")),
		SkillID: skillID,
		Country: strings.TrimSpace(c.Query("country")),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 20),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /users/:id
func (uh *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id", "User not found")
	if !ok {
		return
	}
	u, err := uh.userService.GetPublicProfile(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// GET /users/:id/ratings
func (uh *UserHandler) ListRatings(c *gin.Context) {
	id, ok := pathUUID(c, "id", "User not found")
	if !ok {
		return
	}
	page, err := uh.ratingService.ListReceived(c.Request.Context(), id, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, page)
}
