package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/http/response"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type SkillHandler struct {
	skillService services.SkillService
}

func NewSkillHandler(skillService services.SkillService) *SkillHandler {
	return &SkillHandler{skillService: skillService}
}

// GET /skills?category=&search=
func (sh *SkillHandler) List(c *gin.Context) {
	skills, err := sh.skillService.List(c.Request.Context(), skill.Category(strings.TrimSpace(c.Query("category"))), c.Query("search"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": skills})
}

// POST /skills (admin)
func (sh *SkillHandler) Create(c *gin.Context) {
	var req services.CreateSkillInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := sh.skillService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"skill": s})
}

// GET /skills/my-skills
func (sh *SkillHandler) MySkills(c *gin.Context) {
	mine, err := sh.skillService.MySkills(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, mine)
}

// POST /skills/my-skills
func (sh *SkillHandler) AddMySkill(c *gin.Context) {
	var req services.AddUserSkillInput
	if !bindJSON(c, &req) {
		return
	}
	us, err := sh.skillService.AddMySkill(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"userSkill": us})
}

// DELETE /skills/my-skills/:id
func (sh *SkillHandler) RemoveMySkill(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Skill not found")
	if !ok {
		return
	}
	if err := sh.skillService.RemoveMySkill(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, "Skill removed from profile", nil)
}

// GET /skills/matches?limit=
func (sh *SkillHandler) Matches(c *gin.Context) {
	matches, err := sh.skillService.Matches(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches})
}
