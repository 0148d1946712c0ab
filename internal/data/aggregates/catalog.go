package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

type CatalogDeps struct {
	Base       BaseDeps
	Skills     repos.SkillRepo
	UserSkills repos.UserSkillRepo
}

type catalogAggregate struct {
	deps CatalogDeps
}

var _ domainagg.CatalogAggregate = (*catalogAggregate)(nil)

func NewCatalogAggregate(deps CatalogDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &catalogAggregate{deps: deps}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) AddUserSkill(ctx context.Context, in domainagg.AddUserSkillInput) (*types.UserSkill, error) {
	const op = "Skills.CatalogAggregate.AddUserSkill"
	if a == nil || a.deps.Skills == nil || a.deps.UserSkills == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate not initialized", nil)
	}
	if in.UserID == uuid.Nil || in.SkillID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "user id and skill id are required", nil)
	}
	if !skill.IsKnownType(in.SkillType) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid skill type", nil)
	}
	if !skill.IsKnownLevel(in.Level) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid skill level", nil)
	}
	if in.YearsOfExperience != nil && *in.YearsOfExperience < 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "yearsOfExperience must be >= 0", nil)
	}

	var out *types.UserSkill
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sk, err := a.deps.Skills.GetByID(dbc, in.SkillID)
		if err != nil {
			return err
		}
		if sk == nil || !sk.IsActive {
			return NotFoundError("Skill not found")
		}
		dup, err := a.deps.UserSkills.Exists(dbc, in.UserID, in.SkillID, in.SkillType)
		if err != nil {
			return err
		}
		if dup {
			return PreconditionError(domainagg.ErrDuplicateUserSkill)
		}
		row := &types.UserSkill{
			UserID:            in.UserID,
			SkillID:           in.SkillID,
			SkillType:         in.SkillType,
			Level:             in.Level,
			YearsOfExperience: in.YearsOfExperience,
			Description:       strings.TrimSpace(in.Description),
		}
		if _, err := a.deps.UserSkills.Create(dbc, []*types.UserSkill{row}); err != nil {
			if isUniqueViolation(err) {
				return PreconditionError(domainagg.ErrDuplicateUserSkill)
			}
			return err
		}
		if err := a.deps.Skills.AddTotalUsers(dbc, sk.ID, 1); err != nil {
			return err
		}
		row.Skill = sk
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *catalogAggregate) RemoveUserSkill(ctx context.Context, in domainagg.RemoveUserSkillInput) error {
	const op = "Skills.CatalogAggregate.RemoveUserSkill"
	if a == nil || a.deps.Skills == nil || a.deps.UserSkills == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate not initialized", nil)
	}
	if in.UserID == uuid.Nil || in.UserSkillID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "user id and user skill id are required", nil)
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.UserSkills.GetForUser(dbc, in.UserSkillID, in.UserID)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError("User skill not found")
		}
		deleted, err := a.deps.UserSkills.DeleteForUser(dbc, row.ID, in.UserID)
		if err != nil {
			return err
		}
		if !deleted {
			return NotFoundError("User skill not found")
		}
		return a.deps.Skills.AddTotalUsers(dbc, row.SkillID, -1)
	})
}
