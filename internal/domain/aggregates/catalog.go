package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/domain/skill"
)

var CatalogAggregateContract = Contract{
	Name:             "Skills.CatalogAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Keeps skill.total_users equal to the number of user_skill rows for the skill.",
}

// CatalogAggregate owns user_skill writes and the skill.total_users counter.
type CatalogAggregate interface {
	Aggregate

	// AddUserSkill inserts the row and increments total_users. A duplicate
	// (user, skill, type) fails with ErrDuplicateUserSkill.
	AddUserSkill(ctx context.Context, in AddUserSkillInput) (*skill.UserSkill, error)

	// RemoveUserSkill deletes the caller's row and decrements total_users.
	RemoveUserSkill(ctx context.Context, in RemoveUserSkillInput) error
}

type AddUserSkillInput struct {
	UserID            uuid.UUID
	SkillID           uuid.UUID
	SkillType         skill.Type
	Level             skill.Level
	YearsOfExperience *int
	Description       string
}

type RemoveUserSkillInput struct {
	UserID      uuid.UUID
	UserSkillID uuid.UUID
}
