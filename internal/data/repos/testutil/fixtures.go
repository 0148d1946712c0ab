package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/domain/skill"
)

// SeedUser inserts a user holding balance tokens, backed by one SIGNUP_BONUS ledger
// row so balance and ledger agree.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, balance int64) *types.User {
	tb.Helper()
	u := &types.User{
		ID:                uuid.New(),
		Email:             email,
		Password:          "pw",
		FirstName:         "A",
		LastName:          "B",
		TokenBalance:      balance,
		TotalTokensEarned: balance,
		IsActive:          true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	if balance != 0 {
		row := &types.TokenTransaction{
			UserID:        u.ID,
			Amount:        balance,
			Type:          ledger.TypeSignupBonus,
			Description:   "seed",
			BalanceBefore: 0,
			BalanceAfter:  balance,
		}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			tb.Fatalf("seed ledger: %v", err)
		}
	}
	return u
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, category skill.Category) *types.Skill {
	tb.Helper()
	s := &types.Skill{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

// SeedUserSkill inserts a user_skill row without touching skill.total_users.
func SeedUserSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID, kind skill.Type) *types.UserSkill {
	tb.Helper()
	us := &types.UserSkill{
		ID:        uuid.New(),
		UserID:    userID,
		SkillID:   skillID,
		SkillType: kind,
		Level:     skill.LevelIntermediate,
	}
	if err := tx.WithContext(ctx).Create(us).Error; err != nil {
		tb.Fatalf("seed user skill: %v", err)
	}
	return us
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID, learnerID, skillID uuid.UUID, status types.SessionStatus) *types.Session {
	tb.Helper()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	s := &types.Session{
		ID:                 uuid.New(),
		TeacherID:          teacherID,
		LearnerID:          learnerID,
		SkillID:            skillID,
		SessionType:        types.SessionTypeSkillSwap,
		Status:             status,
		Title:              "Intro lesson",
		ScheduledStartTime: start,
		ScheduledEndTime:   start.Add(time.Hour),
		DurationMinutes:    60,
		RoomID:             "room_1",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
