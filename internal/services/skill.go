package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/domain/skill"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type CreateSkillInput struct {
	Name        string         `json:"name"`
	Category    skill.Category `json:"category"`
	Description string         `json:"description"`
	IconURL     string         `json:"iconUrl"`
}

type AddUserSkillInput struct {
	SkillID           uuid.UUID   `json:"skillId"`
	SkillType         skill.Type  `json:"skillType"`
	Level             skill.Level `json:"level"`
	YearsOfExperience *int        `json:"yearsOfExperience"`
	Description       string      `json:"description"`
}

type MySkills struct {
	CanTeach    []*types.UserSkill `json:"canTeach"`
	WantToLearn []*types.UserSkill `json:"wantToLearn"`
}

// Match is a complementary user and the subset of their skills that matched.
type Match struct {
	User   *types.User        `json:"user"`
	Skills []*types.UserSkill `json:"skills"`
}

type SkillService interface {
	List(ctx context.Context, category skill.Category, search string) ([]*types.Skill, error)
	Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error)
	MySkills(ctx context.Context) (*MySkills, error)
	AddMySkill(ctx context.Context, in AddUserSkillInput) (*types.UserSkill, error)
	RemoveMySkill(ctx context.Context, userSkillID uuid.UUID) error
	Matches(ctx context.Context, limit int) ([]*Match, error)
}

type skillService struct {
	log           *logger.Logger
	skillRepo     repos.SkillRepo
	userSkillRepo repos.UserSkillRepo
	userRepo      repos.UserRepo
	catalog       domainagg.CatalogAggregate
}

func NewSkillService(
	log *logger.Logger,
	skillRepo repos.SkillRepo,
	userSkillRepo repos.UserSkillRepo,
	userRepo repos.UserRepo,
	catalog domainagg.CatalogAggregate,
) SkillService {
	return &skillService{
		log:           log.With("service", "SkillService"),
		skillRepo:     skillRepo,
		userSkillRepo: userSkillRepo,
		userRepo:      userRepo,
		catalog:       catalog,
	}
}

func (ss *skillService) List(ctx context.Context, category skill.Category, search string) ([]*types.Skill, error) {
	if category != "" && !skill.IsKnownCategory(category) {
		return nil, apierr.Validation(apierr.FieldError{Field: "category", Message: "Invalid category"})
	}
	out, err := ss.skillRepo.ListActive(dbctx.Background(ctx), repos.SkillListFilter{Category: category, Search: search})
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	if out == nil {
		out = []*types.Skill{}
	}
	return out, nil
}

func (ss *skillService) Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error) {
	in.Name = strings.TrimSpace(in.Name)
	var fields []apierr.FieldError
	if in.Name == "" {
		fields = append(fields, apierr.FieldError{Field: "name", Message: "Name is required"})
	}
	if !skill.IsKnownCategory(in.Category) {
		fields = append(fields, apierr.FieldError{Field: "category", Message: "Invalid category"})
	}
	if len(fields) > 0 {
		return nil, apierr.Validation(fields...)
	}

	dbc := dbctx.Background(ctx)
	existing, err := ss.skillRepo.GetByName(dbc, in.Name)
	if err != nil {
		return nil, fmt.Errorf("load skill by name: %w", err)
	}
	if existing != nil {
		return nil, apierr.Newf(http.StatusBadRequest, "conflict", "Skill already exists")
	}
	row := &types.Skill{
		ID:          uuid.New(),
		Name:        in.Name,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		IconURL:     strings.TrimSpace(in.IconURL),
		IsActive:    true,
	}
	if _, err := ss.skillRepo.Create(dbc, []*types.Skill{row}); err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return row, nil
}

func (ss *skillService) MySkills(ctx context.Context) (*MySkills, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ss.userSkillRepo.ListByUserIDs(dbctx.Background(ctx), []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("list user skills: %w", err)
	}
	out := &MySkills{CanTeach: []*types.UserSkill{}, WantToLearn: []*types.UserSkill{}}
	for _, r := range rows {
		switch r.SkillType {
		case types.SkillTypeCanTeach:
			out.CanTeach = append(out.CanTeach, r)
		case types.SkillTypeWantToLearn:
			out.WantToLearn = append(out.WantToLearn, r)
		}
	}
	return out, nil
}

func (ss *skillService) AddMySkill(ctx context.Context, in AddUserSkillInput) (*types.UserSkill, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	var fields []apierr.FieldError
	if in.SkillID == uuid.Nil {
		fields = append(fields, apierr.FieldError{Field: "skillId", Message: "skillId is required"})
	}
	if !skill.IsKnownType(in.SkillType) {
		fields = append(fields, apierr.FieldError{Field: "skillType", Message: "Invalid skill type"})
	}
	if !skill.IsKnownLevel(in.Level) {
		fields = append(fields, apierr.FieldError{Field: "level", Message: "Invalid skill level"})
	}
	if len(fields) > 0 {
		return nil, apierr.Validation(fields...)
	}
	return ss.catalog.AddUserSkill(ctx, domainagg.AddUserSkillInput{
		UserID:            userID,
		SkillID:           in.SkillID,
		SkillType:         in.SkillType,
		Level:             in.Level,
		YearsOfExperience: in.YearsOfExperience,
		Description:       in.Description,
	})
}

func (ss *skillService) RemoveMySkill(ctx context.Context, userSkillID uuid.UUID) error {
	userID, err := requireUserID(ctx)
	if err != nil {
		return err
	}
	return ss.catalog.RemoveUserSkill(ctx, domainagg.RemoveUserSkillInput{UserID: userID, UserSkillID: userSkillID})
}

// Matches finds users who want to learn what the caller teaches or teach what the
// caller wants to learn. Each match lists only the skills that made it a match.
func (ss *skillService) Matches(ctx context.Context, limit int) ([]*Match, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	dbc := dbctx.Background(ctx)

	teach, learn, err := ss.userSkillRepo.SkillIDsByType(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load own skills: %w", err)
	}
	ids, err := ss.userSkillRepo.MatchingUserIDs(dbc, userID, teach, learn, limit)
	if err != nil {
		return nil, fmt.Errorf("match users: %w", err)
	}
	if len(ids) == 0 {
		return []*Match{}, nil
	}
	users, err := ss.userRepo.GetActiveByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load matched users: %w", err)
	}
	skills, err := ss.userSkillRepo.ListByUserIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load matched skills: %w", err)
	}

	teachSet := idSet(teach)
	learnSet := idSet(learn)
	byUser := map[uuid.UUID][]*types.UserSkill{}
	for _, s := range skills {
		_, wantsMine := teachSet[s.SkillID]
		_, teachesMine := learnSet[s.SkillID]
		if (s.SkillType == types.SkillTypeWantToLearn && wantsMine) ||
			(s.SkillType == types.SkillTypeCanTeach && teachesMine) {
			byUser[s.UserID] = append(byUser[s.UserID], s)
		}
	}

	usersByID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	out := make([]*Match, 0, len(ids))
	for _, id := range ids {
		u, ok := usersByID[id]
		if !ok || len(byUser[id]) == 0 {
			continue
		}
		out = append(out, &Match{User: u, Skills: byUser[id]})
	}
	return out, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
