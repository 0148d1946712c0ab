package skill

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type UserSkillRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserSkill) ([]*types.UserSkill, error)
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.UserSkill, error)
	Exists(dbc dbctx.Context, userID, skillID uuid.UUID, kind types.UserSkillType) (bool, error)
	DeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
	ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserSkill, error)

	// SkillIDsByType splits a user's declared skills into teach and learn sets.
	SkillIDsByType(dbc dbctx.Context, userID uuid.UUID) (teach, learn []uuid.UUID, err error)

	// MatchingUserIDs returns active, unblocked users other than requesterID who want to
	// learn a skill in teach or can teach a skill in learn.
	MatchingUserIDs(dbc dbctx.Context, requesterID uuid.UUID, teach, learn []uuid.UUID, limit int) ([]uuid.UUID, error)

	CountBySkill(dbc dbctx.Context) (map[uuid.UUID]int64, error)
}

type userSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSkillRepo(db *gorm.DB, baseLog *logger.Logger) UserSkillRepo {
	repoLog := baseLog.With("repo", "UserSkillRepo")
	return &userSkillRepo{db: db, log: repoLog}
}

func (r *userSkillRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *userSkillRepo) Create(dbc dbctx.Context, rows []*types.UserSkill) ([]*types.UserSkill, error) {
	if len(rows) == 0 {
		return []*types.UserSkill{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userSkillRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.UserSkill, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserSkill
	if err := r.tx(dbc).
		Preload("Skill").
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userSkillRepo) Exists(dbc dbctx.Context, userID, skillID uuid.UUID, kind types.UserSkillType) (bool, error) {
	var count int64
	if err := r.tx(dbc).
		Model(&types.UserSkill{}).
		Where("user_id = ? AND skill_id = ? AND skill_type = ?", userID, skillID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userSkillRepo) DeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := r.tx(dbc).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.UserSkill{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userSkillRepo) ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserSkill, error) {
	var results []*types.UserSkill
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Preload("Skill").
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userSkillRepo) SkillIDsByType(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
	var rows []*types.UserSkill
	if err := r.tx(dbc).
		Select("skill_id", "skill_type").
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	var teach, learn []uuid.UUID
	for _, row := range rows {
		switch row.SkillType {
		case types.SkillTypeCanTeach:
			teach = append(teach, row.SkillID)
		case types.SkillTypeWantToLearn:
			learn = append(learn, row.SkillID)
		}
	}
	return teach, learn, nil
}

func (r *userSkillRepo) MatchingUserIDs(dbc dbctx.Context, requesterID uuid.UUID, teach, learn []uuid.UUID, limit int) ([]uuid.UUID, error) {
	if len(teach) == 0 && len(learn) == 0 {
		return []uuid.UUID{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var parts []string
	var args []any
	if len(teach) > 0 {
		parts = append(parts, "(us.skill_type = ? AND us.skill_id IN ?)")
		args = append(args, types.SkillTypeWantToLearn, teach)
	}
	if len(learn) > 0 {
		parts = append(parts, "(us.skill_type = ? AND us.skill_id IN ?)")
		args = append(args, types.SkillTypeCanTeach, learn)
	}

	var ids []uuid.UUID
	err := r.tx(dbc).
		Table("user_skill AS us").
		Joins(`JOIN "user" u ON u.id = us.user_id`).
		Where("us.user_id <> ?", requesterID).
		Where("u.is_active = ? AND u.is_blocked = ?", true, false).
		Where("("+strings.Join(parts, " OR ")+")", args...).
		Group("us.user_id").
		Order("MIN(us.created_at) ASC").
		Limit(limit).
		Pluck("us.user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userSkillRepo) CountBySkill(dbc dbctx.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		SkillID uuid.UUID
		Total   int64
	}
	if err := r.tx(dbc).
		Model(&types.UserSkill{}).
		Select("skill_id, COUNT(*) AS total").
		Group("skill_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.SkillID] = row.Total
	}
	return out, nil
}
