package skill

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type ListFilter struct {
	Category types.SkillCategory
	Search   string
}

type SkillRepo interface {
	Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error)
	GetByName(dbc dbctx.Context, name string) (*types.Skill, error)
	ListActive(dbc dbctx.Context, f ListFilter) ([]*types.Skill, error)
	ListAll(dbc dbctx.Context) ([]*types.Skill, error)

	// AddTotalUsers moves total_users by delta, clamped at zero.
	AddTotalUsers(dbc dbctx.Context, id uuid.UUID, delta int64) error
	SetTotalUsers(dbc dbctx.Context, id uuid.UUID, total int64) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	repoLog := baseLog.With("repo", "SkillRepo")
	return &skillRepo{db: db, log: repoLog}
}

func (r *skillRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *skillRepo) Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error) {
	if len(skills) == 0 {
		return []*types.Skill{}, nil
	}
	if err := r.tx(dbc).Create(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Skill
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *skillRepo) GetByName(dbc dbctx.Context, name string) (*types.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var row types.Skill
	if err := r.tx(dbc).Where("LOWER(name) = ?", strings.ToLower(name)).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *skillRepo) ListActive(dbc dbctx.Context, f ListFilter) ([]*types.Skill, error) {
	q := r.tx(dbc).Where("is_active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+search+"%")
	}
	var results []*types.Skill
	if err := q.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skillRepo) ListAll(dbc dbctx.Context) ([]*types.Skill, error) {
	var results []*types.Skill
	if err := r.tx(dbc).Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skillRepo) AddTotalUsers(dbc dbctx.Context, id uuid.UUID, delta int64) error {
	return r.tx(dbc).
		Model(&types.Skill{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_users": gorm.Expr("CASE WHEN total_users + ? < 0 THEN 0 ELSE total_users + ? END", delta, delta),
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *skillRepo) SetTotalUsers(dbc dbctx.Context, id uuid.UUID, total int64) error {
	return r.tx(dbc).
		Model(&types.Skill{}).
		Where("id = ?", id).
		Update("total_users", total).Error
}
