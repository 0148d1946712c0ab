package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type SearchFilter struct {
	Query   string
	SkillID uuid.UUID
	Country string
	Offset  int
	Limit   int
}

// BalanceDrift is a user whose token_balance disagrees with the sum of their ledger rows.
type BalanceDrift struct {
	UserID    uuid.UUID
	Balance   int64
	LedgerSum int64
}

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	LockByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetActiveByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	Search(dbc dbctx.Context, f SearchFilter) ([]*types.User, int64, error)

	// ApplyBalanceDelta moves token_balance by delta only if the result stays >= 0.
	ApplyBalanceDelta(dbc dbctx.Context, userID uuid.UUID, delta, earnedDelta, spentDelta int64) (bool, error)
	AddTeachingStats(dbc dbctx.Context, userID uuid.UUID, hours float64) error
	AddLearningStats(dbc dbctx.Context, userID uuid.UUID, hours float64) error
	AddRating(dbc dbctx.Context, userID uuid.UUID, asTeacher bool, score int) error
	UpdateStreak(dbc dbctx.Context, userID uuid.UUID, current, longest int, activeDate time.Time) error
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error
	UpdateAvatarFields(dbc dbctx.Context, userID uuid.UUID, bucketKey, photoURL string) error
	SetActive(dbc dbctx.Context, userID uuid.UUID, active bool) error
	SetBlocked(dbc dbctx.Context, userID uuid.UUID, blocked bool) error

	ListPage(dbc dbctx.Context, offset, limit int) ([]*types.User, error)
	ListBalanceDrift(dbc dbctx.Context) ([]BalanceDrift, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := ur.tx(dbc).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := ur.tx(dbc).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.User
	if err := ur.tx(dbc).
		Where("id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (ur *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var row types.User
	if err := ur.tx(dbc).
		Where("email = ?", email).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := ur.tx(dbc).
		Model(&types.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) LockByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.User
	err := ur.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (ur *userRepo) GetActiveByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := ur.tx(dbc).
		Where("id IN ? AND is_active = ? AND is_blocked = ?", userIDs, true, false).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) Search(dbc dbctx.Context, f SearchFilter) ([]*types.User, int64, error) {
	q := ur.tx(dbc).
		Model(&types.User{}).
		Where(`"user".is_active = ? AND "user".is_blocked = ?`, true, false)

	if query := strings.ToLower(strings.TrimSpace(f.Query)); query != "" {
		like := "%" + query + "%"
		q = q.Where(`(LOWER("user".first_name) LIKE ? OR LOWER("user".last_name) LIKE ? OR LOWER("user".display_name) LIKE ?)`, like, like, like)
	}
	if country := strings.TrimSpace(f.Country); country != "" {
		q = q.Where(`"user".country = ?`, country)
	}
	if f.SkillID != uuid.Nil {
		q = q.Where(`EXISTS (SELECT 1 FROM user_skill us WHERE us.user_id = "user".id AND us.skill_id = ?)`, f.SkillID)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	var results []*types.User
	if err := q.
		Order(`"user".created_at DESC`).
		Offset(f.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (ur *userRepo) ApplyBalanceDelta(dbc dbctx.Context, userID uuid.UUID, delta, earnedDelta, spentDelta int64) (bool, error) {
	res := ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ? AND token_balance + ? >= 0", userID, delta).
		Updates(map[string]any{
			"token_balance":       gorm.Expr("token_balance + ?", delta),
			"total_tokens_earned": gorm.Expr("total_tokens_earned + ?", earnedDelta),
			"total_tokens_spent":  gorm.Expr("CASE WHEN total_tokens_spent + ? < 0 THEN 0 ELSE total_tokens_spent + ? END", spentDelta, spentDelta),
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (ur *userRepo) AddTeachingStats(dbc dbctx.Context, userID uuid.UUID, hours float64) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_lessons_taught": gorm.Expr("total_lessons_taught + 1"),
			"total_teaching_hours": gorm.Expr("total_teaching_hours + ?", hours),
			"updated_at":           time.Now().UTC(),
		}).Error
}

func (ur *userRepo) AddLearningStats(dbc dbctx.Context, userID uuid.UUID, hours float64) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_lessons_attended": gorm.Expr("total_lessons_attended + 1"),
			"total_learning_hours":   gorm.Expr("total_learning_hours + ?", hours),
			"updated_at":             time.Now().UTC(),
		}).Error
}

// AddRating folds score into the running average: avg' = (avg*n + score) / (n+1).
func (ur *userRepo) AddRating(dbc dbctx.Context, userID uuid.UUID, asTeacher bool, score int) error {
	avgCol, countCol := "average_rating_as_learner", "total_ratings_as_learner"
	if asTeacher {
		avgCol, countCol = "average_rating_as_teacher", "total_ratings_as_teacher"
	}
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			avgCol:       gorm.Expr("("+avgCol+" * "+countCol+" + ?) / ("+countCol+" + 1)", float64(score)),
			countCol:     gorm.Expr(countCol + " + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (ur *userRepo) UpdateStreak(dbc dbctx.Context, userID uuid.UUID, current, longest int, activeDate time.Time) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_active_date": activeDate.UTC(),
		}).Error
}

func (ur *userRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

func (ur *userRepo) UpdateAvatarFields(dbc dbctx.Context, userID uuid.UUID, bucketKey, photoURL string) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"avatar_bucket_key": bucketKey,
			"profile_photo":     photoURL,
		}).Error
}

func (ur *userRepo) SetActive(dbc dbctx.Context, userID uuid.UUID, active bool) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("is_active", active).Error
}

func (ur *userRepo) SetBlocked(dbc dbctx.Context, userID uuid.UUID, blocked bool) error {
	return ur.tx(dbc).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("is_blocked", blocked).Error
}

func (ur *userRepo) ListPage(dbc dbctx.Context, offset, limit int) ([]*types.User, error) {
	if limit <= 0 {
		limit = 500
	}
	var results []*types.User
	if err := ur.tx(dbc).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) ListBalanceDrift(dbc dbctx.Context) ([]BalanceDrift, error) {
	var rows []BalanceDrift
	err := ur.tx(dbc).Raw(`
		SELECT u.id AS user_id, u.token_balance AS balance, COALESCE(SUM(t.amount), 0) AS ledger_sum
		FROM "user" u
		LEFT JOIN token_transaction t ON t.user_id = u.id
		GROUP BY u.id, u.token_balance
		HAVING u.token_balance <> COALESCE(SUM(t.amount), 0)
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
