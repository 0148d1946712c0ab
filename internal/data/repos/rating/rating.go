package rating

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

// ReceivedStats is the rating aggregate for one rated user in one role.
type ReceivedStats struct {
	Count   int
	Average float64
}

type RatingRepo interface {
	Create(dbc dbctx.Context, rows []*types.Rating) ([]*types.Rating, error)
	Exists(dbc dbctx.Context, sessionID, raterID uuid.UUID) (bool, error)
	ListReceived(dbc dbctx.Context, ratedUserID uuid.UUID, offset, limit int) ([]*types.Rating, int64, error)

	// StatsByRole groups ratings by rated user, split by whether the rated user taught the session.
	StatsByRole(dbc dbctx.Context) (asTeacher, asLearner map[uuid.UUID]ReceivedStats, err error)
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	repoLog := baseLog.With("repo", "RatingRepo")
	return &ratingRepo{db: db, log: repoLog}
}

func (r *ratingRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *ratingRepo) Create(dbc dbctx.Context, rows []*types.Rating) ([]*types.Rating, error) {
	if len(rows) == 0 {
		return []*types.Rating{}, nil
	}
	if err := r.tx(dbc).Omit("Rater").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ratingRepo) Exists(dbc dbctx.Context, sessionID, raterID uuid.UUID) (bool, error) {
	var count int64
	if err := r.tx(dbc).
		Model(&types.Rating{}).
		Where("session_id = ? AND rater_id = ?", sessionID, raterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ratingRepo) ListReceived(dbc dbctx.Context, ratedUserID uuid.UUID, offset, limit int) ([]*types.Rating, int64, error) {
	q := r.tx(dbc).
		Model(&types.Rating{}).
		Where("rated_user_id = ?", ratedUserID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var results []*types.Rating
	if err := q.
		Preload("Rater").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *ratingRepo) StatsByRole(dbc dbctx.Context) (map[uuid.UUID]ReceivedStats, map[uuid.UUID]ReceivedStats, error) {
	var rows []struct {
		RatedUserID uuid.UUID
		AsTeacher   int
		Total       int
		Average     float64
	}
	err := r.tx(dbc).Raw(`
		SELECT r.rated_user_id AS rated_user_id,
		       CASE WHEN s.teacher_id = r.rated_user_id THEN 1 ELSE 0 END AS as_teacher,
		       COUNT(*) AS total,
		       AVG(r.rating * 1.0) AS average
		FROM rating r
		JOIN session s ON s.id = r.session_id
		GROUP BY r.rated_user_id, CASE WHEN s.teacher_id = r.rated_user_id THEN 1 ELSE 0 END
	`).Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	asTeacher := map[uuid.UUID]ReceivedStats{}
	asLearner := map[uuid.UUID]ReceivedStats{}
	for _, row := range rows {
		st := ReceivedStats{Count: row.Total, Average: row.Average}
		if row.AsTeacher == 1 {
			asTeacher[row.RatedUserID] = st
		} else {
			asLearner[row.RatedUserID] = st
		}
	}
	return asTeacher, asLearner, nil
}
