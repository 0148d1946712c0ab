package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

type ListFilter struct {
	Type   types.TransactionType
	Offset int
	Limit  int
}

// TokenTransactionRepo is append-only: rows are inserted and read, never updated.
type TokenTransactionRepo interface {
	Create(dbc dbctx.Context, rows []*types.TokenTransaction) ([]*types.TokenTransaction, error)
	GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.TokenTransaction, error)
	ExistsSince(dbc dbctx.Context, userID uuid.UUID, kind types.TransactionType, since time.Time) (bool, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, f ListFilter) ([]*types.TokenTransaction, int64, error)
	SumForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type tokenTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	repoLog := baseLog.With("repo", "TokenTransactionRepo")
	return &tokenTransactionRepo{db: db, log: repoLog}
}

func (r *tokenTransactionRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *tokenTransactionRepo) Create(dbc dbctx.Context, rows []*types.TokenTransaction) ([]*types.TokenTransaction, error) {
	if len(rows) == 0 {
		return []*types.TokenTransaction{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tokenTransactionRepo) GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.TokenTransaction, error) {
	if key == "" {
		return nil, nil
	}
	var row types.TokenTransaction
	if err := r.tx(dbc).
		Where("idempotency_key = ?", key).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *tokenTransactionRepo) ExistsSince(dbc dbctx.Context, userID uuid.UUID, kind types.TransactionType, since time.Time) (bool, error) {
	var count int64
	if err := r.tx(dbc).
		Model(&types.TokenTransaction{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, kind, since.UTC()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tokenTransactionRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, f ListFilter) ([]*types.TokenTransaction, int64, error) {
	q := r.tx(dbc).
		Model(&types.TokenTransaction{}).
		Where("user_id = ?", userID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
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
	var results []*types.TokenTransaction
	if err := q.
		Order("created_at DESC, id DESC").
		Offset(f.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *tokenTransactionRepo) SumForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	if err := r.tx(dbc).
		Model(&types.TokenTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}
