package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TypeEarnedTeaching  TransactionType = "EARNED_TEACHING"
	TypeSpentLearning   TransactionType = "SPENT_LEARNING"
	TypeEarnedReferral  TransactionType = "EARNED_REFERRAL"
	TypeEarnedChallenge TransactionType = "EARNED_CHALLENGE"
	TypeEarnedStreak    TransactionType = "EARNED_STREAK"
	TypePurchased       TransactionType = "PURCHASED"
	TypeAdminCredit     TransactionType = "ADMIN_CREDIT"
	TypeAdminDebit      TransactionType = "ADMIN_DEBIT"
	TypeRefund          TransactionType = "REFUND"
	TypeSignupBonus     TransactionType = "SIGNUP_BONUS"
)

func IsKnownType(t TransactionType) bool {
	switch t {
	case TypeEarnedTeaching, TypeSpentLearning, TypeEarnedReferral, TypeEarnedChallenge,
		TypeEarnedStreak, TypePurchased, TypeAdminCredit, TypeAdminDebit, TypeRefund, TypeSignupBonus:
		return true
	default:
		return false
	}
}

const ReferenceTypeSession = "session"

// TokenTransaction is an immutable ledger row.
// BalanceAfter == BalanceBefore + Amount, and the latest row's BalanceAfter equals the
// user's token_balance once the writing transaction commits.
type TokenTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_token_tx_user_created,priority:1;column:user_id" json:"userId"`
	Amount         int64           `gorm:"not null;column:amount" json:"amount"`
	Type           TransactionType `gorm:"not null;index;column:type" json:"type"`
	Description    string          `gorm:"column:description" json:"description"`
	BalanceBefore  int64           `gorm:"not null;column:balance_before" json:"balanceBefore"`
	BalanceAfter   int64           `gorm:"not null;column:balance_after" json:"balanceAfter"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid;index;column:reference_id" json:"referenceId,omitempty"`
	ReferenceType  string          `gorm:"column:reference_type" json:"referenceType,omitempty"`
	IdempotencyKey *string         `gorm:"uniqueIndex;column:idempotency_key" json:"-"`
	Metadata       datatypes.JSON  `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;index:idx_token_tx_user_created,priority:2;column:created_at" json:"createdAt"`
}

func (TokenTransaction) TableName() string { return "token_transaction" }

func (t *TokenTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}
