package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// Entry is the closed set of reasons a balance may change. Every variant fixes the
// transaction type, the sign of the amount, the description and the metadata stored
// with the ledger row. The set is sealed: only this package can add variants.
type Entry interface {
	Type() TransactionType
	Description(amount int64) string
	Reference() (*uuid.UUID, string)
	Metadata() map[string]any
	isEntry()
}

type SignupBonus struct{}

type TeachingEarned struct {
	SessionID uuid.UUID
	Title     string
}

type LearningSpent struct {
	SessionID uuid.UUID
	Title     string
}

type SessionRefund struct {
	SessionID uuid.UUID
	Title     string
}

// ChallengeEarned is the once-per-UTC-day reward; Day is formatted YYYY-MM-DD.
type ChallengeEarned struct {
	Day string
}

type PurchaseCredit struct {
	PaymentIntentID string
	AmountPaidCents int64
	Currency        string
}

type ReferralEarned struct {
	ReferredUserID uuid.UUID
}

type StreakEarned struct {
	Days int
}

type AdminAdjustment struct {
	AdminID uuid.UUID
	Note    string
	Debit   bool
}

func (SignupBonus) Type() TransactionType     { return TypeSignupBonus }
func (TeachingEarned) Type() TransactionType  { return TypeEarnedTeaching }
func (LearningSpent) Type() TransactionType   { return TypeSpentLearning }
func (SessionRefund) Type() TransactionType   { return TypeRefund }
func (ChallengeEarned) Type() TransactionType { return TypeEarnedChallenge }
func (PurchaseCredit) Type() TransactionType  { return TypePurchased }
func (ReferralEarned) Type() TransactionType  { return TypeEarnedReferral }
func (StreakEarned) Type() TransactionType    { return TypeEarnedStreak }
func (a AdminAdjustment) Type() TransactionType {
	if a.Debit {
		return TypeAdminDebit
	}
	return TypeAdminCredit
}

func (SignupBonus) Description(int64) string { return "Welcome bonus" }
func (e TeachingEarned) Description(int64) string {
	return "Earned from teaching: " + e.Title
}
func (e LearningSpent) Description(int64) string {
	return "Paid for lesson: " + e.Title
}
func (e SessionRefund) Description(int64) string {
	return "Refund for cancelled session: " + e.Title
}
func (ChallengeEarned) Description(int64) string { return "Daily challenge completed" }
func (PurchaseCredit) Description(amount int64) string {
	return fmt.Sprintf("Purchased %d tokens", amount)
}
func (ReferralEarned) Description(int64) string { return "Referral reward" }
func (e StreakEarned) Description(int64) string {
	return fmt.Sprintf("%d-day streak reward", e.Days)
}
func (e AdminAdjustment) Description(int64) string {
	if e.Note != "" {
		return e.Note
	}
	if e.Debit {
		return "Admin debit"
	}
	return "Admin credit"
}

func (SignupBonus) Reference() (*uuid.UUID, string) { return nil, "" }
func (e TeachingEarned) Reference() (*uuid.UUID, string) {
	return sessionRef(e.SessionID)
}
func (e LearningSpent) Reference() (*uuid.UUID, string) {
	return sessionRef(e.SessionID)
}
func (e SessionRefund) Reference() (*uuid.UUID, string) {
	return sessionRef(e.SessionID)
}
func (ChallengeEarned) Reference() (*uuid.UUID, string) { return nil, "" }
func (PurchaseCredit) Reference() (*uuid.UUID, string)  { return nil, "" }
func (e ReferralEarned) Reference() (*uuid.UUID, string) {
	if e.ReferredUserID == uuid.Nil {
		return nil, ""
	}
	id := e.ReferredUserID
	return &id, "user"
}
func (StreakEarned) Reference() (*uuid.UUID, string)    { return nil, "" }
func (AdminAdjustment) Reference() (*uuid.UUID, string) { return nil, "" }

func (SignupBonus) Metadata() map[string]any    { return nil }
func (TeachingEarned) Metadata() map[string]any { return nil }
func (LearningSpent) Metadata() map[string]any  { return nil }
func (SessionRefund) Metadata() map[string]any  { return nil }
func (e ChallengeEarned) Metadata() map[string]any {
	return map[string]any{"day": e.Day}
}
func (e PurchaseCredit) Metadata() map[string]any {
	return map[string]any{
		"paymentIntentId": e.PaymentIntentID,
		"amountPaid":      float64(e.AmountPaidCents) / 100,
		"currency":        e.Currency,
	}
}
func (e ReferralEarned) Metadata() map[string]any {
	return map[string]any{"referredUserId": e.ReferredUserID.String()}
}
func (e StreakEarned) Metadata() map[string]any {
	return map[string]any{"days": e.Days}
}
func (e AdminAdjustment) Metadata() map[string]any {
	return map[string]any{"adminId": e.AdminID.String()}
}

func (SignupBonus) isEntry()     {}
func (TeachingEarned) isEntry()  {}
func (LearningSpent) isEntry()   {}
func (SessionRefund) isEntry()   {}
func (ChallengeEarned) isEntry() {}
func (PurchaseCredit) isEntry()  {}
func (ReferralEarned) isEntry()  {}
func (StreakEarned) isEntry()    {}
func (AdminAdjustment) isEntry() {}

func sessionRef(id uuid.UUID) (*uuid.UUID, string) {
	if id == uuid.Nil {
		return nil, ""
	}
	return &id, ReferenceTypeSession
}

// IsDebit reports whether the entry removes tokens from the balance.
func IsDebit(e Entry) bool {
	switch v := e.(type) {
	case LearningSpent:
		return true
	case AdminAdjustment:
		return v.Debit
	case SignupBonus, TeachingEarned, SessionRefund, ChallengeEarned,
		PurchaseCredit, ReferralEarned, StreakEarned:
		return false
	default:
		panic(fmt.Sprintf("ledger: unhandled entry %T", e))
	}
}

// CounterDeltas returns how a signed amount moves total_tokens_earned and
// total_tokens_spent. Refunds give back spending instead of counting as earnings.
func CounterDeltas(e Entry, amount int64) (earned, spent int64) {
	switch e.(type) {
	case LearningSpent, AdminAdjustment:
		if amount < 0 {
			return 0, -amount
		}
		return amount, 0
	case SessionRefund:
		return 0, -amount
	case SignupBonus, TeachingEarned, ChallengeEarned, PurchaseCredit, ReferralEarned, StreakEarned:
		return amount, 0
	default:
		panic(fmt.Sprintf("ledger: unhandled entry %T", e))
	}
}
