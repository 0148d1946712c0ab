package ledger

import (
	"fmt"
	"math"
)

// Economy holds the token amounts used by ledger-writing flows. It is built once at
// startup and passed to the components that need it.
type Economy struct {
	TokensPerLesson      int64  `yaml:"tokens_per_lesson"`
	DailyChallengeTokens int64  `yaml:"daily_challenge_tokens"`
	InitialUserTokens    int64  `yaml:"initial_user_tokens"`
	TokensPerUSD         int64  `yaml:"tokens_per_usd"`
	MaxPurchaseTokens    int64  `yaml:"max_purchase_tokens"`
	PurchaseCurrency     string `yaml:"purchase_currency"`
	// ReferralTokens is paid to the referrer when a referred user registers. 0 disables it.
	ReferralTokens int64 `yaml:"referral_tokens"`
	// StreakBonusTokens is paid every StreakBonusEvery consecutive daily claims. 0 disables it.
	StreakBonusTokens int64 `yaml:"streak_bonus_tokens"`
	StreakBonusEvery  int   `yaml:"streak_bonus_every"`
}

func DefaultEconomy() Economy {
	return Economy{
		TokensPerLesson:      20,
		DailyChallengeTokens: 10,
		InitialUserTokens:    100,
		TokensPerUSD:         10,
		MaxPurchaseTokens:    10000,
		PurchaseCurrency:     "usd",
		ReferralTokens:       25,
		StreakBonusTokens:    20,
		StreakBonusEvery:     7,
	}
}

func (e Economy) Validate() error {
	switch {
	case e.TokensPerLesson <= 0:
		return fmt.Errorf("tokens_per_lesson must be > 0")
	case e.DailyChallengeTokens <= 0:
		return fmt.Errorf("daily_challenge_tokens must be > 0")
	case e.InitialUserTokens < 0:
		return fmt.Errorf("initial_user_tokens must be >= 0")
	case e.TokensPerUSD <= 0:
		return fmt.Errorf("tokens_per_usd must be > 0")
	case e.MaxPurchaseTokens <= 0:
		return fmt.Errorf("max_purchase_tokens must be > 0")
	case e.PurchaseCurrency == "":
		return fmt.Errorf("purchase_currency is required")
	case e.ReferralTokens < 0 || e.StreakBonusTokens < 0:
		return fmt.Errorf("bonus amounts must be >= 0")
	case e.StreakBonusTokens > 0 && e.StreakBonusEvery <= 0:
		return fmt.Errorf("streak_bonus_every must be > 0 when streak bonus is enabled")
	}
	return nil
}

// StreakBonusDue reports whether reaching streak earns the streak bonus.
func (e Economy) StreakBonusDue(streak int) bool {
	return e.StreakBonusTokens > 0 && e.StreakBonusEvery > 0 && streak > 0 && streak%e.StreakBonusEvery == 0
}

// PriceCents converts a token amount to the charge in minor currency units.
func (e Economy) PriceCents(tokens int64) int64 {
	if e.TokensPerUSD <= 0 {
		return 0
	}
	return int64(math.Round(float64(tokens) * 100 / float64(e.TokensPerUSD)))
}
