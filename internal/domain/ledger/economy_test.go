package ledger

import "testing"

func TestPriceCents(t *testing.T) {
	e := DefaultEconomy()
	cases := map[int64]int64{10: 100, 25: 250, 1: 10, 10000: 100000}
	for tokens, want := range cases {
		if got := e.PriceCents(tokens); got != want {
			t.Fatalf("PriceCents(%d): want=%d got=%d", tokens, want, got)
		}
	}
	e.TokensPerUSD = 3
	if got := e.PriceCents(1); got != 33 {
		t.Fatalf("rounded price: want=33 got=%d", got)
	}
}

func TestEconomyValidate(t *testing.T) {
	if err := DefaultEconomy().Validate(); err != nil {
		t.Fatalf("default economy: %v", err)
	}
	e := DefaultEconomy()
	e.TokensPerLesson = 0
	if err := e.Validate(); err == nil {
		t.Fatalf("expected error for zero lesson cost")
	}
}

func TestStreakBonusDue(t *testing.T) {
	e := DefaultEconomy()
	for streak, want := range map[int]bool{0: false, 1: false, 6: false, 7: true, 14: true} {
		if got := e.StreakBonusDue(streak); got != want {
			t.Fatalf("StreakBonusDue(%d): want=%v got=%v", streak, want, got)
		}
	}
	e.StreakBonusTokens = 0
	if e.StreakBonusDue(7) {
		t.Fatalf("disabled bonus must never be due")
	}
}
