package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"refresh_token", "abc",
		"stripe_signature", "t=1,v1=x",
		"email", "a@b.c",
		"amount", 20,
		"token_balance", 35,
	})
	if len(out) != 10 {
		t.Fatalf("len: want=10 got=%d", len(out))
	}
	if out[9] != 35 {
		t.Fatalf("token_balance must not be redacted: got=%v", out[9])
	}
	for _, i := range []int{1, 3, 5} {
		if out[i] != "[REDACTED]" {
			t.Fatalf("value %d: want=[REDACTED] got=%v", i, out[i])
		}
	}
	if out[7] != 20 {
		t.Fatalf("amount: want=20 got=%v", out[7])
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"teacher_id", "5b0c1c2e-0000-4000-8000-000000000001"})
	got, _ := out[1].(string)
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("teacher_id: unexpected hash %q", got)
	}
	again := sanitizeKVs([]interface{}{"teacher_id", "5b0c1c2e-0000-4000-8000-000000000001"})
	if again[1] != got {
		t.Fatalf("hash must be stable: %v vs %v", again[1], got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"op", "Ledger.Apply", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("odd kv: got=%v", out)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("discarded", "k", "v")
	l.With("component", "x").Debug("discarded")
}
