package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
)

func statusOf(err error) int {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return apierr.FromError(err).Status
}

func TestAuthRegisterLoginRefresh(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()

	reg, err := svc.Register(f.ctx, RegisterInput{
		Email:     "  Ada@Example.com ",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" {
		t.Fatalf("email: want=%q got=%q", "ada@example.com", reg.User.Email)
	}
	if reg.User.TokenBalance != f.econ.InitialUserTokens {
		t.Fatalf("balance: want=%d got=%d", f.econ.InitialUserTokens, reg.User.TokenBalance)
	}
	rows, total, err := f.txs.ListForUser(dbctx.Context{Ctx: f.ctx}, reg.User.ID, ledgerFilterAll())
	if err != nil || total != 1 || rows[0].Type != ledger.TypeSignupBonus {
		t.Fatalf("signup ledger: total=%d err=%v", total, err)
	}

	ctx, err := svc.SetContextFromToken(f.ctx, reg.Token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.UserID(ctx); got != reg.User.ID {
		t.Fatalf("ctx user: want=%s got=%s", reg.User.ID, got)
	}

	login, err := svc.Login(f.ctx, "ADA@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.Refresh(f.ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := svc.Refresh(f.ctx, login.RefreshToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: want=401 got=%v", err)
	}
	if _, err := svc.SetContextFromToken(f.ctx, refreshed.RefreshToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("refresh token as access token: want=401 got=%v", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(f.ctx, refreshed.RefreshToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: want=401 got=%v", err)
	}
}

func TestAuthRegisterValidationAndDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()

	_, err := svc.Register(f.ctx, RegisterInput{Email: "nope", Password: "short"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || len(apiErr.Fields) != 4 {
		t.Fatalf("validation: want 4 field errors got=%v", err)
	}

	in := RegisterInput{Email: "dup@example.com", Password: "password1", FirstName: "D", LastName: "U"}
	if _, err := svc.Register(f.ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err = svc.Register(f.ctx, in)
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("duplicate: want=400 got=%v", err)
	}
	if msg := apierr.FromError(err).PublicMessage(); msg != "Email already registered" {
		t.Fatalf("duplicate message: got=%q", msg)
	}
}

func TestAuthLoginRejections(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	reg, err := svc.Register(f.ctx, RegisterInput{Email: "b@example.com", Password: "password1", FirstName: "B", LastName: "C"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(f.ctx, "b@example.com", "wrong-password"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("wrong password: want=401 got=%v", err)
	}
	if _, err := svc.Login(f.ctx, "missing@example.com", "password1"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("unknown email: want=401 got=%v", err)
	}

	dbc := dbctx.Context{Ctx: f.ctx}
	if err := f.users.SetBlocked(dbc, reg.User.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	if _, err := svc.Login(f.ctx, "b@example.com", "password1"); statusOf(err) != http.StatusForbidden {
		t.Fatalf("blocked login: want=403 got=%v", err)
	}
	if _, err := svc.SetContextFromToken(f.ctx, reg.Token); statusOf(err) != http.StatusForbidden {
		t.Fatalf("blocked token: want=403 got=%v", err)
	}

	if err := f.users.SetBlocked(dbc, reg.User.ID, false); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	if err := f.users.SetActive(dbc, reg.User.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := svc.Login(f.ctx, "b@example.com", "password1"); statusOf(err) != http.StatusForbidden {
		t.Fatalf("deactivated login: want=403 got=%v", err)
	}
	if _, err := svc.SetContextFromToken(f.ctx, reg.Token); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("deactivated token: want=401 got=%v", err)
	}
}

func TestAuthReferralCreditsReferrer(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	referrer := f.user(t, 0)

	if _, err := svc.Register(f.ctx, RegisterInput{
		Email: "r@example.com", Password: "password1", FirstName: "R", LastName: "S", ReferrerID: referrer.ID,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := f.reload(t, referrer.ID).TokenBalance; got != f.econ.ReferralTokens {
		t.Fatalf("referrer balance: want=%d got=%d", f.econ.ReferralTokens, got)
	}
	if _, err := svc.SetContextFromToken(f.ctx, "garbage"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("garbage token: want=401 got=%v", err)
	}
}
