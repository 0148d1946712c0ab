package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/data/repos"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const (
	minPasswordLength = 8
	accessAudience    = "access"
	refreshAudience   = "refresh"
)

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	ReferrerID uuid.UUID `json:"referrerId"`
}

type AuthResult struct {
	User         *types.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

type AuthConfig struct {
	JWTSecret     string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	accounts      domainagg.AccountAggregate
	avatarService AvatarService
	cfg           AuthConfig
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	accounts domainagg.AccountAggregate,
	avatarService AvatarService,
	cfg AuthConfig,
) AuthService {
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.JWTSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 7 * 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		accounts:      accounts,
		avatarService: avatarService,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var (
	errInvalidCredentials = apierr.Newf(http.StatusUnauthorized, "unauthorized", "Invalid email or password")
	errInvalidRefresh     = apierr.Newf(http.StatusUnauthorized, "unauthorized", "Invalid refresh token")
	errInvalidToken       = apierr.Newf(http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
	errAccountInactive    = apierr.Newf(http.StatusUnauthorized, "unauthorized", "Account no longer active")
	errAccountDeactivated = apierr.Newf(http.StatusForbidden, "forbidden", "Account is deactivated")
	errAccountBlocked     = apierr.Newf(http.StatusForbidden, "forbidden", "Account is blocked")
)

func validateRegistration(in *RegisterInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var fields []apierr.FieldError
	if _, err := mail.ParseAddress(in.Email); err != nil || in.Email == "" {
		fields = append(fields, apierr.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if len(in.Password) < minPasswordLength {
		fields = append(fields, apierr.FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)})
	}
	if in.FirstName == "" {
		fields = append(fields, apierr.FieldError{Field: "firstName", Message: "First name is required"})
	}
	if in.LastName == "" {
		fields = append(fields, apierr.FieldError{Field: "lastName", Message: "Last name is required"})
	}
	if len(fields) > 0 {
		return apierr.Validation(fields...)
	}
	return nil
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Language:  "en",
		Role:      types.RoleUser,
	}
	res, err := as.accounts.Register(ctx, domainagg.RegisterAccountInput{
		User:       user,
		ReferrerID: in.ReferrerID,
		At:         as.now(),
	})
	if err != nil {
		return nil, err
	}
	user = res.User

	if as.avatarService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(dbctx.Background(ctx), user); err != nil {
			as.log.Warn("initial avatar failed (ignored)", "user_id", user.ID, "error", err)
		}
	}

	return as.issueTokens(ctx, user)
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}
	user, err := as.userRepo.GetByEmail(dbctx.Background(ctx), email)
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, errAccountDeactivated
	}
	if user.IsBlocked {
		return nil, errAccountBlocked
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, errInvalidRefresh
	}
	claims, err := as.parse(refreshToken, as.cfg.RefreshSecret, refreshAudience)
	if err != nil {
		return nil, errInvalidRefresh
	}

	var out *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if existing == nil || existing.UserID.String() != claims.Subject {
			return errInvalidRefresh
		}
		// Consumed before anything else so a replayed token is never accepted twice.
		if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		if existing.ExpiresAt.Before(as.now()) {
			return errInvalidRefresh
		}
		user, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if user == nil || !user.IsActive {
			return errAccountInactive
		}
		if user.IsBlocked {
			return errAccountBlocked
		}
		out, err = as.issueTokensTx(dbc, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		as.log.Warn("Request data not set in context")
		return errInvalidToken
	}
	if err := as.userTokenRepo.DeleteByUserIDs(dbctx.Background(ctx), []uuid.UUID{rd.UserID}); err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Newf(http.StatusUnauthorized, "unauthorized", "Authentication required")
	}
	claims, err := as.parse(tokenString, as.cfg.JWTSecret, accessAudience)
	if err != nil {
		return ctx, errInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, errInvalidToken
	}
	user, err := as.userRepo.GetByID(dbctx.Background(ctx), userID)
	if err != nil {
		return ctx, fmt.Errorf("load token user: %w", err)
	}
	if user == nil || !user.IsActive {
		return ctx, errAccountInactive
	}
	if user.IsBlocked {
		return ctx, errAccountBlocked
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      user.ID,
		Role:        string(user.Role),
		TokenString: tokenString,
	}), nil
}

func (as *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := as.userTokenRepo.DeleteExpired(dbctx.Background(ctx), as.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		as.log.Info("purged expired refresh tokens", "count", n)
	}
	return n, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.cfg.AccessTTL
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (*AuthResult, error) {
	return as.issueTokensTx(dbctx.Background(ctx), user)
}

func (as *authService) issueTokensTx(dbc dbctx.Context, user *types.User) (*AuthResult, error) {
	now := as.now()
	access, err := as.sign(JWTClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{accessAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, as.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	expiresAt := now.Add(as.cfg.RefreshTTL)
	refresh, err := as.sign(JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{refreshAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, as.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}}); err != nil {
		as.log.Warn("Create User Token Error", "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &AuthResult{User: user, Token: access, RefreshToken: refresh}, nil
}

func (as *authService) sign(claims JWTClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (as *authService) parse(tokenString, secret, audience string) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(as.now), jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid or expired JWT token")
	}
	return claims, nil
}
