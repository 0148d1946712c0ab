package rtc

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("video provider not configured")

// TokenIssuer mints short-lived room credentials for the video provider.
type TokenIssuer interface {
	Issue(roomID string, userID uuid.UUID) (string, error)
	AppID() string
}

type Config struct {
	APIKey    string
	APISecret string
	TTL       time.Duration
}

type RoomGrant struct {
	Room     string `json:"room"`
	RoomJoin bool   `json:"roomJoin"`
	Publish  bool   `json:"canPublish"`
}

type RoomClaims struct {
	Video RoomGrant `json:"video"`
	jwt.RegisteredClaims
}

type jwtIssuer struct {
	cfg Config
	now func() time.Time
}

func NewTokenIssuer(cfg Config) TokenIssuer {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &jwtIssuer{cfg: cfg, now: time.Now}
}

func (i *jwtIssuer) AppID() string { return strings.TrimSpace(i.cfg.APIKey) }

func (i *jwtIssuer) Issue(roomID string, userID uuid.UUID) (string, error) {
	if strings.TrimSpace(i.cfg.APIKey) == "" || strings.TrimSpace(i.cfg.APISecret) == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(roomID) == "" {
		return "", errors.New("room id required")
	}
	now := i.now()
	claims := RoomClaims{
		Video: RoomGrant{Room: roomID, RoomJoin: true, Publish: true},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.APIKey,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.APISecret))
}
