package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
)

type Config struct {
	LogMode     string `envconfig:"LOG_MODE" default:"development"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION"`

	// HTTP
	Port            string        `envconfig:"PORT" default:"5000"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	// Database
	DBDriver         string        `envconfig:"DB_DRIVER" default:"postgres"`
	PostgresHost     string        `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string        `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string        `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string        `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string        `envconfig:"POSTGRES_NAME" default:"skillswap"`
	PostgresSSLMode  string        `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	DBMaxOpenConns   int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns   int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLife    time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	SQLitePath       string        `envconfig:"SQLITE_PATH"`

	// Auth
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"168h"`
	RefreshTokenTTL  time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`

	// Payments
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Video rooms
	VideoAPIKey    string        `envconfig:"VIDEO_API_KEY"`
	VideoAPISecret string        `envconfig:"VIDEO_API_SECRET"`
	VideoTokenTTL  time.Duration `envconfig:"VIDEO_TOKEN_TTL" default:"1h"`

	// Realtime fan-out
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"skillswap:events"`

	// Object storage
	AvatarBucket      string `envconfig:"AVATAR_GCS_BUCKET_NAME"`
	AvatarCDNDomain   string `envconfig:"AVATAR_CDN_DOMAIN"`
	AvatarPublicURL   string `envconfig:"AVATAR_PUBLIC_BASE_URL"`
	ObjectStorageMode string `envconfig:"OBJECT_STORAGE_MODE"`
	StorageEmulator   string `envconfig:"STORAGE_EMULATOR_HOST"`
	GCPCredentials    string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	AvatarFontPath    string `envconfig:"AVATAR_FONT_PATH"`
	AvatarColorsPath  string `envconfig:"AVATAR_COLORS_PATH"`

	// Email
	SendgridAPIKey    string `envconfig:"SENDGRID_API_KEY"`
	SendgridFromEmail string `envconfig:"SENDGRID_FROM_EMAIL" default:"no-reply@skillswap.app"`
	SendgridFromName  string `envconfig:"SENDGRID_FROM_NAME" default:"SkillSwap"`

	// Tracing + metrics
	OtelEnabled     bool          `envconfig:"OTEL_ENABLED" default:"false"`
	OtelServiceName string        `envconfig:"OTEL_SERVICE_NAME" default:"skillswap-api"`
	OtelEndpoint    string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelInsecure    bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelHeaders     string        `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelSampleRatio float64       `envconfig:"OTEL_SAMPLER_RATIO" default:"1"`
	MetricsInterval time.Duration `envconfig:"METRICS_SCRAPE_INTERVAL" default:"15s"`

	// Jobs
	ReconcileEnabled bool   `envconfig:"RECONCILE_ENABLED" default:"true"`
	ReconcileCron    string `envconfig:"RECONCILE_CRON" default:"0 3 * * *"`
	TokenPurgeCron   string `envconfig:"TOKEN_PURGE_CRON" default:"30 * * * *"`

	// Economy: env values first, then the YAML overlay when set.
	EconomyConfigPath    string `envconfig:"ECONOMY_CONFIG_PATH"`
	TokensPerLesson      int64  `envconfig:"TOKENS_PER_LESSON" default:"20"`
	DailyChallengeTokens int64  `envconfig:"DAILY_CHALLENGE_TOKENS" default:"10"`
	InitialUserTokens    int64  `envconfig:"INITIAL_USER_TOKENS" default:"100"`
	TokensPerUSD         int64  `envconfig:"TOKENS_PER_USD" default:"10"`
	MaxPurchaseTokens    int64  `envconfig:"MAX_PURCHASE_TOKENS" default:"10000"`
	PurchaseCurrency     string `envconfig:"PURCHASE_CURRENCY" default:"usd"`
	ReferralTokens       int64  `envconfig:"REFERRAL_TOKENS" default:"25"`
	StreakBonusTokens    int64  `envconfig:"STREAK_BONUS_TOKENS" default:"20"`
	StreakBonusEvery     int    `envconfig:"STREAK_BONUS_EVERY" default:"7"`

	Economy ledger.Economy `ignored:"true"`
}

// LoadConfig reads the process environment once. Nothing else reads it afterwards.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	cfg.Economy = ledger.Economy{
		TokensPerLesson:      cfg.TokensPerLesson,
		DailyChallengeTokens: cfg.DailyChallengeTokens,
		InitialUserTokens:    cfg.InitialUserTokens,
		TokensPerUSD:         cfg.TokensPerUSD,
		MaxPurchaseTokens:    cfg.MaxPurchaseTokens,
		PurchaseCurrency:     cfg.PurchaseCurrency,
		ReferralTokens:       cfg.ReferralTokens,
		StreakBonusTokens:    cfg.StreakBonusTokens,
		StreakBonusEvery:     cfg.StreakBonusEvery,
	}
	if path := strings.TrimSpace(cfg.EconomyConfigPath); path != "" {
		econ, err := loadEconomyOverlay(path, cfg.Economy)
		if err != nil {
			return Config{}, err
		}
		cfg.Economy = econ
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEconomyOverlay decodes YAML on top of base; keys missing from the file keep base values.
func loadEconomyOverlay(path string, base ledger.Economy) (ledger.Economy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ledger.Economy{}, fmt.Errorf("read economy config: %w", err)
	}
	out := base
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return ledger.Economy{}, fmt.Errorf("parse economy config %s: %w", path, err)
	}
	return out, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: postgres, sqlite)", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.OtelSampleRatio < 0 || c.OtelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0,1]")
	}
	if err := c.Economy.Validate(); err != nil {
		return fmt.Errorf("economy: %w", err)
	}
	return nil
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	return ":" + port
}
