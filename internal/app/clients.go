package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skillswap-backend/internal/platform/gcp"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/platform/payments"
	"github.com/yungbote/skillswap-backend/internal/platform/rtc"
	"github.com/yungbote/skillswap-backend/internal/platform/sendgrid"
	"github.com/yungbote/skillswap-backend/internal/realtime/bus"
)

// Clients are the external adapters. Optional ones stay nil when unconfigured.
type Clients struct {
	Redis    *goredis.Client
	EventBus bus.Bus
	Bucket   gcp.BucketService
	Payments payments.Gateway
	Video    rtc.TokenIssuer
	Mailer   sendgrid.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		c.Redis, c.EventBus = rdb, b
	} else {
		log.Info("REDIS_ADDR not set; realtime events stay on this instance")
	}

	// Gcs
	if strings.TrimSpace(cfg.AvatarBucket) != "" {
		storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulator)
		if err != nil {
			c.Close()
			return Clients{}, err
		}
		bucket, err := gcp.NewBucketService(ctx, log, gcp.BucketConfig{
			Storage:       storageCfg,
			BucketName:    cfg.AvatarBucket,
			CDNDomain:     cfg.AvatarCDNDomain,
			PublicBaseURL: cfg.AvatarPublicURL,
			Credentials:   cfg.GCPCredentials,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init bucket client: %w", err)
		}
		c.Bucket = bucket
	} else {
		log.Warn("AVATAR_GCS_BUCKET_NAME not set; avatars and photo uploads disabled")
	}

	// Stripe and video answer ErrNotConfigured per call when keys are missing.
	c.Payments = payments.NewStripeGateway(log, payments.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})
	c.Video = rtc.NewTokenIssuer(rtc.Config{
		APIKey:    cfg.VideoAPIKey,
		APISecret: cfg.VideoAPISecret,
		TTL:       cfg.VideoTokenTTL,
	})

	// Sendgrid
	if strings.TrimSpace(cfg.SendgridAPIKey) != "" {
		mailer, err := sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.SendgridAPIKey,
			DefaultFromEmail: cfg.SendgridFromEmail,
			DefaultFromName:  cfg.SendgridFromName,
			MaxRetries:       2,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		c.Mailer = mailer
	}

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if closer, ok := c.Bucket.(interface{ Close() error }); ok && closer != nil {
		_ = closer.Close()
	}
}
