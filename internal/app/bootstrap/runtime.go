package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
	"github.com/wolfman30/medspa-booking-wizard/internal/draftstore"
	"github.com/wolfman30/medspa-booking-wizard/internal/wizard"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

var (
	_ wizard.Store = (*draftstore.RedisStore)(nil)
	_ wizard.Store = (*draftstore.BadgerStore)(nil)
	_ wizard.Store = (*draftstore.DynamoStore)(nil)
	_ wizard.Store = (*draftstore.MemoryStore)(nil)
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// DraftStoreDeps carries the clients a draft store backend may need.
type DraftStoreDeps struct {
	Redis  *redis.Client
	Dynamo draftstore.DynamoClient
}

// BuildDraftStore selects the wizard draft backend named by cfg.DraftStore.
// The returned close func releases backend resources and is never nil.
func BuildDraftStore(cfg *appconfig.Config, deps DraftStoreDeps, logger *logging.Logger) (wizard.Store, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	switch cfg.DraftStore {
	case "", "redis":
		if deps.Redis == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis draft store selected but redis is unavailable")
		}
		logger.Info("wizard drafts stored in redis", "ttl", cfg.DraftTTL.String())
		return draftstore.NewRedisStore(deps.Redis, cfg.DraftTTL), noop, nil
	case "badger":
		db, err := draftstore.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("wizard drafts stored in badger", "path", cfg.BadgerPath)
		return draftstore.NewBadgerStore(db, cfg.DraftTTL), closeBadger(db), nil
	case "dynamodb":
		if deps.Dynamo == nil {
			return nil, nil, fmt.Errorf("bootstrap: dynamodb draft store selected without a client")
		}
		logger.Info("wizard drafts stored in dynamodb", "table", cfg.DraftsTable)
		return draftstore.NewDynamoStore(deps.Dynamo, cfg.DraftsTable, cfg.DraftTTL), noop, nil
	case "memory":
		logger.Warn("wizard drafts stored in process memory; drafts are lost on restart")
		return draftstore.NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown draft store %q", cfg.DraftStore)
	}
}

func closeBadger(db *badger.DB) func() error {
	return func() error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("bootstrap: close badger: %w", err)
		}
		return nil
	}
}
