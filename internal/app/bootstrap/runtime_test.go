package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
	"github.com/wolfman30/medspa-booking-wizard/internal/draftstore"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, false); client != nil {
		t.Fatal("expected nil client without REDIS_ADDR")
	}
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatal("expected client when redis is reachable")
	}
	defer client.Close()

	mr.Close()
	if BuildRedisClient(context.Background(), cfg, logging.New("error"), true) != nil {
		t.Fatal("expected nil client when ping fails")
	}
}

func TestBuildDraftStoreBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer redisClient.Close()

	tests := []struct {
		name    string
		cfg     appconfig.Config
		deps    DraftStoreDeps
		wantErr bool
		check   func(t *testing.T, store any)
	}{
		{
			name: "redis",
			cfg:  appconfig.Config{DraftStore: "redis", DraftTTL: time.Hour},
			deps: DraftStoreDeps{Redis: redisClient},
			check: func(t *testing.T, store any) {
				if _, ok := store.(*draftstore.RedisStore); !ok {
					t.Fatalf("expected RedisStore, got %T", store)
				}
			},
		},
		{name: "redis unavailable", cfg: appconfig.Config{DraftStore: "redis"}, wantErr: true},
		{
			name: "badger in memory",
			cfg:  appconfig.Config{DraftStore: "badger", BadgerPath: ""},
			check: func(t *testing.T, store any) {
				if _, ok := store.(*draftstore.BadgerStore); !ok {
					t.Fatalf("expected BadgerStore, got %T", store)
				}
			},
		},
		{name: "dynamodb without client", cfg: appconfig.Config{DraftStore: "dynamodb", DraftsTable: "drafts"}, wantErr: true},
		{
			name: "memory",
			cfg:  appconfig.Config{DraftStore: "memory"},
			check: func(t *testing.T, store any) {
				if _, ok := store.(*draftstore.MemoryStore); !ok {
					t.Fatalf("expected MemoryStore, got %T", store)
				}
			},
		},
		{name: "unknown", cfg: appconfig.Config{DraftStore: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			store, closeFn, err := BuildDraftStore(&cfg, tt.deps, logging.New("error"))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer closeFn()

			tt.check(t, store)
			ctx := context.Background()
			if err := store.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if v, found, err := store.Get(ctx, "k"); err != nil || !found || v != "v" {
				t.Fatalf("unexpected get %q found=%v err=%v", v, found, err)
			}
		})
	}
}

func TestBuildDraftStoreRequiresConfig(t *testing.T) {
	if _, _, err := BuildDraftStore(nil, DraftStoreDeps{}, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
