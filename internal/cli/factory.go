package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/seqflow/internal/config"
	"github.com/aretw0/seqflow/pkg/adapters/file"
	"github.com/aretw0/seqflow/pkg/adapters/loam"
	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/adapters/redis"
	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/ports"
)

// newStore creates the diagram store selected by cfg.Store.Backend. Redis
// also yields a distributed locker and a close func.
func newStore(cfg config.Config, logger *slog.Logger) (ports.DiagramStore, ports.DistributedLocker, func() error, error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
			redis.WithLogger(logger),
		)
		locker := redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		logger.Debug("diagram store ready", "backend", "redis", "addr", cfg.Redis.Addr)
		return store, locker, store.Close, nil

	case config.StoreFile:
		format, err := codec.ParseFormat(cfg.Store.Format)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid store format: %w", err)
		}
		dir := cfg.Store.Dir
		if dir == "" {
			dir = file.DefaultDir
		}
		logger.Debug("diagram store ready", "backend", "file", "dir", dir, "format", format)
		return file.New(dir, file.WithFormat(format)), nil, nil, nil

	case config.StoreMemory, "":
		return memory.NewStore(), nil, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// newLibrary opens the read-only document library, or returns nil when no
// library directory is configured.
func newLibrary(cfg config.Config) (ports.DiagramSource, error) {
	if cfg.Library == "" {
		return nil, nil
	}
	info, err := os.Stat(cfg.Library)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", cfg.Library, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library %s is not a directory", cfg.Library)
	}
	src, err := loam.Open(cfg.Library)
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", cfg.Library, err)
	}
	return src, nil
}
