package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opsdeck/sopgraph/internal/config"
	"github.com/opsdeck/sopgraph/pkg/cache"
	"github.com/opsdeck/sopgraph/pkg/observability"
	"github.com/opsdeck/sopgraph/pkg/store"
)

// OpenStore builds the procedure store named by the configuration.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		return store.NewFileStore(cfg.Dir)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// OpenCache builds the artifact cache named by the configuration.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNull:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewKeyer builds the artifact key scheme, scoped by the configured prefix
// when one is set.
func NewKeyer(cfg config.CacheConfig) cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if cfg.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.KeyPrefix)
	}
	return keyer
}

// logHooks forwards render and cache events to the server log at debug
// level. Registered once by Run.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRenderStart(_ context.Context, format string, nodeCount int) {
	h.logger.Debug("render start", "format", format, "nodes", nodeCount)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "took", d, "err", err)
		return
	}
	h.logger.Debug("render done", "format", format, "took", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// Run assembles the store, cache and janitor from the configuration and
// serves HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	hooks := logHooks{logger: logger}
	observability.SetRenderHooks(hooks)
	observability.SetCacheHooks(hooks)

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ca, err := OpenCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ca.Close()

	srv := New(Deps{
		Store:  st,
		Cache:  ca,
		Keyer:  NewKeyer(cfg.Cache),
		Logger: logger,
	})

	if cfg.Cache.Cleanup != "" {
		janitor, err := NewJanitor(ca, cfg.Cache.Cleanup, logger)
		if err != nil {
			return err
		}
		janitor.Start()
		defer janitor.Stop()
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
