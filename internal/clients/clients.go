// clients собирает зависимости процесса из конфигурации:
// хранилище токенов, API-клиент, ресурсы каталога и сессию.
package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/cache"
	"github.com/pribylovaa/dog-directory/internal/config"
	"github.com/pribylovaa/dog-directory/internal/directory"
	"github.com/pribylovaa/dog-directory/internal/session"
)

// Clients агрегирует всё, что нужно командам CLI и шлюзу.
type Clients struct {
	Store     apiclient.CredentialStore
	API       *apiclient.Client
	Directory *directory.Service
	Session   *session.Manager

	closers []func() error
}

// Options — необязательные зависимости.
type Options struct {
	// Registerer — куда регистрировать метрики клиента; nil — без метрик.
	Registerer prometheus.Registerer
}

// New создаёт хранилище по store.driver и всё, что строится поверх него.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*Clients, error) {
	const op = "internal/clients/New"

	c := &Clients{}

	store, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("%s: store: %w", op, err)
	}
	c.Store = store

	var metrics *apiclient.Metrics
	if opts.Registerer != nil {
		metrics = apiclient.NewMetrics(opts.Registerer)
	}

	api, err := apiclient.New(store, apiclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Metrics:   metrics,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.API = api

	qc := cache.New(
		cache.WithLoadTimeout(cfg.Timeouts.Service),
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
	)

	c.Directory = directory.New(api, qc, directory.Options{
		DataTTL:   cfg.Cache.DataTTL,
		BreedsTTL: cfg.Cache.BreedsTTL,
	})
	c.Session = session.New(api)

	log.Debug("clients_initialized",
		slog.String("api", cfg.API.BaseURL),
		slog.String("store", cfg.Store.Driver),
	)

	return c, nil
}

func (c *Clients) openStore(ctx context.Context, cfg config.StoreConfig) (apiclient.CredentialStore, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return apiclient.NewMemoryStore(), nil
	case config.StoreFile:
		return apiclient.NewFileStore(cfg.Path)
	case config.StoreRedis:
		rs, err := apiclient.NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rs.Close)
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// Close закрывает открытые соединения.
func (c *Clients) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
