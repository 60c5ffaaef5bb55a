package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	s3adapter "github.com/couchcryptid/zarr-catalog-etl/internal/adapter/s3"
	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
	"github.com/couchcryptid/zarr-catalog-etl/internal/config"
	"github.com/couchcryptid/zarr-catalog-etl/internal/observability"
	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

type appContext struct {
	catalogFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newAppContext(catalogFlag *string) *appContext {
	return &appContext{catalogFlag: catalogFlag}
}

func (a *appContext) ensureConfig() (*config.Config, error) {
	a.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			a.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if a.catalogFlag != nil && strings.TrimSpace(*a.catalogFlag) != "" {
			cfg.Catalog = strings.TrimSpace(*a.catalogFlag)
		}
		a.config = cfg
		a.logger = observability.NewLogger(cfg)
	})
	return a.config, a.configErr
}

// newStore routes plain paths to the host filesystem, http(s) URLs to a
// read-only client, and s3:// URIs to the AWS SDK.
func (a *appContext) newStore(ctx context.Context) (*storage.Router, error) {
	cfg := a.config
	client, err := s3adapter.NewClient(ctx, s3adapter.Options{
		Region:         cfg.AWSRegion,
		Endpoint:       cfg.S3Endpoint,
		ForcePathStyle: cfg.S3ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}

	web := storage.NewHTTPStore(cfg.HTTPTimeout)
	return storage.NewRouter(storage.NewOSStore()).
		Handle("s3", s3adapter.New(client, a.logger)).
		Handle("http", web).
		Handle("https", web), nil
}

// definitions returns the built-in catalogs layered with CATALOG_DEFINITIONS_FILE.
func (a *appContext) definitions(ctx context.Context, store storage.Store) (map[string]catalog.Definition, error) {
	defs := catalog.Builtins()
	if a.config.DefinitionsFile == "" {
		return defs, nil
	}
	data, err := store.Read(ctx, a.config.DefinitionsFile)
	if err != nil {
		return nil, fmt.Errorf("read CATALOG_DEFINITIONS_FILE: %w", err)
	}
	return catalog.LoadDefinitions(data, defs)
}

// definition resolves the selected catalog with environment overrides applied.
func (a *appContext) definition(ctx context.Context, store storage.Store) (catalog.Definition, error) {
	defs, err := a.definitions(ctx, store)
	if err != nil {
		return catalog.Definition{}, err
	}
	return resolveDefinition(a.config, defs)
}

func resolveDefinition(cfg *config.Config, defs map[string]catalog.Definition) (catalog.Definition, error) {
	def, ok := defs[cfg.Catalog]
	if !ok {
		return catalog.Definition{}, fmt.Errorf("unknown catalog %q (available: %s)",
			cfg.Catalog, strings.Join(catalog.Keys(defs), ", "))
	}
	if cfg.OutputLocation != "" {
		def.OutputLocation = cfg.OutputLocation
	}
	if cfg.PublicURLSet {
		def.PublicURL = cfg.PublicURL
	}
	if err := def.Validate(); err != nil {
		return catalog.Definition{}, err
	}
	return def, nil
}
