package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/cache"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/config"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/opportunity"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/valuation"
)

// appEnv bundles the collaborators every command works with.
type appEnv struct {
	Store  store.Store
	Cache  *cache.Store
	Tables *reference.Tables
	Engine *valuation.Engine
	Ranker *opportunity.Ranker
	Config config.ValuationConfig
	Now    func() time.Time
}

// Close releases the store.
func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadTables starts from the built-in tables and applies the configured
// overrides.
func loadTables(rc config.ReferenceConfig) (*reference.Tables, error) {
	tables := reference.Default()
	if rc.TablesPath != "" {
		t, err := reference.LoadFile(rc.TablesPath)
		if err != nil {
			return nil, err
		}
		tables = t
	}
	if rc.InfrastructureShapefile != "" {
		points, err := reference.LoadInfrastructureShapefile(rc.InfrastructureShapefile)
		if err != nil {
			return nil, err
		}
		tables.Infrastructure = points
	}
	zap.L().Debug("reference tables loaded",
		zap.Int("zoning_codes", len(tables.Zoning)),
		zap.Int("neighborhoods", len(tables.NeighborhoodPrices)),
		zap.Int("infrastructure_points", len(tables.Infrastructure)),
	)
	return tables, nil
}

// newEnv wires an environment around an opened store.
func newEnv(st store.Store, tables *reference.Tables, vc config.ValuationConfig) *appEnv {
	c := cache.New(st, cache.SystemClock, vc.CacheTTL())
	return &appEnv{
		Store:  c,
		Cache:  c,
		Tables: tables,
		Engine: valuation.New(tables),
		Ranker: &opportunity.Ranker{Tables: tables, Concurrency: vc.MaxConcurrency},
		Config: vc,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func initEnv(ctx context.Context) (*appEnv, error) {
	tables, err := loadTables(cfg.Reference)
	if err != nil {
		return nil, eris.Wrap(err, "load reference tables")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return newEnv(st, tables, cfg.Valuation), nil
}
