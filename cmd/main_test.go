package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/config"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testValuationConfig() config.ValuationConfig {
	return config.ValuationConfig{
		MinAlphaPercent: 20,
		CacheTTLSecs:    60,
		MaxConcurrency:  4,
		Retry:           config.RetryConfig{MaxAttempts: 1},
	}
}

// seedProperties are stored by newTestEnv.
func seedProperties() []*model.Property {
	villa := &model.Property{
		ID:            "villa-1",
		AssetType:     model.AssetVilla,
		YearBuilt:     model.Int(2015),
		MarketPrice:   model.Float(1_000_000),
		TaxGatePassed: true,
	}
	villa.Structural.SeismicChaining = model.Bool(false)

	return []*model.Property{
		villa,
		{
			ID:            "land-hotel",
			AssetType:     model.AssetLand,
			ZoningCode:    model.Zoning(model.ZoneHotel),
			TerrainArea:   model.Float(5_000),
			MarketPrice:   model.Float(10_000_000),
			TaxGatePassed: true,
		},
		{
			ID:            "land-cheap",
			AssetType:     model.AssetLand,
			ZoningCode:    model.Zoning(model.ZoneHotel),
			TerrainArea:   model.Float(5_000),
			MarketPrice:   model.Float(12_000_000),
			TaxGatePassed: true,
		},
		{ID: "broken", AssetType: model.AssetVilla, MarketPrice: model.Float(-1)},
	}
}

// newTestEnv opens a migrated SQLite store in a temp dir and seeds it.
func newTestEnv(t *testing.T) (*appEnv, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "agenz.db")
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))
	_, err = st.SaveProperties(ctx, seedProperties())
	require.NoError(t, err)

	env := newEnv(st, reference.Default(), testValuationConfig())
	t.Cleanup(env.Close)
	return env, dbPath
}

// useSQLiteConfig points the package-level config at dbPath.
func useSQLiteConfig(t *testing.T, dbPath string) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite", SQLitePath: dbPath},
		Log:       config.LogConfig{Level: "info", Format: "json"},
		Valuation: testValuationConfig(),
	}
	t.Cleanup(func() { cfg = prev })
}
