package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestParse_Overlay(t *testing.T) {
	doc := `
default_price_per_sqm: 9500
neighborhoods:
  Guéliz: 17000
  Tamansourt: 5000
  Nowhere: 0
zoning:
  - code: hotel
    cos: 0.45
    cus: 1.3
    max_units_per_hectare: 70
    hotel_allowed: true
  - code: R+9
    cos: 0.9
category_weights:
  transit: 0.35
  port: 0.5
infrastructure:
  - name: Tramway Ligne 1
    category: Transit
    latitude: 31.64
    longitude: -8.01
    radius_km: 2
    multiplier: 1.1
  - name: Broken
    category: transit
    radius_km: 0
`
	tables, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 9500.0, tables.DefaultPrice)
	assert.Equal(t, 9500.0, tables.PricePerSqm("unknown place"))
	assert.Equal(t, 17_000.0, tables.PricePerSqm("gueliz"))
	assert.Equal(t, 5_000.0, tables.PricePerSqm("tamansourt"))
	_, hasNowhere := tables.NeighborhoodPrices["nowhere"]
	assert.False(t, hasNowhere)

	hotel, ok := tables.ZoningInfo(model.ZoneHotel)
	require.True(t, ok)
	assert.Equal(t, model.ZoneHotel, hotel.Code)
	assert.Equal(t, 0.45, hotel.COS)
	assert.Len(t, tables.Zoning, 6, "unknown zoning code must be skipped")

	assert.Equal(t, 0.35, tables.CategoryWeight(model.InfraTransit))
	assert.Len(t, tables.CategoryWeights, 5)

	require.Len(t, tables.Infrastructure, len(DefaultInfrastructure())+1)
	added := tables.Infrastructure[len(tables.Infrastructure)-1]
	assert.Equal(t, "Tramway Ligne 1", added.Name)
	assert.Equal(t, model.InfraTransit, added.Category)
}

func TestParse_ReplaceInfrastructure(t *testing.T) {
	doc := `
replace_infrastructure: true
infrastructure:
  - name: Only
    category: airport
    latitude: 31.6
    longitude: -8.0
    radius_km: 3
    multiplier: 1.05
`
	tables, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, tables.Infrastructure, 1)
	assert.Equal(t, "Only", tables.Infrastructure[0].Name)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("zoning: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_price_per_sqm: 11000\n"), 0o644))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 11_000.0, tables.DefaultPrice)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func writeInfraShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "infra.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NAME", 60),
		shp.StringField("CATEGORY", 20),
		shp.StringField("STATUS", 20),
		shp.NumberField("YEAR", 4),
		shp.FloatField("RADIUS_KM", 8, 2),
		shp.FloatField("MULTIPLIER", 6, 3),
	}))

	rows := []struct {
		x, y   float64
		name   string
		cat    string
		status string
		year   int
		radius float64
		mult   float64
	}{
		{-8.0614, 31.7083, "Grand Stade", "stadium", "under_construction", 2029, 10, 1.25},
		{-8.0146, 31.6308, "Gare", "transit", "operational", 2029, 5, 1.2},
		{-8.0, 31.6, "No Radius", "highway", "planned", 2030, 0, 1.1},
	}
	for _, r := range rows {
		idx := int(w.Write(&shp.Point{X: r.x, Y: r.y}))
		require.NoError(t, w.WriteAttribute(idx, 0, r.name))
		require.NoError(t, w.WriteAttribute(idx, 1, r.cat))
		require.NoError(t, w.WriteAttribute(idx, 2, r.status))
		require.NoError(t, w.WriteAttribute(idx, 3, r.year))
		require.NoError(t, w.WriteAttribute(idx, 4, r.radius))
		require.NoError(t, w.WriteAttribute(idx, 5, r.mult))
	}
	w.Close()
	return path
}

func TestLoadInfrastructureShapefile(t *testing.T) {
	path := writeInfraShapefile(t)

	points, err := LoadInfrastructureShapefile(path)
	require.NoError(t, err)
	require.Len(t, points, 2, "row without radius is skipped")

	stade := points[0]
	assert.Equal(t, "Grand Stade", stade.Name)
	assert.Equal(t, model.InfraStadium, stade.Category)
	assert.InDelta(t, 31.7083, stade.Latitude, 1e-9)
	assert.InDelta(t, -8.0614, stade.Longitude, 1e-9)
	assert.Equal(t, "under_construction", stade.Status)
	assert.Equal(t, 2029, stade.CompletionYear)
	assert.InDelta(t, 10.0, stade.RadiusKm, 1e-9)
	assert.InDelta(t, 1.25, stade.Multiplier, 1e-9)

	assert.Equal(t, model.InfraTransit, points[1].Category)
}

func TestLoadInfrastructureShapefile_Missing(t *testing.T) {
	_, err := LoadInfrastructureShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}
