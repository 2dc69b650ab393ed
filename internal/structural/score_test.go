package structural

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

func villa(year int, chaining *bool) *model.Property {
	return &model.Property{
		ID:          "p1",
		AssetType:   model.AssetVilla,
		YearBuilt:   model.Int(year),
		MarketPrice: model.Float(1_000_000),
		Structural:  model.StructuralHealthScore{SeismicChaining: chaining},
	}
}

func TestScore_SeismicGap(t *testing.T) {
	p := villa(2015, model.Bool(false))

	adj := Score(p, BaseValue(p))
	require.Len(t, adj, 1)
	assert.Equal(t, FactorSeismic, adj[0].Factor)
	assert.Equal(t, model.CategoryStructural, adj[0].Category)
	assert.Equal(t, -15.0, adj[0].Percent)
	assert.InDelta(t, -150_000, adj[0].Impact, 0.001)
}

func TestScore_GapWinsOverCodeBonus(t *testing.T) {
	p := villa(2015, model.Bool(false))
	p.Structural.RPS2011Compliant = true

	adj := Score(p, 1_000_000)
	require.Len(t, adj, 1)
	assert.Equal(t, -15.0, adj[0].Percent)
}

func TestScore_CodeBonus(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		chaining *bool
	}{
		{"retrofitted pre-code", 2010, model.Bool(true)},
		{"unknown chaining", 2010, nil},
		{"post-code", 2024, model.Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := villa(tt.year, tt.chaining)
			p.Structural.RPS2011Compliant = true
			adj := Score(p, 1_000_000)
			require.Len(t, adj, 1)
			assert.Equal(t, 3.0, adj[0].Percent)
			assert.InDelta(t, 30_000, adj[0].Impact, 0.001)
		})
	}
}

func TestScore_StackingRules(t *testing.T) {
	p := villa(2015, model.Bool(false))
	p.Structural.HumidityScore = model.Float(8)
	p.Structural.RoofRemainingYears = model.Float(2)
	p.Structural.FoundationDepthM = model.Float(1.0)

	adj := Score(p, 2_000_000)
	require.Len(t, adj, 4)

	byFactor := make(map[string]model.Adjustment)
	for _, a := range adj {
		byFactor[a.Factor] = a
	}
	assert.InDelta(t, -300_000, byFactor[FactorSeismic].Impact, 0.001)
	assert.InDelta(t, -160_000, byFactor[FactorHumidity].Impact, 0.001)
	assert.InDelta(t, -100_000, byFactor[FactorRoof].Impact, 0.001)
	assert.InDelta(t, -120_000, byFactor[FactorFoundation].Impact, 0.001)
}

func TestScore_Thresholds(t *testing.T) {
	p := villa(2024, nil)
	p.Structural.HumidityScore = model.Float(7)
	p.Structural.RoofRemainingYears = model.Float(5)
	p.Structural.FoundationDepthM = model.Float(1.5)

	assert.Empty(t, Score(p, 1_000_000), "boundary values do not trigger")
}

func TestScore_LandExcluded(t *testing.T) {
	p := villa(1990, model.Bool(false))
	p.AssetType = model.AssetLand
	p.Structural.HumidityScore = model.Float(10)
	p.Structural.RoofRemainingYears = model.Float(0)
	p.Structural.FoundationDepthM = model.Float(0.2)
	p.Structural.RPS2011Compliant = true

	assert.Empty(t, Score(p, 1_000_000))
}

func TestScore_NilProperty(t *testing.T) {
	assert.Empty(t, Score(nil, 100))
}

func TestBaseValue(t *testing.T) {
	assert.Equal(t, 1_000_000.0, BaseValue(villa(2000, nil)))
	assert.Equal(t, 0.0, BaseValue(&model.Property{AssetType: model.AssetApartment}))
}

func TestPreCode(t *testing.T) {
	assert.True(t, PreCode(villa(2022, nil)))
	assert.False(t, PreCode(villa(2023, nil)))
	assert.False(t, PreCode(&model.Property{AssetType: model.AssetVilla}))
}
