package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
)

var station = model.InfrastructurePoint{
	Name: "Station", Category: model.InfraTransit,
	Latitude: 31.6308, Longitude: -8.0146, RadiusKm: 5, Multiplier: 1.25,
}

func TestProximityBonus_AtPoint(t *testing.T) {
	b := ProximityBonus(station.Latitude, station.Longitude, []model.InfrastructurePoint{station}, reference.Default())
	assert.InDelta(t, 0.075, b.Total, 1e-12)
	assert.InDelta(t, 7.5, b.Percent(), 1e-10)
	require.Len(t, b.Contributions, 1)
	assert.Equal(t, "Station", b.Contributions[0].Name)
	assert.Equal(t, 0.30, b.Contributions[0].Weight)
	assert.Equal(t, 0.0, b.Contributions[0].DistanceKm)
}

func TestProximityBonus_Decay(t *testing.T) {
	// 2.5 km north of the station is half the radius.
	lat := station.Latitude + 2.5/111.19
	b := ProximityBonus(lat, station.Longitude, []model.InfrastructurePoint{station}, reference.Default())
	assert.InDelta(t, 0.0375, b.Total, 1e-4)
}

func TestProximityBonus_OutOfRange(t *testing.T) {
	b := ProximityBonus(station.Latitude+0.1, station.Longitude, []model.InfrastructurePoint{station}, reference.Default())
	assert.Equal(t, 0.0, b.Total)
	assert.Empty(t, b.Contributions)
}

func TestProximityBonus_DiscountAndUnknownCategory(t *testing.T) {
	points := []model.InfrastructurePoint{
		{Name: "Industrial", Category: model.InfraIndustrial, Latitude: 31.6, Longitude: -8.0, RadiusKm: 4, Multiplier: 0.90},
		{Name: "Port", Category: "port", Latitude: 31.6, Longitude: -8.0, RadiusKm: 4, Multiplier: 1.50},
		{Name: "No radius", Category: model.InfraTransit, Latitude: 31.6, Longitude: -8.0, RadiusKm: 0, Multiplier: 2},
	}
	b := ProximityBonus(31.6, -8.0, points, reference.Default())
	// -0.10 × 0.10 + 0.50 × 0.10
	assert.InDelta(t, 0.04, b.Total, 1e-12)
	assert.Len(t, b.Contributions, 2)
}

func TestNearest(t *testing.T) {
	points := reference.DefaultInfrastructure()

	pt, d, ok := Nearest(31.7083, -8.0614, points, model.InfraStadium)
	require.True(t, ok)
	assert.Equal(t, "Grand Stade de Marrakech", pt.Name)
	assert.Equal(t, 0.0, d)

	_, _, ok = Nearest(31.7, -8.0, points, "port")
	assert.False(t, ok)
}

func TestResilience(t *testing.T) {
	tables := reference.Default()
	points := reference.DefaultInfrastructure()

	tests := []struct {
		name string
		p    *model.Property
		want *int
	}{
		{
			name: "villa not scored",
			p:    &model.Property{AssetType: model.AssetVilla},
			want: nil,
		},
		{
			name: "clamped at 100",
			p: &model.Property{
				AssetType: model.AssetApartment, Neighborhood: "Gueliz", ZoningCode: model.Zoning(model.ZoneR4),
				DistanceToStadiumKm: model.Float(3), DistanceToTransitKm: model.Float(2), DistanceToAirportKm: model.Float(5),
			},
			want: model.Int(100),
		},
		{
			name: "medina without distances",
			p:    &model.Property{AssetType: model.AssetApartment, Neighborhood: "Médina"},
			want: model.Int(40),
		},
		{
			name: "stadium mid range",
			p:    &model.Property{AssetType: model.AssetApartment, DistanceToStadiumKm: model.Float(7)},
			want: model.Int(65),
		},
		{
			name: "villa zoning is not multi-unit",
			p:    &model.Property{AssetType: model.AssetApartment, ZoningCode: model.Zoning(model.ZoneVilla)},
			want: model.Int(50),
		},
		{
			name: "distances from coordinates",
			p:    &model.Property{AssetType: model.AssetApartment, Latitude: model.Float(31.7083), Longitude: model.Float(-8.0614)},
			want: model.Int(75),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resilience(tt.p, points, tables)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestResilience_NilTablesUsesDefaults(t *testing.T) {
	p := &model.Property{AssetType: model.AssetApartment, ZoningCode: model.Zoning(model.ZoneR2)}
	got := Resilience(p, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, 60, *got)
}
