package infrastructure

import (
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
)

const (
	resilienceBase = 50

	stadiumNearKm  = 5.0
	stadiumNear    = 25
	stadiumFarKm   = 10.0
	stadiumFar     = 15
	transitNearKm  = 3.0
	transitNear    = 15
	airportNearKm  = 8.0
	airportNear    = 10
	historicMalus  = 10
	multiUnitBonus = 10
)

// Resilience scores an apartment's short-term demand resilience from 0 to
// 100. Stored distances on the property take precedence over distances to
// the nearest point of each category. It returns nil for other asset types.
func Resilience(p *model.Property, points []model.InfrastructurePoint, tables *reference.Tables) *int {
	if p == nil || p.AssetType != model.AssetApartment {
		return nil
	}
	if tables == nil {
		tables = reference.Default()
	}

	score := resilienceBase
	if d, ok := distance(p, p.DistanceToStadiumKm, points, model.InfraStadium); ok {
		switch {
		case d < stadiumNearKm:
			score += stadiumNear
		case d < stadiumFarKm:
			score += stadiumFar
		}
	}
	if d, ok := distance(p, p.DistanceToTransitKm, points, model.InfraTransit); ok && d < transitNearKm {
		score += transitNear
	}
	if d, ok := distance(p, p.DistanceToAirportKm, points, model.InfraAirport); ok && d < airportNearKm {
		score += airportNear
	}
	if reference.NormalizeNeighborhood(p.Neighborhood) == reference.HistoricDistrict {
		score -= historicMalus
	}
	if p.ZoningCode != nil {
		if info, ok := tables.ZoningInfo(*p.ZoningCode); ok && info.MultiUnitAllowed {
			score += multiUnitBonus
		}
	}

	score = max(0, min(100, score))
	return &score
}

func distance(p *model.Property, stored *float64, points []model.InfrastructurePoint, cat model.InfrastructureCategory) (float64, bool) {
	if stored != nil {
		return *stored, true
	}
	lat, lon, ok := p.Coordinates()
	if !ok {
		return 0, false
	}
	_, d, ok := Nearest(lat, lon, points, cat)
	return d, ok
}
