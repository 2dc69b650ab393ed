// Package infrastructure scores a property's proximity to infrastructure
// that moves nearby values: transit, stadiums, highways, airports and
// industrial zones.
package infrastructure

import (
	"math"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/geo"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

// Weights supplies the per-category weight applied to a point's bonus.
type Weights interface {
	CategoryWeight(model.InfrastructureCategory) float64
}

// Contribution is the bonus one point adds.
type Contribution struct {
	Name       string                       `json:"name"`
	Category   model.InfrastructureCategory `json:"category"`
	DistanceKm float64                      `json:"distance_km"`
	Weight     float64                      `json:"weight"`
	Bonus      float64                      `json:"bonus"`
}

// Bonus is the summed proximity bonus as a fraction (0.075 is 7.5%).
type Bonus struct {
	Total         float64        `json:"total"`
	Contributions []Contribution `json:"contributions,omitempty"`
}

// Percent returns the total as a percentage.
func (b Bonus) Percent() float64 {
	return b.Total * 100
}

// ProximityBonus sums (multiplier - 1) × (1 - d/r) × weight over every point
// whose radius reaches (lat, lon). Points out of range contribute nothing.
func ProximityBonus(lat, lon float64, points []model.InfrastructurePoint, weights Weights) Bonus {
	var b Bonus
	for _, pt := range points {
		if pt.RadiusKm <= 0 {
			continue
		}
		if !geo.Within(geo.SearchBounds(pt.Latitude, pt.Longitude, pt.RadiusKm), lat, lon) {
			continue
		}
		d := geo.DistanceKm(lat, lon, pt.Latitude, pt.Longitude)
		if d > pt.RadiusKm {
			continue
		}
		w := weights.CategoryWeight(pt.Category)
		bonus := (pt.Multiplier - 1) * (1 - d/pt.RadiusKm) * w
		b.Total += bonus
		b.Contributions = append(b.Contributions, Contribution{
			Name:       pt.Name,
			Category:   pt.Category,
			DistanceKm: d,
			Weight:     w,
			Bonus:      bonus,
		})
	}
	return b
}

// Nearest returns the closest point of the given category and its distance.
// The final value is false when no point of that category exists.
func Nearest(lat, lon float64, points []model.InfrastructurePoint, category model.InfrastructureCategory) (model.InfrastructurePoint, float64, bool) {
	var (
		best  model.InfrastructurePoint
		bestD = math.Inf(1)
		found bool
	)
	for _, pt := range points {
		if pt.Category != category {
			continue
		}
		if d := geo.DistanceKm(lat, lon, pt.Latitude, pt.Longitude); d < bestD {
			best, bestD, found = pt, d, true
		}
	}
	if !found {
		return model.InfrastructurePoint{}, 0, false
	}
	return best, bestD, true
}
