// Package zoning computes the maximum legally buildable value of a parcel
// under its zoning code.
package zoning

import (
	"math"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
)

const (
	// UnitSizeSqm is the floor area assumed per dwelling unit.
	UnitSizeSqm = 80.0
	// DevelopmentDiscount is the share of gross buildable value kept after
	// development costs.
	DevelopmentDiscount = 0.70

	sqmPerHectare = 10_000.0
)

// Result is the zoning potential of a parcel. When Applied is false no
// uplift was computed and Value carries the market price.
type Result struct {
	Applied       bool             `json:"applied"`
	Code          model.ZoningCode `json:"code,omitempty"`
	BuildableArea float64          `json:"buildable_area"`
	MaxUnits      int              `json:"max_units"`
	PricePerSqm   float64          `json:"price_per_sqm"`
	Value         float64          `json:"value"`
}

// Potential computes the buildable value of terrain under code. A missing
// terrain, a missing code or a code absent from tables falls back to
// marketPrice.
func Potential(terrain *float64, code *model.ZoningCode, neighborhood string, marketPrice float64, tables *reference.Tables) Result {
	fallback := Result{Value: marketPrice}
	if terrain == nil || *terrain <= 0 || code == nil || tables == nil {
		return fallback
	}
	info, ok := tables.ZoningInfo(*code)
	if !ok {
		return fallback
	}

	return Compute(*terrain, info, tables.PricePerSqm(neighborhood))
}

// Compute applies info's coefficients to a positive terrain area at the
// given price per square meter.
func Compute(terrain float64, info model.ZoningCodeInfo, pricePerSqm float64) Result {
	buildable := terrain * info.COS
	densityCap := math.Floor(info.MaxUnitsPerHectare * terrain / sqmPerHectare)
	sizeCap := math.Floor(buildable / UnitSizeSqm)

	return Result{
		Applied:       true,
		Code:          info.Code,
		BuildableArea: model.Round2(buildable),
		MaxUnits:      int(math.Min(densityCap, sizeCap)),
		PricePerSqm:   pricePerSqm,
		Value:         model.Round2(buildable * pricePerSqm * DevelopmentDiscount),
	}
}

// CalculateZoningPotential applies Potential to a property's terrain,
// zoning code, neighborhood and market price.
func CalculateZoningPotential(p *model.Property, tables *reference.Tables) Result {
	market, _ := p.Market()
	return Potential(p.TerrainArea, p.ZoningCode, p.Neighborhood, market, tables)
}

// AlphaPercent returns (potential - price) / price × 100, and false when
// price is not positive.
func AlphaPercent(potential, price float64) (float64, bool) {
	if price <= 0 {
		return 0, false
	}
	return (potential - price) / price * 100, true
}
