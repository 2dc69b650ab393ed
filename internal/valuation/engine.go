// Package valuation combines the structural, compliance, infrastructure and
// zoning scorers into a single forensic valuation of a property.
package valuation

import (
	"time"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/infrastructure"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/structural"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/zoning"
)

// Compliance adjustment factors.
const (
	FactorLandDeadline         = "land_deadline"
	FactorTaxGate              = "tax_gate"
	FactorForeignAuthorization = "foreign_authorization"
	FactorInfrastructure       = "infrastructure"
)

const (
	deadlinePercent      = -20.0
	taxGatePercent       = -10.0
	authorizationPercent = -5.0

	// AuthorizationCost is the fixed cost deducted when a foreign acquisition
	// authorization is required, on top of AuthorizationBaseShare of base.
	AuthorizationCost      = 200_000.0
	AuthorizationBaseShare = 0.02
)

// Engine values properties against a reference snapshot. The zero value
// uses reference.Default.
type Engine struct {
	Tables *reference.Tables
}

// New returns an engine bound to tables.
func New(tables *reference.Tables) *Engine {
	return &Engine{Tables: tables}
}

func (e *Engine) tables() *reference.Tables {
	if e == nil || e.Tables == nil {
		return reference.Default()
	}
	return e.Tables
}

// BaseValue returns the market price, or the neighborhood tier price times
// the built area (terrain when unbuilt). The second value reports whether
// the base was estimated.
func (e *Engine) BaseValue(p *model.Property) (float64, bool) {
	if m, ok := p.Market(); ok {
		return m, false
	}
	size, ok := p.Size()
	if !ok {
		return 0, true
	}
	return e.tables().PricePerSqm(p.Neighborhood) * size, true
}

// Value computes the forensic valuation of p. zoningInfo overrides the
// table entry for p's zoning code when set. Infrastructure bonuses apply
// only when points are supplied.
func (e *Engine) Value(p *model.Property, zoningInfo *model.ZoningCodeInfo, points []model.InfrastructurePoint) model.ValuationResult {
	tables := e.tables()
	base, estimated := e.BaseValue(p)

	adjs := structural.Score(p, base)
	adjs = append(adjs, compliancePenalties(p, base)...)
	if lat, lon, ok := p.Coordinates(); ok && len(points) > 0 {
		if b := infrastructure.ProximityBonus(lat, lon, points, tables); b.Total != 0 {
			adjs = append(adjs, model.Adjustment{
				Factor:      FactorInfrastructure,
				Category:    model.CategoryInfrastructure,
				Description: infrastructureDescription(b),
				Percent:     model.Round2(b.Percent()),
				Impact:      model.Round2(base * b.Total),
			})
		}
	}

	forensic := base
	for _, a := range adjs {
		forensic += a.Impact
	}
	forensic = max(0, forensic)

	res := model.ValuationResult{
		PropertyID:    p.ID,
		BaseValue:     model.Round2(base),
		BaseEstimated: estimated,
		ForensicValue: model.Round2(forensic),
		Adjustments:   adjs,
	}
	if res.Adjustments == nil {
		res.Adjustments = []model.Adjustment{}
	}

	if pot, ok := e.potential(p, zoningInfo); ok {
		res.ZoningPotential = model.Float(pot.Value)
		res.BuildableArea = model.Float(pot.BuildableArea)
		res.MaxUnits = model.Int(pot.MaxUnits)

		denom := forensic
		if m, ok := p.Market(); ok {
			denom = m
		}
		alpha := pot.Value - denom
		res.AlphaValue = model.Float(model.Round2(alpha))
		if pct, ok := zoning.AlphaPercent(pot.Value, denom); ok {
			res.AlphaPercent = model.Float(model.Round2(pct))
		}
	}

	res.Resilience = infrastructure.Resilience(p, points, tables)
	res.RiskScore = RiskScore(p, adjs)
	res.RiskGrade = Grade(res.RiskScore)
	res.Confidence = Confidence(p)
	return res
}

func (e *Engine) potential(p *model.Property, info *model.ZoningCodeInfo) (zoning.Result, bool) {
	if !p.IsLand() || p.ZoningCode == nil || p.TerrainArea == nil || *p.TerrainArea <= 0 {
		return zoning.Result{}, false
	}
	tables := e.tables()
	if info != nil {
		return zoning.Compute(*p.TerrainArea, *info, tables.PricePerSqm(p.Neighborhood)), true
	}
	market, _ := p.Market()
	res := zoning.Potential(p.TerrainArea, p.ZoningCode, p.Neighborhood, market, tables)
	return res, res.Applied
}

func compliancePenalties(p *model.Property, base float64) []model.Adjustment {
	var out []model.Adjustment
	if p.DeadlineFlag {
		out = append(out, model.Adjustment{
			Factor:      FactorLandDeadline,
			Category:    model.CategoryCompliance,
			Description: "Undeveloped land past its five-year construction deadline",
			Percent:     deadlinePercent,
			Impact:      model.Round2(base * deadlinePercent / 100),
		})
	}
	if !p.TaxGatePassed {
		out = append(out, model.Adjustment{
			Factor:      FactorTaxGate,
			Category:    model.CategoryCompliance,
			Description: "Tax clearance not verified",
			Percent:     taxGatePercent,
			Impact:      model.Round2(base * taxGatePercent / 100),
		})
	}
	if p.ForeignAuthorizationRequired {
		// The label stays at -5% while the deduction is the fixed cost plus a
		// share of base.
		out = append(out, model.Adjustment{
			Factor:      FactorForeignAuthorization,
			Category:    model.CategoryCompliance,
			Description: "Foreign acquisition authorization required",
			Percent:     authorizationPercent,
			Impact:      model.Round2(-(AuthorizationCost + AuthorizationBaseShare*base)),
		})
	}
	return out
}

func infrastructureDescription(b infrastructure.Bonus) string {
	if len(b.Contributions) == 1 {
		return "Proximity to " + b.Contributions[0].Name
	}
	return "Proximity to major infrastructure"
}

// Snapshot returns the fields a caller persists back onto the property.
func Snapshot(res model.ValuationResult, at time.Time) model.ValuationSnapshot {
	return model.ValuationSnapshot{
		ForensicPrice:   res.ForensicValue,
		ZoningPotential: res.ZoningPotential,
		RiskGrade:       res.RiskGrade,
		AlphaScore:      res.AlphaPercent,
		ValuedAt:        at,
	}
}
