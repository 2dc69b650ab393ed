package valuation

import (
	"math"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

const (
	riskDeadline      = 30.0
	riskTaxGate       = 20.0
	riskAuthorization = 10.0
	riskVerifiedBonus = 15.0
)

var gradeThresholds = []struct {
	max   float64
	grade model.RiskGrade
}{
	{10, model.GradeA},
	{20, model.GradeB},
	{35, model.GradeC},
	{50, model.GradeD},
	{70, model.GradeE},
}

// RiskScore adds the fixed compliance risks to the magnitude of every
// negative non-compliance adjustment and subtracts the verification credit.
// Compliance adjustments are already counted through their fixed risks.
func RiskScore(p *model.Property, adjs []model.Adjustment) float64 {
	var score float64
	if p.DeadlineFlag {
		score += riskDeadline
	}
	if !p.TaxGatePassed {
		score += riskTaxGate
	}
	if p.ForeignAuthorizationRequired {
		score += riskAuthorization
	}
	for _, a := range adjs {
		if a.Category != model.CategoryCompliance && a.Percent < 0 {
			score += math.Abs(a.Percent)
		}
	}
	if p.Verified {
		score -= riskVerifiedBonus
	}
	return score
}

// Grade maps a risk score to a letter: ≤10 A, ≤20 B, ≤35 C, ≤50 D, ≤70 E,
// else F.
func Grade(score float64) model.RiskGrade {
	for _, t := range gradeThresholds {
		if score <= t.max {
			return t.grade
		}
	}
	return model.GradeF
}

// Confidence scores how much of the valuation rests on observed data.
func Confidence(p *model.Property) int {
	c := 40
	if _, ok := p.Market(); ok {
		c += 15
	}
	if p.Structural.OverallScore != nil {
		c += 15
	}
	if p.Verified {
		c += 20
	}
	if p.DistanceToTransitKm != nil {
		c += 5
	}
	if p.DistanceToStadiumKm != nil {
		c += 5
	}
	return min(c, 100)
}
