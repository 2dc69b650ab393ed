// Package structural derives value adjustments from a property's structural
// health record and construction year.
package structural

import "github.com/indigoandlavender/agenz2-willow-morocco/internal/model"

// SeismicCodeYear is the first construction year covered by the current
// seismic code. Buildings from earlier years are pre-code.
const SeismicCodeYear = 2023

// Adjustment factor keys.
const (
	FactorSeismic    = "seismic"
	FactorHumidity   = "humidity"
	FactorRoof       = "roof"
	FactorFoundation = "foundation"
)

// Rule thresholds and percentages.
const (
	seismicGapPercent   = -15.0
	codeBonusPercent    = 3.0
	humidityThreshold   = 7.0
	humidityPercent     = -8.0
	roofMinYears        = 5.0
	roofPercent         = -5.0
	foundationMinDepthM = 1.5
	foundationPercent   = -6.0
)

// BaseValue returns the default base for Score: the market price, or 0 when
// the property has none.
func BaseValue(p *model.Property) float64 {
	v, _ := p.Market()
	return v
}

// PreCode reports whether the property was built before the current seismic
// code. Unknown construction years are not pre-code.
func PreCode(p *model.Property) bool {
	return p.YearBuilt != nil && *p.YearBuilt < SeismicCodeYear
}

// Score returns the structural adjustments for p against base. Land never
// receives structural adjustments. Rules stack, except the seismic gap and
// the code-compliance bonus which share a factor and are either/or with the
// gap evaluated first.
func Score(p *model.Property, base float64) []model.Adjustment {
	if p == nil || p.IsLand() {
		return nil
	}
	s := p.Structural
	var out []model.Adjustment

	switch {
	case PreCode(p) && s.SeismicChaining != nil && !*s.SeismicChaining:
		out = append(out, adjustment(FactorSeismic, "Pre-code seismic gap: built before 2023 without seismic chaining", seismicGapPercent, base))
	case s.RPS2011Compliant:
		out = append(out, adjustment(FactorSeismic, "Compliant with the RPS 2011 seismic code", codeBonusPercent, base))
	}

	if s.HumidityScore != nil && *s.HumidityScore > humidityThreshold {
		out = append(out, adjustment(FactorHumidity, "High humidity / moisture risk", humidityPercent, base))
	}
	if s.RoofRemainingYears != nil && *s.RoofRemainingYears < roofMinYears {
		out = append(out, adjustment(FactorRoof, "Roof replacement imminent", roofPercent, base))
	}
	if s.FoundationDepthM != nil && *s.FoundationDepthM < foundationMinDepthM {
		out = append(out, adjustment(FactorFoundation, "Shallow foundation / seismic risk", foundationPercent, base))
	}

	return out
}

func adjustment(factor, desc string, percent, base float64) model.Adjustment {
	return model.Adjustment{
		Factor:      factor,
		Category:    model.CategoryStructural,
		Description: desc,
		Percent:     percent,
		Impact:      model.Round2(base * percent / 100),
	}
}
