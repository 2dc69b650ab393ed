package opportunity

import "github.com/indigoandlavender/agenz2-willow-morocco/internal/model"

const gapThresholdPercent = 10.0

// MarketGap compares an asking price to a forensic price.
type MarketGap struct {
	ForensicPrice float64          `json:"forensic_price"`
	MarketPrice   float64          `json:"market_price"`
	GapValue      float64          `json:"gap_value"`
	GapPercent    float64          `json:"gap_percent"`
	Verdict       model.GapVerdict `json:"verdict"`
}

// CalculateMarketGap returns market - forensic and its share of forensic.
// Above +10% is overpriced, below -10% underpriced. A non-positive forensic
// price yields a 0% gap.
func CalculateMarketGap(forensic, market float64) MarketGap {
	gap := market - forensic
	var pct float64
	if forensic > 0 {
		pct = gap / forensic * 100
	}

	verdict := model.VerdictFair
	switch {
	case pct > gapThresholdPercent:
		verdict = model.VerdictOverpriced
	case pct < -gapThresholdPercent:
		verdict = model.VerdictUnderpriced
	}

	return MarketGap{
		ForensicPrice: model.Round2(forensic),
		MarketPrice:   model.Round2(market),
		GapValue:      model.Round2(gap),
		GapPercent:    model.Round2(pct),
		Verdict:       verdict,
	}
}
