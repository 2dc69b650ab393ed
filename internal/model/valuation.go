package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentCategory groups adjustments by the rule family that produced them.
type AdjustmentCategory string

const (
	CategoryStructural     AdjustmentCategory = "structural"
	CategoryCompliance     AdjustmentCategory = "compliance"
	CategoryInfrastructure AdjustmentCategory = "infrastructure"
)

// Adjustment is one named change applied to a base value.
type Adjustment struct {
	Factor      string             `json:"factor"`
	Category    AdjustmentCategory `json:"category"`
	Description string             `json:"description"`
	Percent     float64            `json:"percent"` // signed, e.g. -15 for -15%
	Impact      float64            `json:"impact"`  // signed currency amount
}

// ValuationResult is the output of a forensic valuation.
type ValuationResult struct {
	PropertyID      string       `json:"property_id"`
	BaseValue       float64      `json:"base_value"`
	BaseEstimated   bool         `json:"base_estimated"`
	ForensicValue   float64      `json:"forensic_value"`
	Adjustments     []Adjustment `json:"adjustments"`
	ZoningPotential *float64     `json:"zoning_potential,omitempty"`
	BuildableArea   *float64     `json:"buildable_area,omitempty"`
	MaxUnits        *int         `json:"max_units,omitempty"`
	AlphaValue      *float64     `json:"alpha_value,omitempty"`
	AlphaPercent    *float64     `json:"alpha_percent,omitempty"`
	RiskScore       float64      `json:"risk_score"`
	RiskGrade       RiskGrade    `json:"risk_grade"`
	Confidence      int          `json:"confidence"`
	Resilience      *int         `json:"resilience,omitempty"`
}

// ValuationSnapshot holds the valuation fields a caller persists back onto
// the property record.
type ValuationSnapshot struct {
	ForensicPrice   float64   `json:"forensic_price"`
	ZoningPotential *float64  `json:"zoning_potential,omitempty"`
	RiskGrade       RiskGrade `json:"risk_grade"`
	AlphaScore      *float64  `json:"alpha_score,omitempty"`
	ValuedAt        time.Time `json:"valued_at"`
}

// Apply copies the snapshot onto p.
func (s ValuationSnapshot) Apply(p *Property) {
	v := s.ForensicPrice
	p.ForensicPrice = &v
	p.ZoningPotential = s.ZoningPotential
	p.RiskGrade = s.RiskGrade
	p.AlphaScore = s.AlphaScore
	p.UpdatedAt = s.ValuedAt
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
