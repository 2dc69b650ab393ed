package model

import "time"

// ComplianceFlag is one actionable issue raised by a compliance audit.
type ComplianceFlag struct {
	Code          string   `json:"code"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ImpactPercent *float64 `json:"impact_percent,omitempty"`
}

// LandDeadlineCheck is the outcome of the five-year undeveloped-land rule.
type LandDeadlineCheck struct {
	Applicable    bool       `json:"applicable"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	DaysRemaining *int       `json:"days_remaining,omitempty"`
	Flagged       bool       `json:"flagged"`
}

// ForeignAuthorizationCheck is the outcome of the foreign-buyer rule.
type ForeignAuthorizationCheck struct {
	Required     bool    `json:"required"`
	Satisfied    bool    `json:"satisfied"`
	Nationality  string  `json:"nationality,omitempty"`
	DelayMonths  int     `json:"delay_months,omitempty"`
	EstimatedFee float64 `json:"estimated_fee,omitempty"`
}

// TaxGateCheck is the outcome of the tax clearance gate.
type TaxGateCheck struct {
	DocumentPresent bool `json:"document_present"`
	QRVerified      bool `json:"qr_verified"`
	HighRisk        bool `json:"high_risk"`
}

// SeismicCheck is the outcome of the seismic code review.
type SeismicCheck struct {
	Applicable       bool  `json:"applicable"`
	PreCode          bool  `json:"pre_code"`
	SeismicChaining  *bool `json:"seismic_chaining,omitempty"`
	RPS2000Compliant bool  `json:"rps2000_compliant"`
	RPS2011Compliant bool  `json:"rps2011_compliant"`
	PenaltyPercent   int   `json:"penalty_percent"`
}

// ComplianceResult is the computed compliance snapshot of a property.
type ComplianceResult struct {
	PropertyID           string                    `json:"property_id"`
	Status               ComplianceStatus          `json:"status"`
	LandDeadline         LandDeadlineCheck         `json:"land_deadline"`
	ForeignAuthorization ForeignAuthorizationCheck `json:"foreign_authorization"`
	TaxGate              TaxGateCheck              `json:"tax_gate"`
	Seismic              SeismicCheck              `json:"seismic"`
	ExpiredDocuments     []string                  `json:"expired_documents,omitempty"`
	MissingDocuments     []DocumentType            `json:"missing_documents,omitempty"`
	Flags                []ComplianceFlag          `json:"flags"`
	Recommendations      []string                  `json:"recommendations"`
	AuditedAt            time.Time                 `json:"audited_at"`
}
