package model

import "time"

// StructuralHealthScore is the structural assessment owned by a property.
// Nil fields are unknown.
type StructuralHealthScore struct {
	SeismicChaining    *bool    `json:"seismic_chaining,omitempty"`
	RPS2000Compliant   bool     `json:"rps2000_compliant"`
	RPS2011Compliant   bool     `json:"rps2011_compliant"`
	HumidityScore      *float64 `json:"humidity_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	FoundationDepthM   *float64 `json:"foundation_depth_m,omitempty" validate:"omitempty,gte=0"`
	RoofRemainingYears *float64 `json:"roof_remaining_years,omitempty" validate:"omitempty,gte=0"`
	OverallScore       *float64 `json:"overall_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Property is an audited Marrakech property record.
type Property struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	AssetType    AssetType `json:"asset_type" validate:"required,asset_type"`
	Address      string    `json:"address,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`

	TerrainArea *float64 `json:"terrain_area,omitempty" validate:"omitempty,gt=0"`
	BuiltArea   *float64 `json:"built_area,omitempty" validate:"omitempty,gt=0"`
	Floors      *int     `json:"floors,omitempty" validate:"omitempty,gte=0"`
	Rooms       *int     `json:"rooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms   *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	YearBuilt   *int     `json:"year_built,omitempty" validate:"omitempty,gte=1800,lte=2100"`

	MarketPrice *float64 `json:"market_price,omitempty" validate:"omitempty,gte=0"`
	PricePerSqm *float64 `json:"price_per_sqm,omitempty"`

	ZoningCode *ZoningCode           `json:"zoning_code,omitempty" validate:"omitempty,zoning_code"`
	Structural StructuralHealthScore `json:"structural"`

	DistanceToTransitKm *float64 `json:"distance_to_transit_km,omitempty" validate:"omitempty,gte=0"`
	DistanceToStadiumKm *float64 `json:"distance_to_stadium_km,omitempty" validate:"omitempty,gte=0"`
	DistanceToAirportKm *float64 `json:"distance_to_airport_km,omitempty" validate:"omitempty,gte=0"`

	DeadlineFlag                 bool `json:"deadline_flag"`
	ForeignAuthorizationRequired bool `json:"foreign_authorization_required"`
	TaxGatePassed                bool `json:"tax_gate_passed"`

	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	VerifiedBy string     `json:"verified_by,omitempty"`
	AuditNotes string     `json:"audit_notes,omitempty"`

	// Cached from the latest valuation.
	ForensicPrice   *float64  `json:"forensic_price,omitempty"`
	ZoningPotential *float64  `json:"zoning_potential,omitempty"`
	RiskGrade       RiskGrade `json:"risk_grade,omitempty"`
	AlphaScore      *float64  `json:"alpha_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Market returns the asking price and whether one is present. A zero price
// counts as absent.
func (p *Property) Market() (float64, bool) {
	if p.MarketPrice == nil || *p.MarketPrice <= 0 {
		return 0, false
	}
	return *p.MarketPrice, true
}

// IsLand reports whether the property is undeveloped land.
func (p *Property) IsLand() bool {
	return p.AssetType == AssetLand
}

// Coordinates returns the property's position when both components are set.
func (p *Property) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}

// Size returns the built area, falling back to the terrain area.
func (p *Property) Size() (float64, bool) {
	if p.BuiltArea != nil && *p.BuiltArea > 0 {
		return *p.BuiltArea, true
	}
	if p.TerrainArea != nil && *p.TerrainArea > 0 {
		return *p.TerrainArea, true
	}
	return 0, false
}

// ForensicDocument is one verification document attached to a property.
type ForensicDocument struct {
	ID           string         `json:"id"`
	PropertyID   string         `json:"property_id" validate:"required"`
	Type         DocumentType   `json:"type" validate:"required,document_type"`
	Status       DocumentStatus `json:"status"`
	QRVerified   bool           `json:"qr_verified"`
	Reference    string         `json:"reference,omitempty"`
	IssuedAt     *time.Time     `json:"issued_at,omitempty"`
	RegisteredAt *time.Time     `json:"registered_at,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

// Expired reports whether the document's expiry date is before now.
func (d *ForensicDocument) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Zoning returns a pointer to z.
func Zoning(z ZoningCode) *ZoningCode { return &z }

// Clone returns a deep copy of p. Pointer fields of the copy never alias p.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	c.Latitude = clonePtr(p.Latitude)
	c.Longitude = clonePtr(p.Longitude)
	c.TerrainArea = clonePtr(p.TerrainArea)
	c.BuiltArea = clonePtr(p.BuiltArea)
	c.Floors = clonePtr(p.Floors)
	c.Rooms = clonePtr(p.Rooms)
	c.Bathrooms = clonePtr(p.Bathrooms)
	c.YearBuilt = clonePtr(p.YearBuilt)
	c.MarketPrice = clonePtr(p.MarketPrice)
	c.PricePerSqm = clonePtr(p.PricePerSqm)
	c.ZoningCode = clonePtr(p.ZoningCode)
	c.Structural = StructuralHealthScore{
		SeismicChaining:    clonePtr(p.Structural.SeismicChaining),
		RPS2000Compliant:   p.Structural.RPS2000Compliant,
		RPS2011Compliant:   p.Structural.RPS2011Compliant,
		HumidityScore:      clonePtr(p.Structural.HumidityScore),
		FoundationDepthM:   clonePtr(p.Structural.FoundationDepthM),
		RoofRemainingYears: clonePtr(p.Structural.RoofRemainingYears),
		OverallScore:       clonePtr(p.Structural.OverallScore),
	}
	c.DistanceToTransitKm = clonePtr(p.DistanceToTransitKm)
	c.DistanceToStadiumKm = clonePtr(p.DistanceToStadiumKm)
	c.DistanceToAirportKm = clonePtr(p.DistanceToAirportKm)
	c.VerifiedAt = clonePtr(p.VerifiedAt)
	c.ForensicPrice = clonePtr(p.ForensicPrice)
	c.ZoningPotential = clonePtr(p.ZoningPotential)
	c.AlphaScore = clonePtr(p.AlphaScore)
	return &c
}

// CloneDocuments returns a deep copy of docs.
func CloneDocuments(docs []ForensicDocument) []ForensicDocument {
	if docs == nil {
		return nil
	}
	out := make([]ForensicDocument, len(docs))
	for i, d := range docs {
		d.IssuedAt = clonePtr(d.IssuedAt)
		d.RegisteredAt = clonePtr(d.RegisteredAt)
		d.ExpiresAt = clonePtr(d.ExpiresAt)
		out[i] = d
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
