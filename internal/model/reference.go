package model

// ZoningCodeInfo describes the legal limits of a zoning code.
type ZoningCodeInfo struct {
	Code               ZoningCode `json:"code" yaml:"code"`
	Label              string     `json:"label" yaml:"label"`
	MinTerrainSqm      float64    `json:"min_terrain_sqm" yaml:"min_terrain_sqm"`
	COS                float64    `json:"cos" yaml:"cos"` // ground coverage ratio
	CUS                float64    `json:"cus" yaml:"cus"` // footprint (floor area) ratio
	MaxHeightM         float64    `json:"max_height_m" yaml:"max_height_m"`
	MaxFloors          int        `json:"max_floors" yaml:"max_floors"`
	MultiUnitAllowed   bool       `json:"multi_unit_allowed" yaml:"multi_unit_allowed"`
	MaxUnitsPerHectare float64    `json:"max_units_per_hectare" yaml:"max_units_per_hectare"`
	CommercialAllowed  bool       `json:"commercial_allowed" yaml:"commercial_allowed"`
	HotelAllowed       bool       `json:"hotel_allowed" yaml:"hotel_allowed"`
	TypicalPriceMin    float64    `json:"typical_price_min" yaml:"typical_price_min"`
	TypicalPriceMax    float64    `json:"typical_price_max" yaml:"typical_price_max"`
}

// InfrastructurePoint is a piece of infrastructure that moves nearby values.
type InfrastructurePoint struct {
	Name           string                 `json:"name" yaml:"name"`
	Category       InfrastructureCategory `json:"category" yaml:"category"`
	Latitude       float64                `json:"latitude" yaml:"latitude"`
	Longitude      float64                `json:"longitude" yaml:"longitude"`
	Status         string                 `json:"status" yaml:"status"` // operational, under_construction, planned
	CompletionYear int                    `json:"completion_year,omitempty" yaml:"completion_year"`
	RadiusKm       float64                `json:"radius_km" yaml:"radius_km"`
	Multiplier     float64                `json:"multiplier" yaml:"multiplier"` // >1 premium, <1 discount
}
