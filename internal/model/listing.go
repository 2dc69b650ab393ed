package model

import "time"

// ScrapedListing is a comparable listing collected from a third-party portal.
type ScrapedListing struct {
	Portal       string    `json:"portal" validate:"required"`
	URL          string    `json:"url" validate:"required,url"`
	Title        string    `json:"title,omitempty"`
	AssetType    AssetType `json:"asset_type,omitempty" validate:"omitempty,asset_type"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	AskingPrice  float64   `json:"asking_price" validate:"gt=0"`
	SizeSqm      float64   `json:"size_sqm" validate:"gt=0"`
	Latitude     *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// ListingAnalysis is the gap verdict for one scraped listing.
type ListingAnalysis struct {
	Listing          ScrapedListing `json:"listing"`
	Fingerprint      string         `json:"fingerprint"`
	PricePerSqm      float64        `json:"price_per_sqm"`
	FairPricePerSqm  float64        `json:"fair_price_per_sqm"`
	ForensicPrice    float64        `json:"forensic_price"`
	GapValue         float64        `json:"gap_value"`
	GapPercent       float64        `json:"gap_percent"`
	Verdict          ListingVerdict `json:"verdict"`
	OpportunityScore int            `json:"opportunity_score"`
}
