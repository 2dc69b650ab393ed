package opportunity

import (
	"fmt"
	"math"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/geo"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/infrastructure"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
)

// FingerprintPrecision is the geohash length (about 150 m) used to match
// the same listing across portals.
const FingerprintPrecision = 7

// ClassifyListingGap maps a gap percent to its verdict and opportunity
// score: >30 severely overpriced (10), >10 overpriced (30), ≥-10 fair (50),
// ≥-25 underpriced (75), else severely underpriced (95).
func ClassifyListingGap(pct float64) (model.ListingVerdict, int) {
	switch {
	case pct > 30:
		return model.ListingSeverelyOverpriced, 10
	case pct > 10:
		return model.ListingOverpriced, 30
	case pct >= -10:
		return model.ListingFair, 50
	case pct >= -25:
		return model.ListingUnderpriced, 75
	}
	return model.ListingSeverelyUnderpriced, 95
}

// Fingerprint identifies a listing independent of the portal it came from:
// location (geohash, or normalized neighborhood), asset type, rounded size
// and asking price to the nearest thousand.
func Fingerprint(l model.ScrapedListing) string {
	loc := reference.NormalizeNeighborhood(l.Neighborhood)
	if l.Latitude != nil && l.Longitude != nil {
		loc = geo.Geohash(*l.Latitude, *l.Longitude, FingerprintPrecision)
	}
	return fmt.Sprintf("%s|%s|%.0f|%.0f", loc, l.AssetType, math.Round(l.SizeSqm), math.Round(l.AskingPrice/1000))
}

// AnalyzeListings computes the gap verdict of each listing against the
// neighborhood tier price, plus the infrastructure bonus when the listing
// has coordinates. Duplicate fingerprints keep the most recently scraped
// copy. Listings without a positive price or size are skipped. Output
// follows input order.
func AnalyzeListings(listings []model.ScrapedListing, tables *reference.Tables) []model.ListingAnalysis {
	if tables == nil {
		tables = reference.Default()
	}

	keep := make(map[string]int, len(listings))
	var order []string
	for i, l := range listings {
		if l.AskingPrice <= 0 || l.SizeSqm <= 0 {
			continue
		}
		fp := Fingerprint(l)
		prev, seen := keep[fp]
		if !seen {
			order = append(order, fp)
			keep[fp] = i
			continue
		}
		if l.ScrapedAt.After(listings[prev].ScrapedAt) {
			keep[fp] = i
		}
	}

	out := make([]model.ListingAnalysis, 0, len(order))
	for _, fp := range order {
		out = append(out, analyze(listings[keep[fp]], fp, tables))
	}
	return out
}

func analyze(l model.ScrapedListing, fp string, tables *reference.Tables) model.ListingAnalysis {
	fairSqm := tables.PricePerSqm(l.Neighborhood)
	if l.Latitude != nil && l.Longitude != nil {
		b := infrastructure.ProximityBonus(*l.Latitude, *l.Longitude, tables.Infrastructure, tables)
		fairSqm *= 1 + b.Total
	}
	forensic := fairSqm * l.SizeSqm
	gap := l.AskingPrice - forensic
	pct := gap / forensic * 100
	verdict, score := ClassifyListingGap(pct)

	return model.ListingAnalysis{
		Listing:          l,
		Fingerprint:      fp,
		PricePerSqm:      model.Round2(l.AskingPrice / l.SizeSqm),
		FairPricePerSqm:  model.Round2(fairSqm),
		ForensicPrice:    model.Round2(forensic),
		GapValue:         model.Round2(gap),
		GapPercent:       model.Round2(pct),
		Verdict:          verdict,
		OpportunityScore: score,
	}
}
