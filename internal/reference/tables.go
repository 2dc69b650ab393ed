// Package reference holds the read-only lookup tables the valuation engine
// consumes: zoning coefficients, neighborhood price tiers, infrastructure
// weights and points, and document requirements.
package reference

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

// DefaultPricePerSqm is the price tier (MAD/m²) used for unrecognized
// neighborhoods.
const DefaultPricePerSqm = 10_000.0

// DefaultCategoryWeight applies to infrastructure categories without an
// explicit weight.
const DefaultCategoryWeight = 0.10

// HistoricDistrict is the neighborhood whose apartments compete with
// traditional guesthouses for short-term demand.
const HistoricDistrict = "medina"

// Tables is an immutable snapshot of reference data. Callers must not mutate
// the maps or slices after construction; use Clone for a private copy.
type Tables struct {
	Zoning             map[model.ZoningCode]model.ZoningCodeInfo
	NeighborhoodPrices map[string]float64
	DefaultPrice       float64
	CategoryWeights    map[model.InfrastructureCategory]float64
	DocumentRules      map[model.AssetType][]model.DocumentType
	Infrastructure     []model.InfrastructurePoint
}

// Default returns the canonical Marrakech reference tables.
func Default() *Tables {
	return &Tables{
		Zoning:             defaultZoning(),
		NeighborhoodPrices: defaultNeighborhoodPrices(),
		DefaultPrice:       DefaultPricePerSqm,
		CategoryWeights: map[model.InfrastructureCategory]float64{
			model.InfraTransit:    0.30,
			model.InfraStadium:    0.25,
			model.InfraHighway:    0.15,
			model.InfraAirport:    0.20,
			model.InfraIndustrial: 0.10,
		},
		DocumentRules: map[model.AssetType][]model.DocumentType{
			model.AssetLand: {
				model.DocTitreFoncier, model.DocPlanCadastral,
				model.DocNoteRenseignement, model.DocQuitusFiscal,
			},
			model.AssetVilla: {
				model.DocTitreFoncier, model.DocPermisConstruire,
				model.DocPermisHabiter, model.DocQuitusFiscal,
			},
			model.AssetApartment: {
				model.DocTitreFoncier, model.DocPermisHabiter, model.DocQuitusFiscal,
			},
		},
		Infrastructure: DefaultInfrastructure(),
	}
}

func defaultZoning() map[model.ZoningCode]model.ZoningCodeInfo {
	return map[model.ZoningCode]model.ZoningCodeInfo{
		model.ZoneR2: {
			Code: model.ZoneR2, Label: "Immeubles R+2",
			MinTerrainSqm: 150, COS: 0.60, CUS: 1.80, MaxHeightM: 11.5, MaxFloors: 3,
			MultiUnitAllowed: true, MaxUnitsPerHectare: 120, CommercialAllowed: true,
			TypicalPriceMin: 7_000, TypicalPriceMax: 12_000,
		},
		model.ZoneR4: {
			Code: model.ZoneR4, Label: "Immeubles R+4",
			MinTerrainSqm: 300, COS: 0.70, CUS: 3.50, MaxHeightM: 17.5, MaxFloors: 5,
			MultiUnitAllowed: true, MaxUnitsPerHectare: 250, CommercialAllowed: true, HotelAllowed: true,
			TypicalPriceMin: 9_000, TypicalPriceMax: 16_000,
		},
		model.ZoneVilla: {
			Code: model.ZoneVilla, Label: "Zone villas",
			MinTerrainSqm: 800, COS: 0.20, CUS: 0.40, MaxHeightM: 8.5, MaxFloors: 2,
			MaxUnitsPerHectare: 10,
			TypicalPriceMin: 10_000, TypicalPriceMax: 25_000,
		},
		model.ZoneHotel: {
			Code: model.ZoneHotel, Label: "Zone touristique",
			MinTerrainSqm: 2_000, COS: 0.40, CUS: 1.20, MaxHeightM: 14, MaxFloors: 4,
			MultiUnitAllowed: false, MaxUnitsPerHectare: 60, CommercialAllowed: true, HotelAllowed: true,
			TypicalPriceMin: 12_000, TypicalPriceMax: 30_000,
		},
		model.ZoneRural: {
			Code: model.ZoneRural, Label: "Zone rurale",
			MinTerrainSqm: 10_000, COS: 0.05, CUS: 0.05, MaxHeightM: 8.5, MaxFloors: 2,
			MaxUnitsPerHectare: 2,
			TypicalPriceMin: 300, TypicalPriceMax: 1_500,
		},
		model.ZoneAgricole: {
			Code: model.ZoneAgricole, Label: "Zone agricole",
			MinTerrainSqm: 20_000, COS: 0.02, CUS: 0.02, MaxHeightM: 7, MaxFloors: 1,
			MaxUnitsPerHectare: 1,
			TypicalPriceMin: 100, TypicalPriceMax: 800,
		},
	}
}

// defaultNeighborhoodPrices is keyed by normalized neighborhood name (MAD/m²).
func defaultNeighborhoodPrices() map[string]float64 {
	return map[string]float64{
		"hivernage":         22_000,
		"gueliz":            16_000,
		"agdal":             15_000,
		"palmeraie":         14_000,
		"amelkis":           13_000,
		"medina":            12_000,
		"targa":             11_000,
		"route de l'ourika": 9_000,
		"route de fes":      8_000,
		"m'hamid":           7_000,
		"sidi ghanem":       6_500,
	}
}

// DefaultInfrastructure returns the fixed infrastructure set for Marrakech.
func DefaultInfrastructure() []model.InfrastructurePoint {
	return []model.InfrastructurePoint{
		{
			Name: "Grand Stade de Marrakech", Category: model.InfraStadium,
			Latitude: 31.7083, Longitude: -8.0614, Status: "under_construction", CompletionYear: 2029,
			RadiusKm: 10, Multiplier: 1.25,
		},
		{
			Name: "Gare de Marrakech (LGV)", Category: model.InfraTransit,
			Latitude: 31.6308, Longitude: -8.0146, Status: "under_construction", CompletionYear: 2029,
			RadiusKm: 5, Multiplier: 1.20,
		},
		{
			Name: "Aéroport Marrakech-Ménara", Category: model.InfraAirport,
			Latitude: 31.6069, Longitude: -8.0363, Status: "operational", CompletionYear: 2016,
			RadiusKm: 8, Multiplier: 1.10,
		},
		{
			Name: "Autoroute A7 - Échangeur Marrakech Sud", Category: model.InfraHighway,
			Latitude: 31.5880, Longitude: -7.9930, Status: "operational", CompletionYear: 2007,
			RadiusKm: 6, Multiplier: 1.08,
		},
		{
			Name: "Zone Industrielle Sidi Ghanem", Category: model.InfraIndustrial,
			Latitude: 31.6686, Longitude: -8.0492, Status: "operational", CompletionYear: 1985,
			RadiusKm: 4, Multiplier: 0.92,
		},
	}
}

// PricePerSqm returns the neighborhood price tier, falling back to the
// default tier for unknown or empty names.
func (t *Tables) PricePerSqm(neighborhood string) float64 {
	if v, ok := t.NeighborhoodPrices[NormalizeNeighborhood(neighborhood)]; ok {
		return v
	}
	if t.DefaultPrice > 0 {
		return t.DefaultPrice
	}
	return DefaultPricePerSqm
}

// CategoryWeight returns the weight for an infrastructure category.
func (t *Tables) CategoryWeight(c model.InfrastructureCategory) float64 {
	if w, ok := t.CategoryWeights[c]; ok {
		return w
	}
	return DefaultCategoryWeight
}

// ZoningInfo returns the coefficients for a zoning code.
func (t *Tables) ZoningInfo(code model.ZoningCode) (model.ZoningCodeInfo, bool) {
	info, ok := t.Zoning[code]
	return info, ok
}

// RequiredDocuments returns the document types expected for an asset type.
func (t *Tables) RequiredDocuments(a model.AssetType) []model.DocumentType {
	return t.DocumentRules[a]
}

// Clone returns a deep copy of t.
func (t *Tables) Clone() *Tables {
	rules := make(map[model.AssetType][]model.DocumentType, len(t.DocumentRules))
	for k, v := range t.DocumentRules {
		rules[k] = slices.Clone(v)
	}
	return &Tables{
		Zoning:             maps.Clone(t.Zoning),
		NeighborhoodPrices: maps.Clone(t.NeighborhoodPrices),
		DefaultPrice:       t.DefaultPrice,
		CategoryWeights:    maps.Clone(t.CategoryWeights),
		DocumentRules:      rules,
		Infrastructure:     slices.Clone(t.Infrastructure),
	}
}

// NormalizeNeighborhood folds case, accents, separators and repeated spaces
// so "Guéliz", "GUELIZ" and " gueliz " share a key.
func NormalizeNeighborhood(name string) string {
	// Chained transformers carry state, so each call builds its own.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, name)
	if err != nil {
		folded = name
	}
	folded = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_':
			return ' '
		case '’':
			return '\''
		}
		return unicode.ToLower(r)
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}
