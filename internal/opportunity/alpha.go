// Package opportunity ranks properties and scraped listings by the gap
// between their asking price and their computed value.
package opportunity

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/reference"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/zoning"
)

// DefaultMinAlphaPercent is the alpha threshold used when none is given.
const DefaultMinAlphaPercent = 20.0

const defaultConcurrency = 8

// Opportunity is a land parcel whose zoning potential exceeds its market
// price.
type Opportunity struct {
	PropertyID      string           `json:"property_id"`
	Title           string           `json:"title,omitempty"`
	Neighborhood    string           `json:"neighborhood,omitempty"`
	ZoningCode      model.ZoningCode `json:"zoning_code"`
	TerrainArea     float64          `json:"terrain_area"`
	MarketPrice     float64          `json:"market_price"`
	ZoningPotential float64          `json:"zoning_potential"`
	BuildableArea   float64          `json:"buildable_area"`
	MaxUnits        int              `json:"max_units"`
	AlphaValue      float64          `json:"alpha_value"`
	AlphaPercent    float64          `json:"alpha_percent"`

	rawPercent float64
}

// Ranker evaluates property collections concurrently against a reference
// snapshot.
type Ranker struct {
	Tables      *reference.Tables
	Concurrency int
}

// FindAlphaOpportunities ranks props with the default concurrency.
func FindAlphaOpportunities(props []*model.Property, minAlphaPercent float64, tables *reference.Tables) []Opportunity {
	return (&Ranker{Tables: tables}).FindAlphaOpportunities(props, minAlphaPercent)
}

// FindAlphaOpportunities keeps land with a zoning code and a market price
// whose alpha percent reaches minAlphaPercent, sorted by alpha percent
// descending then ID ascending. A negative threshold uses
// DefaultMinAlphaPercent; zero keeps every parcel with non-negative alpha.
// The threshold applies to the unrounded percent.
func (r *Ranker) FindAlphaOpportunities(props []*model.Property, minAlphaPercent float64) []Opportunity {
	if minAlphaPercent < 0 {
		minAlphaPercent = DefaultMinAlphaPercent
	}
	tables := r.Tables
	if tables == nil {
		tables = reference.Default()
	}

	slots := make([]*Opportunity, len(props))
	var g errgroup.Group
	g.SetLimit(r.limit())
	for i, p := range props {
		g.Go(func() error {
			slots[i] = evaluate(p, tables)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Opportunity, 0, len(props))
	for _, o := range slots {
		if o != nil && o.rawPercent >= minAlphaPercent {
			out = append(out, *o)
		}
	}
	slices.SortFunc(out, func(a, b Opportunity) int {
		if c := cmp.Compare(b.rawPercent, a.rawPercent); c != 0 {
			return c
		}
		return cmp.Compare(a.PropertyID, b.PropertyID)
	})
	return out
}

func (r *Ranker) limit() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return defaultConcurrency
}

func evaluate(p *model.Property, tables *reference.Tables) *Opportunity {
	if p == nil || !p.IsLand() || p.ZoningCode == nil {
		return nil
	}
	market, ok := p.Market()
	if !ok {
		return nil
	}
	pot := zoning.CalculateZoningPotential(p, tables)
	if !pot.Applied {
		return nil
	}
	pct, _ := zoning.AlphaPercent(pot.Value, market)

	return &Opportunity{
		PropertyID:      p.ID,
		Title:           p.Title,
		Neighborhood:    p.Neighborhood,
		ZoningCode:      *p.ZoningCode,
		TerrainArea:     *p.TerrainArea,
		MarketPrice:     market,
		ZoningPotential: pot.Value,
		BuildableArea:   pot.BuildableArea,
		MaxUnits:        pot.MaxUnits,
		AlphaValue:      model.Round2(pot.Value - market),
		AlphaPercent:    model.Round2(pct),
		rawPercent:      pct,
	}
}
