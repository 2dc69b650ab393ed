package main

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/compliance"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/opportunity"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/resilience"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/validate"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/valuation"
)

// valueProperty loads a property and runs the valuation engine on it.
func (e *appEnv) valueProperty(ctx context.Context, id string) (model.ValuationResult, error) {
	p, err := e.Store.GetProperty(ctx, id)
	if err != nil {
		return model.ValuationResult{}, err
	}
	if err := validate.Property(p); err != nil {
		return model.ValuationResult{}, err
	}
	return e.Engine.Value(p, nil, e.Tables.Infrastructure), nil
}

// saveValuation persists the snapshot of res onto its property.
func (e *appEnv) saveValuation(ctx context.Context, res model.ValuationResult) error {
	return e.Store.SaveValuation(ctx, res.PropertyID, valuation.Snapshot(res, e.Now()))
}

// auditProperty loads a property with its documents and audits it.
func (e *appEnv) auditProperty(ctx context.Context, id string, purchaseDate *time.Time, nationality string) (*model.Property, model.ComplianceResult, error) {
	p, err := e.Store.GetProperty(ctx, id)
	if err != nil {
		return nil, model.ComplianceResult{}, err
	}
	docs, err := e.Store.ListDocuments(ctx, id)
	if err != nil {
		return nil, model.ComplianceResult{}, err
	}
	res := compliance.Audit(compliance.Input{
		Property:     p,
		Documents:    docs,
		PurchaseDate: purchaseDate,
		Nationality:  nationality,
		Now:          e.Now(),
		Tables:       e.Tables,
	})
	return p, res, nil
}

// alphaOpportunities ranks every stored land parcel. A negative threshold
// selects the configured default.
func (e *appEnv) alphaOpportunities(ctx context.Context, minAlpha float64) ([]opportunity.Opportunity, error) {
	if minAlpha < 0 {
		minAlpha = e.Config.MinAlphaPercent
	}
	props, err := e.Store.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	return e.Ranker.FindAlphaOpportunities(props, minAlpha), nil
}

// analyzeListings drops invalid listings with a warning and analyzes the rest.
func (e *appEnv) analyzeListings(listings []model.ScrapedListing) []model.ListingAnalysis {
	valid := listings[:0:0]
	for i := range listings {
		if err := validate.Listing(&listings[i]); err != nil {
			zap.L().Warn("skipping invalid listing", zap.String("url", listings[i].URL), zap.Error(err))
			continue
		}
		valid = append(valid, listings[i])
	}
	return opportunity.AnalyzeListings(valid, e.Tables)
}

// scanPortfolio values the given properties, or every stored property when
// ids is empty. Store failures other than a missing record are retried.
func (e *appEnv) scanPortfolio(ctx context.Context, ids []string) (opportunity.ScanResult, error) {
	if len(ids) == 0 {
		props, err := e.Store.ListProperties(ctx)
		if err != nil {
			return opportunity.ScanResult{}, err
		}
		for _, p := range props {
			ids = append(ids, p.ID)
		}
	}

	lookup := func(ctx context.Context, id string) (model.ValuationResult, error) {
		res, err := e.valueProperty(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) && validate.Fields(err) == nil && ctx.Err() == nil {
			return res, resilience.Transient(err)
		}
		return res, err
	}

	retry := resilience.FromConfig(e.Config.Retry.MaxAttempts, e.Config.Retry.InitialBackoffMs)
	return opportunity.ScanPortfolio(ctx, ids, lookup, opportunity.ScanOptions{
		Concurrency:   e.Config.MaxConcurrency,
		RatePerSecond: e.Config.LookupRPS,
		Retry:         &retry,
	}), nil
}

// importWorkbook writes parsed workbook records to the store.
func (e *appEnv) importWorkbook(ctx context.Context, props []*model.Property, docs []model.ForensicDocument) (int64, int64, error) {
	np, err := e.Store.SaveProperties(ctx, props)
	if err != nil {
		return 0, 0, eris.Wrap(err, "save properties")
	}
	var nd int64
	if len(docs) > 0 {
		if nd, err = e.Store.SaveDocuments(ctx, docs); err != nil {
			return np, 0, eris.Wrap(err, "save documents")
		}
	}
	return np, nd, nil
}
