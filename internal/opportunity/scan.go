package opportunity

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/resilience"
)

// Lookup fetches the valuation of one property from an external source.
type Lookup func(ctx context.Context, id string) (model.ValuationResult, error)

// ScanOptions tunes ScanPortfolio. Zero values mean default concurrency,
// no rate limit and a single attempt per item.
type ScanOptions struct {
	Concurrency   int
	RatePerSecond float64
	Retry         *resilience.RetryConfig
}

// ItemResult is the outcome of one lookup.
type ItemResult struct {
	ID     string                 `json:"id"`
	Result *model.ValuationResult `json:"result,omitempty"`
	Err    error                  `json:"-"`
}

// ScanResult aggregates a portfolio scan. Valuations holds the successful
// results in input order.
type ScanResult struct {
	Items      []ItemResult            `json:"items"`
	Valuations []model.ValuationResult `json:"valuations"`
	Failed     int64                   `json:"failed"`
}

// ScanPortfolio runs lookup for every id. Item failures are counted and
// excluded; they never abort the batch. Only cancellation of ctx stops the
// scan early, in which case unfinished items are reported as failed.
func ScanPortfolio(ctx context.Context, ids []string, lookup Lookup, opts ScanOptions) ScanResult {
	log := zap.L().With(zap.String("op", "scan_portfolio"), zap.Int("items", len(ids)))

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	items := make([]ItemResult, len(ids))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			items[i] = scanOne(gctx, id, lookup, limiter, opts.Retry)
			if items[i].Err != nil {
				failed.Add(1)
				log.Warn("opportunity: lookup failed", zap.String("id", id), zap.Error(items[i].Err))
			}
			return nil
		})
	}
	_ = g.Wait()

	res := ScanResult{Items: items, Failed: failed.Load()}
	for _, it := range items {
		if it.Result != nil {
			res.Valuations = append(res.Valuations, *it.Result)
		}
	}
	log.Info("opportunity: scan complete",
		zap.Int("succeeded", len(res.Valuations)),
		zap.Int64("failed", res.Failed),
	)
	return res
}

func scanOne(ctx context.Context, id string, lookup Lookup, limiter *rate.Limiter, retry *resilience.RetryConfig) ItemResult {
	call := func(ctx context.Context) (model.ValuationResult, error) {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return model.ValuationResult{}, err
			}
		}
		return lookup(ctx, id)
	}

	var (
		v   model.ValuationResult
		err error
	)
	if retry != nil {
		cfg := *retry
		if cfg.OnRetry == nil {
			cfg.OnRetry = resilience.LogRetry("scan_portfolio", id)
		}
		v, err = resilience.DoVal(ctx, cfg, call)
	} else {
		v, err = call(ctx)
	}
	if err != nil {
		return ItemResult{ID: id, Err: err}
	}
	return ItemResult{ID: id, Result: &v}
}
