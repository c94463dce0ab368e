package sync

import (
	"context"
	"time"

	"github.com/ignite/catalog-sync/internal/mapping"
	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
	"github.com/ignite/catalog-sync/internal/xbz"
)

// Updater issues one update call against the target catalog.
type Updater interface {
	UpdateProduct(ctx context.Context, up omie.UpdateProduct) (*omie.Fault, error)
}

// RepriceResult summarizes one repricing pass.
type RepriceResult struct {
	Updated int
	Failed  int
}

// RepriceExisting is the secondary, independently invoked pass: it
// recomputes prices, weight, stock and dimensions for products already
// in the target catalog and pushes them via AlterarProduto. Per-record
// faults are logged and skipped; the pass always runs to the end.
func RepriceExisting(ctx context.Context, updater Updater, products []xbz.Product, opts Options) RepriceResult {
	if opts.WriteDelay <= 0 {
		opts.WriteDelay = defaultWriteDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	var result RepriceResult
	for _, p := range products {
		up := mapping.MapUpdate(p)

		fault, err := updater.UpdateProduct(ctx, up)
		switch {
		case err != nil:
			result.Failed++
			logger.Error("product update failed", "codigo", p.CodigoComposto, "error", err.Error())
		case fault != nil:
			result.Failed++
			logger.Warn("product update rejected",
				"codigo", p.CodigoComposto,
				"fault_code", fault.Code,
				"message", fault.Message)
		default:
			result.Updated++
			logger.Info("product repriced",
				"codigo", p.CodigoComposto,
				"valor_unitario", up.ValorUnitario,
				"quantidade", up.QuantidadeEstoque)
		}

		if err := opts.Sleep(ctx, opts.WriteDelay); err != nil {
			return result
		}
	}
	return result
}
