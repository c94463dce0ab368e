// Package sync orchestrates one bounded reconciliation pass between the
// XBZ and Omie catalogs: read both sides, diff by integration code,
// write the missing records under pacing and an insertion cap, and emit
// an auditable run report.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/catalog-sync/internal/mapping"
	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
	"github.com/ignite/catalog-sync/internal/xbz"
)

// DefaultMaxInserts caps insertions per run; the remainder is deferred
// to the next run.
const DefaultMaxInserts = 500

// minimum pause between write calls
const defaultWriteDelay = 1100 * time.Millisecond

// SourceCatalog fetches the complete source catalog in one logical call.
type SourceCatalog interface {
	FetchAll(ctx context.Context) ([]xbz.Product, error)
}

// TargetCatalog reads the target catalog and probes its availability.
type TargetCatalog interface {
	ListProducts(ctx context.Context) ([]omie.ListedProduct, error)
	Probe(ctx context.Context) omie.Availability
}

// RecordWriter submits one mapped record and classifies the outcome.
type RecordWriter interface {
	Write(ctx context.Context, p omie.CreateProduct) omie.Outcome
}

// Sink receives the per-run report artifacts. Implementations append
// rows as the run progresses and finalize the summary at run end.
type Sink interface {
	SnapshotSource(products []xbz.Product) error
	AppendSkip(d SkipDetail) error
	AppendFailure(d FailDetail) error
	Finalize(report *RunReport) error
}

// Options tune a Controller.
type Options struct {
	// MaxInserts caps insertions per run; zero means DefaultMaxInserts.
	MaxInserts int
	// WriteDelay is the pause after every write call regardless of
	// outcome; zero means 1.1s.
	WriteDelay time.Duration
	// Observer receives state-transition events; nil means NopObserver.
	Observer Observer
	// Sleep replaces the pacing primitive (tests). Nil uses a real wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now replaces the clock (tests).
	Now func() time.Time
}

// Controller runs the sync pass. All state is run-scoped; a Controller
// can be invoked again for the next run with no carryover.
type Controller struct {
	source   SourceCatalog
	target   TargetCatalog
	writer   RecordWriter
	sink     Sink
	observer Observer

	maxInserts int
	writeDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// NewController wires a Controller from its collaborators.
func NewController(source SourceCatalog, target TargetCatalog, writer RecordWriter, sink Sink, opts Options) *Controller {
	if opts.MaxInserts <= 0 {
		opts.MaxInserts = DefaultMaxInserts
	}
	if opts.WriteDelay <= 0 {
		opts.WriteDelay = defaultWriteDelay
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
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
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		source:     source,
		target:     target,
		writer:     writer,
		sink:       sink,
		observer:   opts.Observer,
		maxInserts: opts.MaxInserts,
		writeDelay: opts.WriteDelay,
		sleep:      opts.Sleep,
		now:        opts.Now,
	}
}

// Run executes one full sync pass. The report is always returned; the
// error is non-nil only for run-level failures (source fetch, context
// cancellation). Per-record failures never abort the run.
func (c *Controller) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:          uuid.NewString(),
		StartedAt:      c.now().UTC(),
		SkippedRecords: []SkipDetail{},
		FailedRecords:  []FailDetail{},
	}

	products, err := c.source.FetchAll(ctx)
	if err != nil {
		report.Status = RunAbortedSourceUnavailable
		report.StatusMessage = err.Error()
		c.finalize(report)
		return report, err
	}
	report.SourceTotal = len(products)
	c.observer.SourceFetched(len(products))

	if len(products) > 0 {
		if err := c.sink.SnapshotSource(products); err != nil {
			logger.Warn("source snapshot failed", "error", err.Error())
		}
	}

	// A partial target listing is tolerated: missing codes only cause
	// duplicate-insert attempts, which the writer classifies as skipped.
	listed, err := c.target.ListProducts(ctx)
	if err != nil {
		logger.Warn("target catalog listing incomplete",
			"accumulated", len(listed),
			"error", err.Error())
	}
	existing := make(map[string]struct{}, len(listed))
	for _, p := range listed {
		if p.CodigoProdutoIntegracao != "" {
			existing[p.CodigoProdutoIntegracao] = struct{}{}
		}
	}
	report.TargetTotal = len(existing)
	c.observer.TargetFetched(len(existing))

	candidates := 0
	for _, p := range products {
		if _, ok := existing[p.CodigoComposto]; !ok {
			candidates++
			c.observer.CandidateFound(p.CodigoComposto)
		}
	}
	report.Candidates = candidates

	if candidates == 0 {
		report.Status = RunCompleted
		c.finalize(report)
		return report, nil
	}

	if av := c.target.Probe(ctx); !av.Available {
		report.Status = RunAbortedTargetBlocked
		report.StatusMessage = av.Message
		report.Remaining = candidates
		c.finalize(report)
		return report, nil
	}

	report.Status = RunCompleted
	attempted := 0

	// Iterate the source in original order, not just candidates, so the
	// report narrates every record's disposition.
	for _, p := range products {
		if _, ok := existing[p.CodigoComposto]; ok {
			report.Skipped++
			c.appendSkip(report, SkipDetail{Codigo: p.CodigoComposto, Motivo: "already_in_target"})
			continue
		}

		if report.Inserted >= c.maxInserts {
			// insertion budget spent; the rest waits for the next run
			break
		}

		c.observer.WriteAttempted(p.CodigoComposto)
		outcome := c.writer.Write(ctx, mapping.Map(p))
		attempted++
		c.observer.WriteResult(p.CodigoComposto, outcome)

		if outcome.Status == omie.StatusRateLimited {
			report.Status = RunCompletedRateLimited
			report.StatusMessage = outcome.Message
			break
		}

		switch outcome.Status {
		case omie.StatusInserted:
			report.Inserted++
		case omie.StatusSkipped:
			report.Skipped++
			c.appendSkip(report, SkipDetail{Codigo: p.CodigoComposto, Motivo: outcome.Reason})
		case omie.StatusFailed:
			report.Failed++
			c.appendFailure(report, FailDetail{
				Codigo:    p.CodigoComposto,
				Motivo:    outcome.Reason,
				Mensagem:  outcome.Message,
				FaultCode: outcome.FaultCode,
			})
		}

		if err := c.sleep(ctx, c.writeDelay); err != nil {
			report.Status = RunAbortedCancelled
			report.StatusMessage = err.Error()
			c.finalizeRemaining(report, candidates, attempted)
			c.finalize(report)
			return report, err
		}
	}

	c.finalizeRemaining(report, candidates, attempted)
	c.finalize(report)
	return report, nil
}

func (c *Controller) finalizeRemaining(report *RunReport, candidates, attempted int) {
	if remaining := candidates - attempted; remaining > 0 {
		report.Remaining = remaining
	}
}

func (c *Controller) appendSkip(report *RunReport, d SkipDetail) {
	report.SkippedRecords = append(report.SkippedRecords, d)
	if err := c.sink.AppendSkip(d); err != nil {
		logger.Warn("report sink skip append failed", "codigo", d.Codigo, "error", err.Error())
	}
}

func (c *Controller) appendFailure(report *RunReport, d FailDetail) {
	report.FailedRecords = append(report.FailedRecords, d)
	if err := c.sink.AppendFailure(d); err != nil {
		logger.Warn("report sink failure append failed", "codigo", d.Codigo, "error", err.Error())
	}
}

func (c *Controller) finalize(report *RunReport) {
	report.FinishedAt = c.now().UTC()
	if err := c.sink.Finalize(report); err != nil {
		logger.Warn("report sink finalize failed", "run_id", report.RunID, "error", err.Error())
	}
	c.observer.RunFinished(report)
}
