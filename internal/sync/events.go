package sync

import (
	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
)

// Observer receives one event per controller state transition. It keeps
// the controller free of presentation concerns; implementations fan the
// events out to logs, consoles or metrics.
type Observer interface {
	SourceFetched(count int)
	TargetFetched(count int)
	CandidateFound(codigo string)
	WriteAttempted(codigo string)
	WriteResult(codigo string, outcome omie.Outcome)
	RunFinished(report *RunReport)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) SourceFetched(int)               {}
func (NopObserver) TargetFetched(int)               {}
func (NopObserver) CandidateFound(string)           {}
func (NopObserver) WriteAttempted(string)           {}
func (NopObserver) WriteResult(string, omie.Outcome) {}
func (NopObserver) RunFinished(*RunReport)          {}

// LogObserver emits one structured log entry per event.
type LogObserver struct{}

func (LogObserver) SourceFetched(count int) {
	logger.Info("source catalog fetched", "products", count)
}

func (LogObserver) TargetFetched(count int) {
	logger.Info("target catalog fetched", "products", count)
}

func (LogObserver) CandidateFound(codigo string) {
	logger.Debug("candidate found", "codigo", codigo)
}

func (LogObserver) WriteAttempted(codigo string) {
	logger.Debug("write attempted", "codigo", codigo)
}

func (LogObserver) WriteResult(codigo string, outcome omie.Outcome) {
	switch outcome.Status {
	case omie.StatusInserted:
		logger.Info("product inserted", "codigo", codigo)
	case omie.StatusSkipped:
		logger.Info("product skipped", "codigo", codigo, "reason", outcome.Reason)
	case omie.StatusRateLimited:
		logger.Warn("provider rate limited", "codigo", codigo, "message", outcome.Message)
	case omie.StatusFailed:
		logger.Error("product write failed",
			"codigo", codigo,
			"reason", outcome.Reason,
			"fault_code", outcome.FaultCode,
			"message", outcome.Message)
	}
}

func (LogObserver) RunFinished(report *RunReport) {
	logger.Info("sync run finished",
		"run_id", report.RunID,
		"status", string(report.Status),
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"remaining", report.Remaining)
}
