package sync

import "time"

// RunStatus is the terminal state of one sync pass.
type RunStatus string

const (
	// RunCompleted means the full diff was processed (or the insertion
	// cap was reached with the remainder deferred).
	RunCompleted RunStatus = "COMPLETED"
	// RunCompletedRateLimited means a process-level block stopped the
	// write loop early; the run is safely resumable.
	RunCompletedRateLimited RunStatus = "COMPLETED_RATE_LIMITED"
	// RunAbortedSourceUnavailable means the source catalog could not be
	// fetched; nothing was diffed or written.
	RunAbortedSourceUnavailable RunStatus = "ABORTED_SOURCE_UNAVAILABLE"
	// RunAbortedTargetBlocked means the availability probe reported a
	// block before any write was attempted.
	RunAbortedTargetBlocked RunStatus = "ABORTED_TARGET_BLOCKED"
	// RunAbortedCancelled means cancellation interrupted the write loop;
	// outcomes already recorded stand, the remainder is deferred.
	RunAbortedCancelled RunStatus = "ABORTED_CANCELLED"
)

// SkipDetail itemizes one skipped record.
type SkipDetail struct {
	Codigo string `json:"codigo"`
	Motivo string `json:"motivo"`
}

// FailDetail itemizes one failed record.
type FailDetail struct {
	Codigo    string `json:"codigo"`
	Motivo    string `json:"motivo"`
	Mensagem  string `json:"mensagem"`
	FaultCode string `json:"fault_code"`
}

// RunReport is the per-invocation summary. It is created fresh each run
// and never merged with a previous run's report: resumability comes from
// recomputing the existing-codes set from live target state, not from
// report files.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourceTotal int `json:"source_total"`
	TargetTotal int `json:"target_total"`
	Candidates  int `json:"candidates"`

	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`

	StatusMessage string `json:"status_message,omitempty"`

	SkippedRecords []SkipDetail `json:"skipped_records"`
	FailedRecords  []FailDetail `json:"failed_records"`
}
