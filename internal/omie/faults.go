package omie

import "strings"

// FaultClass buckets a provider fault into the handling the writer and
// prober apply to it.
type FaultClass int

const (
	// ClassClientTerminal faults are permanent per-record errors; the
	// record fails, the run continues.
	ClassClientTerminal FaultClass = iota
	// ClassDuplicate means the integration code already exists; an
	// expected outcome, not an error.
	ClassDuplicate
	// ClassProcessBlocked is the provider-wide rate limit; no further
	// calls should be made until an unspecified cooldown elapses.
	ClassProcessBlocked
	// ClassServerTransient faults are server-side and worth retrying.
	ClassServerTransient
)

// FaultTable maps fault codes to classes. The provider does not document
// its codes, so the mapping is data the operator can override from config
// rather than a hardcoded assumption.
type FaultTable struct {
	ProcessBlockedCodes []string `yaml:"process_blocked_codes"`
	DuplicateCodes      []string `yaml:"duplicate_codes"`
	ServerPatterns      []string `yaml:"server_patterns"`
}

// DefaultFaultTable returns the classification observed against the live
// API: MISUSE_API_PROCESS for the process-level block, SOAP-ENV:Client-102
// for duplicate integration codes, and any code mentioning "Server" as
// transient.
func DefaultFaultTable() FaultTable {
	return FaultTable{
		ProcessBlockedCodes: []string{"MISUSE_API_PROCESS"},
		DuplicateCodes:      []string{"SOAP-ENV:Client-102"},
		ServerPatterns:      []string{"Server"},
	}
}

// merged returns t with empty slices filled from the defaults, so a
// partial config override keeps the remaining defaults.
func (t FaultTable) merged() FaultTable {
	def := DefaultFaultTable()
	if len(t.ProcessBlockedCodes) == 0 {
		t.ProcessBlockedCodes = def.ProcessBlockedCodes
	}
	if len(t.DuplicateCodes) == 0 {
		t.DuplicateCodes = def.DuplicateCodes
	}
	if len(t.ServerPatterns) == 0 {
		t.ServerPatterns = def.ServerPatterns
	}
	return t
}

// Classify buckets a fault by its code.
func (t FaultTable) Classify(f Fault) FaultClass {
	for _, code := range t.ProcessBlockedCodes {
		if f.Code == code {
			return ClassProcessBlocked
		}
	}
	for _, code := range t.DuplicateCodes {
		if f.Code == code {
			return ClassDuplicate
		}
	}
	for _, pat := range t.ServerPatterns {
		if strings.Contains(f.Code, pat) {
			return ClassServerTransient
		}
	}
	return ClassClientTerminal
}
