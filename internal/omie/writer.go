package omie

import (
	"context"
	"errors"
	"net"

	"github.com/ignite/catalog-sync/internal/pkg/logger"
	"github.com/ignite/catalog-sync/internal/pkg/retry"
)

// errTransient marks a write attempt the policy may retry.
var errTransient = errors.New("omie: transient write failure")

// Writer submits mapped records to Omie and classifies each outcome.
// Retries for transient failures run inside Write under the injected
// policy; no state is kept between invocations.
type Writer struct {
	client *Client
	policy retry.Policy
	faults FaultTable
}

// NewWriter creates a Writer around the given client. A zero-attempts
// policy falls back to the default (3 attempts, linear 2s backoff).
func NewWriter(client *Client, policy retry.Policy) *Writer {
	if policy.MaxAttempts <= 0 {
		policy = retry.Default()
	}
	return &Writer{
		client: client,
		policy: policy,
		faults: client.FaultTable(),
	}
}

// Write submits one IncluirProduto call and classifies the result.
// Transport timeouts and server-class faults are retried under the
// policy; a process-level block and duplicate codes return immediately.
func (w *Writer) Write(ctx context.Context, p CreateProduct) Outcome {
	var outcome Outcome

	w.policy.Do(ctx, func(attempt int) error {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		raw, fault, err := w.client.call(wctx, "IncluirProduto", p)
		cancel()

		if err != nil {
			// pending failure if attempts run out
			outcome = Outcome{
				Status:  StatusFailed,
				Reason:  transportReason(err),
				Message: err.Error(),
			}
			logger.Warn("write attempt failed",
				"codigo", p.CodigoProdutoIntegracao,
				"attempt", attempt,
				"error", err.Error())
			return errTransient
		}

		if fault != nil {
			switch w.faults.Classify(*fault) {
			case ClassProcessBlocked:
				// never retried: retrying a process-level block burns
				// quota and can extend the cooldown
				outcome = Outcome{
					Status:    StatusRateLimited,
					Message:   fault.Message,
					FaultCode: fault.Code,
				}
				return nil
			case ClassDuplicate:
				outcome = Outcome{
					Status:    StatusSkipped,
					Reason:    "already_exists",
					Message:   fault.Message,
					FaultCode: fault.Code,
				}
				return nil
			case ClassServerTransient:
				outcome = Outcome{
					Status:    StatusFailed,
					Reason:    "server_error",
					Message:   fault.Message,
					FaultCode: fault.Code,
				}
				logger.Warn("write attempt got server fault",
					"codigo", p.CodigoProdutoIntegracao,
					"attempt", attempt,
					"fault_code", fault.Code)
				return errTransient
			default:
				outcome = Outcome{
					Status:    StatusFailed,
					Reason:    "client_error",
					Message:   fault.Message,
					FaultCode: fault.Code,
				}
				return nil
			}
		}

		outcome = Outcome{Status: StatusInserted, Response: raw}
		return nil
	}, func(err error) bool { return errors.Is(err, errTransient) })

	return outcome
}

// transportReason separates genuine timeouts from other transport
// failures (refused connection, DNS, unexpected HTTP status).
func transportReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "timeout"
	}
	return "transport_error"
}
