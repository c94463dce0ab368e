// Package omie implements the client for the Omie ERP product API: the
// paginated catalog reader, the availability prober and the record
// writer that feed the sync controller.
package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/catalog-sync/internal/pkg/httpretry"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
)

const (
	listPageSize = 500

	// minimum pause between catalog pages; Omie throttles per second
	defaultPageDelay = 600 * time.Millisecond

	probeTimeout = 10 * time.Second
	writeTimeout = 30 * time.Second
)

// Config holds Omie API configuration.
type Config struct {
	Endpoint        string     `yaml:"endpoint"`
	AppKey          string     `yaml:"app_key"`
	AppSecret       string     `yaml:"app_secret"`
	PageDelayMillis int        `yaml:"page_delay_millis"`
	Faults          FaultTable `yaml:"faults"`
}

// PageDelay returns the inter-page pause, defaulting to 600ms.
func (c Config) PageDelay() time.Duration {
	if c.PageDelayMillis <= 0 {
		return defaultPageDelay
	}
	return time.Duration(c.PageDelayMillis) * time.Millisecond
}

// Client is the Omie API client. All calls go to a single endpoint and
// are distinguished by the "call" field of the request envelope.
type Client struct {
	endpoint   string
	appKey     string
	appSecret  string
	faults     FaultTable
	pageDelay  time.Duration
	httpClient httpretry.HTTPDoer

	// sleep is replaceable so tests run without real pacing waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Omie API client. The underlying HTTP client
// carries no automatic retry: the writer owns its retry policy and the
// list path tolerates partial results.
func NewClient(config Config) *Client {
	return &Client{
		endpoint:  config.Endpoint,
		appKey:    config.AppKey,
		appSecret: config.AppSecret,
		faults:    config.Faults.merged(),
		pageDelay: config.PageDelay(),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		sleep: sleepCtx,
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// SetSleep replaces the pacing primitive (useful for testing).
func (c *Client) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}

// FaultTable returns the classification table the client was built with.
func (c *Client) FaultTable() FaultTable {
	return c.faults
}

// call posts one RPC envelope. A decoded fault is returned separately
// from transport errors: faults are application-level results, not
// request failures, and Omie serves them with assorted HTTP statuses.
func (c *Client) call(ctx context.Context, call string, param any) (json.RawMessage, *Fault, error) {
	envelope := rpcRequest{
		Call:      call,
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
		Param:     []any{param},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal %s request: %w", call, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create %s request: %w", call, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s request failed: %w", call, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", call, err)
	}

	var fault Fault
	if err := json.Unmarshal(respBody, &fault); err == nil && fault.Code != "" {
		return nil, &fault, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%s returned status %d: %s", call, resp.StatusCode, respBody)
	}

	return respBody, nil, nil
}

// ListProducts pages through the full target catalog with a 1-indexed
// cursor and 500 records per page. A fault or transport error stops
// pagination and returns whatever was accumulated: an incomplete set only
// causes duplicate-insert attempts, which the writer classifies as
// skipped rather than corrupting anything.
func (c *Client) ListProducts(ctx context.Context) ([]ListedProduct, error) {
	var all []ListedProduct

	for page := 1; ; page++ {
		raw, fault, err := c.call(ctx, "ListarProdutos", listParams{
			Pagina:               page,
			RegistrosPorPagina:   listPageSize,
			ApenasImportadoAPI:   "N",
			FiltrarApenasOmiePDV: "N",
		})
		if err != nil {
			return all, fmt.Errorf("list page %d: %w", page, err)
		}
		if fault != nil {
			logger.Warn("target catalog list stopped on fault",
				"page", page,
				"fault_code", fault.Code,
				"fault_message", fault.Message)
			return all, nil
		}

		var resp listResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return all, fmt.Errorf("decode list page %d: %w", page, err)
		}
		if len(resp.Produtos) == 0 {
			return all, nil
		}
		all = append(all, resp.Produtos...)
		if resp.TotalDePaginas > 0 && page >= resp.TotalDePaginas {
			return all, nil
		}

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return all, err
		}
	}
}

// Probe issues a minimal-cost single-record list to decide whether the
// provider is currently applying a process-level block. It must run
// before the first write of a run so the insertion budget is not burned
// against a system known to be blocking.
func (c *Client) Probe(ctx context.Context) Availability {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, fault, err := c.call(ctx, "ListarProdutos", listParams{
		Pagina:               1,
		RegistrosPorPagina:   1,
		ApenasImportadoAPI:   "N",
		FiltrarApenasOmiePDV: "N",
	})
	if err != nil {
		return Availability{Available: false, Message: err.Error()}
	}
	if fault != nil && c.faults.Classify(*fault) == ClassProcessBlocked {
		return Availability{Available: false, Message: fault.Message}
	}
	// item-level faults do not indicate a blocked process
	return Availability{Available: true}
}

// UpdateProduct issues one AlterarProduto call for the secondary
// repricing pass. Faults are returned for the caller to log; they never
// abort the pass.
func (c *Client) UpdateProduct(ctx context.Context, up UpdateProduct) (*Fault, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, fault, err := c.call(ctx, "AlterarProduto", up)
	return fault, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
