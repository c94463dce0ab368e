// Package xbz implements the client for the XBZ inventory API, the
// source side of the catalog sync.
package xbz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/catalog-sync/internal/pkg/httpretry"
)

// ErrSourceUnavailable marks a failed catalog fetch. There is no partial
// processing of the source catalog: the whole run aborts.
var ErrSourceUnavailable = errors.New("xbz: source catalog unavailable")

// Config holds XBZ API configuration.
type Config struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	CNPJ           string `yaml:"cnpj"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Client is the XBZ API client.
type Client struct {
	baseURL    string
	token      string
	cnpj       string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new XBZ API client.
func NewClient(config Config) *Client {
	timeout := config.Timeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: config.BaseURL,
		token:   config.Token,
		cnpj:    config.CNPJ,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: timeout,
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// FetchAll returns the complete source catalog in provider order. The
// endpoint enumerates everything in one response; any transport or
// format error wraps ErrSourceUnavailable.
func (c *Client) FetchAll(ctx context.Context) ([]Product, error) {
	params := url.Values{}
	params.Set("token", c.token)
	params.Set("cnpj", c.cnpj)
	reqURL := fmt.Sprintf("%s/GetListaDeProdutos?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSourceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, body)
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", ErrSourceUnavailable, err)
	}

	return products, nil
}
