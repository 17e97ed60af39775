// Package provider implements identifier.Client against the external
// financial-data provider's HTTP API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carbonlink/backend/internal/domain/identifier"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxResponseSize = 8 << 20

// Errors returned by the client
var (
	ErrProviderUnavailable   = errors.New("provider: service unavailable")
	ErrProviderRequestFailed = errors.New("provider: request failed")
	ErrInvalidScheme         = errors.New("provider: unsupported identifier scheme")
)

// Config holds client settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// MaxIdentifiersPerRequest is the provider's documented per-request cap
	MaxIdentifiersPerRequest int
	// MaxConcurrentRequests bounds sub-batch fan-out
	MaxConcurrentRequests int
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxIdentifiersPerRequest <= 0 {
		c.MaxIdentifiersPerRequest = 10
	}
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = 1
	}
}

// Client is the HTTP implementation of identifier.Client
type Client struct {
	config     Config
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a provider client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg.applyDefaults()
	if cfg.BaseURL == "" {
		return nil, errors.New("provider: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("provider: invalid base URL: %w", err)
	}

	return &Client{
		config:  cfg,
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("provider"),
	}, nil
}

// ConvertIdentifiers resolves ids in sub-batches of at most
// MaxIdentifiersPerRequest, issued concurrently up to MaxConcurrentRequests.
// A failing sub-batch marks its own inputs as failed and leaves the others
// untouched. The returned slice is in input order.
func (c *Client) ConvertIdentifiers(ctx context.Context, scheme identifier.Scheme, ids []string) ([]identifier.Resolution, error) {
	if !scheme.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}

	results := make([]identifier.Resolution, len(ids))
	size := c.config.MaxIdentifiersPerRequest

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrentRequests)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		g.Go(func() error {
			c.convertBatch(gctx, scheme, ids[start:end], results[start:end])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// convertBatch fills out, which is aligned with batch
func (c *Client) convertBatch(ctx context.Context, scheme identifier.Scheme, batch []string, out []identifier.Resolution) {
	for i, id := range batch {
		out[i] = identifier.Resolution{Input: identifier.Reference{Scheme: scheme, Value: id}}
	}

	var resp convertResponse
	err := c.do(ctx, http.MethodPost, c.endpoint("v1", "identifiers", "convert"), convertRequest{Scheme: scheme, IDs: batch}, &resp)
	if errors.Is(err, identifier.ErrDataUnavailable) {
		for i := range out {
			out[i].Outcome = identifier.OutcomeUnavailable
		}
		return
	}
	if err != nil {
		c.logger.Warn("Identifier conversion batch failed",
			zap.String("scheme", string(scheme)),
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		for i := range out {
			out[i].Outcome = identifier.OutcomeFailed
			out[i].Err = err
		}
		return
	}

	byInput := make(map[string]convertResult, len(resp.Results))
	for _, r := range resp.Results {
		byInput[r.Input] = r
	}

	for i := range out {
		r, ok := byInput[out[i].Input.Value]
		switch {
		case !ok:
			out[i].Outcome = identifier.OutcomeFailed
			out[i].Err = fmt.Errorf("%w: no result for %q", ErrProviderRequestFailed, out[i].Input.Value)
		case r.Error == errDataUnavailable:
			out[i].Outcome = identifier.OutcomeUnavailable
		case r.Error != "":
			out[i].Outcome = identifier.OutcomeFailed
			out[i].Err = fmt.Errorf("%w: %s", ErrProviderRequestFailed, r.Error)
		default:
			out[i].Outcome = identifier.OutcomeResolved
			out[i].Name = r.Name
			out[i].Identities = r.Identities
		}
	}
}

// RelatedCompanies lists the provider's known customers or suppliers of a company
func (c *Client) RelatedCompanies(ctx context.Context, ref identifier.Reference, direction identifier.Direction) ([]identifier.Candidate, error) {
	if !ref.Scheme.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, ref.Scheme)
	}
	if direction != identifier.DirectionCustomers && direction != identifier.DirectionSuppliers {
		return nil, fmt.Errorf("provider: unsupported direction %q", direction)
	}

	var resp relatedResponse
	endpoint := c.endpoint("v1", "companies", string(ref.Scheme), ref.Value, string(direction))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error == errDataUnavailable {
		return nil, identifier.ErrDataUnavailable
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderRequestFailed, resp.Error)
	}

	candidates := make([]identifier.Candidate, len(resp.Companies))
	for i, company := range resp.Companies {
		candidates[i] = company.toCandidate()
	}
	return candidates, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.JoinPath(escaped...).String()
}

// do sends one request and decodes a JSON body into out. An error body
// carrying DATA_UNAVAILABLE maps to identifier.ErrDataUnavailable whatever
// the status code.
func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("provider: failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("provider: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("provider: failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error == errDataUnavailable {
			return identifier.ErrDataUnavailable
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: HTTP %d", ErrProviderUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("%w: HTTP %d", ErrProviderRequestFailed, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("provider: failed to decode response: %w", err)
	}
	return nil
}

var _ identifier.Client = (*Client)(nil)
