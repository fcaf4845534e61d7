// Package langfuse provides a read-only client for the Langfuse public API.
package langfuse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ObservationTypeGeneration filters observation listings to model calls.
const ObservationTypeGeneration = "GENERATION"

// Client defines the Langfuse read operations used by the analyzer.
type Client interface {
	// ListTraces retrieves one page of traces.
	ListTraces(ctx context.Context, params TraceListParams) (*TraceListResponse, error)
	// ListObservations retrieves one page of observations.
	ListObservations(ctx context.Context, params ObservationListParams) (*ObservationListResponse, error)
}

// Meta is the pagination envelope returned by all list endpoints.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Trace is a single trace record. Input and Output are left as raw JSON
// maps: Langfuse does not constrain their shape, so decoding into typed
// records happens downstream.
type Trace struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
}

// Observation is a single observation record. Cost and usage values are
// decoded as raw maps because the API omits keys and occasionally changes
// value types between deployments.
type Observation struct {
	ID           string         `json:"id"`
	TraceID      string         `json:"traceId"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	CostDetails  map[string]any `json:"costDetails"`
	UsageDetails map[string]any `json:"usageDetails"`
}

// TraceListResponse is the response from GET /api/public/traces.
type TraceListResponse struct {
	Data []Trace `json:"data"`
	Meta Meta    `json:"meta"`
}

// ObservationListResponse is the response from GET /api/public/observations.
type ObservationListResponse struct {
	Data []Observation `json:"data"`
	Meta Meta          `json:"meta"`
}

// TraceListParams are the query parameters for the trace listing endpoint.
type TraceListParams struct {
	Page          int
	Limit         int
	FromTimestamp string
}

func (p TraceListParams) toQuery() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.FromTimestamp != "" {
		q.Set("fromTimestamp", p.FromTimestamp)
	}
	return q
}

// ObservationListParams are the query parameters for the observation
// listing endpoint.
type ObservationListParams struct {
	Page  int
	Limit int
	Type  string
}

func (p ObservationListParams) toQuery() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	return q
}

// StatusError reports a non-2xx response from the API. The fetch layer
// inspects it to decide whether a different timestamp representation is
// worth trying.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return "langfuse: unexpected status " + strconv.Itoa(e.Code) + ": " + e.Body
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Langfuse host (for testing or self-hosted
// deployments).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate limiter.
func WithRateLimit(rps rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rps, burst)
	}
}

type httpClient struct {
	publicKey string
	secretKey string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Langfuse API client authenticating with the given
// public/secret key pair via HTTP Basic auth.
func NewClient(publicKey, secretKey, host string, opts ...Option) Client {
	c := &httpClient{
		publicKey: publicKey,
		secretKey: secretKey,
		baseURL:   host,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a GET with exponential backoff retries on transient
// failures (429, 500, 502, 503). Returns the response body and status code
// on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "langfuse: rate limiter wait")
		}

		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "langfuse: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("langfuse: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "langfuse: create request")
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return eris.Wrap(err, "langfuse: request failed")
	}

	if statusCode != http.StatusOK {
		return &StatusError{Code: statusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "langfuse: unmarshal response")
	}

	return nil
}

func (c *httpClient) ListTraces(ctx context.Context, params TraceListParams) (*TraceListResponse, error) {
	var result TraceListResponse
	if err := c.get(ctx, "/api/public/traces", params.toQuery(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) ListObservations(ctx context.Context, params ObservationListParams) (*ObservationListResponse, error) {
	var result ObservationListResponse
	if err := c.get(ctx, "/api/public/observations", params.toQuery(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
