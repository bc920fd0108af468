// Package triplestore talks SPARQL 1.1 protocol to a Jena dataset.
package triplestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"paralog-backend/base"
	"paralog-backend/results"
	"strings"
	"time"

	"github.com/knakk/digest"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const sparqlResultsJSON = "application/sparql-results+json"

// Client queries and updates one dataset. It is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithMetrics records request durations.
func WithMetrics(m *Metrics) Option {
	return func(client *Client) {
		client.metrics = m
	}
}

// NewClient builds a client for the configured dataset. Requests use HTTP
// digest credentials when both user and password are set.
func NewClient(cfg base.JenaConfig, opts ...Option) *Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.DigestEnabled() {
		dt := digest.NewTransport(cfg.User, cfg.Password)
		// the digest transport resends the challenged request, so bodies must be replayable
		dt.Transport = replayBodyTransport{next: http.DefaultTransport}
		transport = dt
	}
	c := &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint(), "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the dataset base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query runs a SELECT or ASK query via HTTP GET and parses the JSON result.
func (c *Client) Query(ctx context.Context, query string, headers map[string]string) (*results.BindingSet, error) {
	start := time.Now()
	slog.Debug("sending query to triplestore", "query", query, "headers", headerNames(headers))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/query?"+url.Values{"query": {query}}.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", sparqlResultsJSON)
	setHeaders(req, headers)

	status, body, err := c.doRequest(req)
	if err != nil {
		err = classify("failed querying triplestore", err)
		c.metrics.observe("query", outcome(err), start)
		return nil, err
	}
	if !statusIsOK(status) {
		err = newHTTPError("failed querying triplestore", status, body)
		c.metrics.observe("query", outcome(err), start)
		return nil, err
	}
	bs, err := results.ParseJSONBytes(body)
	if err != nil {
		c.metrics.observe("query", outcome(err), start)
		return nil, err
	}
	c.metrics.observe("query", outcome(nil), start)
	slog.Debug("query result from triplestore", "rows", bs.Len())
	return bs, nil
}

// Update runs a SPARQL update via HTTP POST.
func (c *Client) Update(ctx context.Context, update string, headers map[string]string) error {
	start := time.Now()
	slog.Debug("sending update to triplestore", "update", update, "headers", headerNames(headers))

	form := url.Values{}
	form.Set("update", update)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/update", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setHeaders(req, headers)

	status, body, err := c.doRequest(req)
	if err != nil {
		err = classify("failed updating triplestore", err)
	} else if !statusIsOK(status) {
		err = newHTTPError("failed updating triplestore", status, body)
	}
	c.metrics.observe("update", outcome(err), start)
	return err
}

// Ping checks that the dataset answers queries.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Query(ctx, "ASK {}", nil)
	return err
}

// doRequest executes an HTTP request and reads the response body.
// It returns the status code, response bytes, and any error encountered.
func (c *Client) doRequest(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

// replayBodyTransport gives every attempt a fresh copy of the request body.
type replayBodyTransport struct {
	next http.RoundTripper
}

func (t replayBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}
	return t.next.RoundTrip(req)
}

func setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// headerNames lists header names only; values may carry credentials.
func headerNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	return names
}

func outcome(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, results.ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
