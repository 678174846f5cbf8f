package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport sends requests with net/http.
type HTTPTransport struct {
	client  HTTPDoer
	maxBody int64
	logger  hclog.Logger
}

// Compile-time check
var _ Transport = (*HTTPTransport)(nil)

// redactedHeaders never appear in logs.
var redactedHeaders = map[string]struct{}{
	"Authorization":   {},
	"Cookie":          {},
	"Set-Cookie":      {},
	"X-Requestdigest": {},
}

// NewHTTPTransport creates a transport from cfg. A nil cfg uses defaults.
func NewHTTPTransport(cfg *Config, logger hclog.Logger) (*HTTPTransport, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	return NewHTTPTransportWithClient(cfg.NewHTTPClient(), cfg.MaxResponseBodyBytes, logger), nil
}

// NewHTTPTransportWithClient wraps an existing client. maxBody <= 0 uses
// DefaultMaxResponseBodyBytes.
func NewHTTPTransportWithClient(client HTTPDoer, maxBody int64, logger hclog.Logger) *HTTPTransport {
	if client == nil {
		client = DefaultConfig().NewHTTPClient()
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxResponseBodyBytes
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &HTTPTransport{
		client:  client,
		maxBody: maxBody,
		logger:  logger.Named("transport"),
	}
}

// Send executes req and reads the full response body.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	log := t.logger.Debug
	if req.Verbose {
		log = t.logger.Info
	}
	log("sending request",
		"method", method,
		"url", req.URL,
		"headers", formatHeaders(httpReq.Header),
		"body_bytes", len(req.Body),
	)

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", t.maxBody)
	}
	if len(body) == 0 {
		body = nil
	}

	log("received response",
		"method", method,
		"url", req.URL,
		"status", resp.StatusCode,
		"headers", formatHeaders(resp.Header),
		"body_bytes", len(body),
		"duration", time.Since(start),
	)
	if req.Verbose && t.logger.IsTrace() {
		t.logger.Trace("response body", "body", string(body))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// formatHeaders renders headers in a stable order with credentials redacted.
func formatHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		value := strings.Join(h[k], ",")
		if _, ok := redactedHeaders[http.CanonicalHeaderKey(k)]; ok {
			value = "[redacted]"
		}
		parts = append(parts, k+"="+value)
	}
	return strings.Join(parts, " ")
}
