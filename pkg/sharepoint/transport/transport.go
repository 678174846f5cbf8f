package transport

import (
	"context"
	"net/http"
)

// Request is an outgoing request. Hooks receive it by pointer and may change
// any field before it is sent.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header

	// Verbose asks the transport to log the exchange at info level.
	Verbose bool
}

// NewRequest returns a request with an empty header set.
func NewRequest(method, url string) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
}

// Response is the status and body of a completed exchange. Body is nil when
// the server sent no content.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single network round trip.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f Func) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
