package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/transport"
)

// RequestHook may modify an outgoing request. Hooks run after the session
// has prepared the request.
type RequestHook func(req *transport.Request) error

// QueryOption configures a single query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	skipDecode      bool
	acquiringDigest bool
	hooks           []RequestHook
}

// SkipDecode returns the response body as is, without JSON decoding.
func SkipDecode() QueryOption {
	return func(o *queryOptions) {
		o.skipDecode = true
	}
}

// WithRequestHook adds a hook that runs just before the request is sent.
func WithRequestHook(hook RequestHook) QueryOption {
	return func(o *queryOptions) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) QueryOption {
	return WithRequestHook(func(req *transport.Request) error {
		req.Header.Set(key, value)
		return nil
	})
}

// acquiringDigest marks the contextinfo request itself, which must not ask
// for a digest.
func acquiringDigest() QueryOption {
	return func(o *queryOptions) {
		o.acquiringDigest = true
	}
}

// Query sends a request and maps the response.
//
// uri is either an absolute URL or a path relative to the site web API
// root. Any method other than GET carries body and, unless it is the digest
// acquisition itself, the form digest headers.
//
// A JSON body is mapped to a Result; a server-encoded error yields a
// *DataError. Without a decodable body, a status >= 400 yields a
// *RequestError and anything else the raw body.
func (s *Site) Query(ctx context.Context, method, uri string, body []byte, opts ...QueryOption) (*Result, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	req := transport.NewRequest(method, s.resolveURL(uri))
	if s.session != nil {
		if cookie := s.session.Cookie(); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}
	req.Header.Set("Accept", acceptVerboseJSON)
	req.Header.Set("User-Agent", s.userAgent)

	if method != http.MethodGet {
		req.Header.Set("Content-Type", acceptVerboseJSON)
		req.Body = body
		if !o.acquiringDigest {
			digest, err := s.FormDigest(ctx)
			if err != nil {
				return nil, err
			}
			req.Header.Set("X-RequestDigest", digest)
			req.Header.Set("Authorization", "Bearer "+digest)
		}
	}
	req.Verbose = s.verbose

	if preparer, ok := s.session.(RequestPreparer); ok {
		if err := preparer.PrepareRequest(req); err != nil {
			return nil, fmt.Errorf("session failed to prepare request: %w", err)
		}
	}
	for _, hook := range o.hooks {
		if err := hook(req); err != nil {
			return nil, fmt.Errorf("request hook failed: %w", err)
		}
	}

	s.logger.Debug("query", "method", req.Method, "url", req.URL)

	resp, err := s.transport.Send(ctx, req)
	if err != nil {
		return nil, &RequestError{
			Method:      req.Method,
			URL:         req.URL,
			RequestBody: string(body),
			Err:         err,
		}
	}
	return s.classify(req, body, resp, o.skipDecode)
}

func (s *Site) resolveURL(uri string) string {
	if strings.HasPrefix(uri, "http") {
		return uri
	}
	return s.APIPath(uri)
}

func (s *Site) classify(req *transport.Request, body []byte, resp *transport.Response, skipDecode bool) (*Result, error) {
	if !skipDecode && len(resp.Body) > 0 {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(resp.Body, &doc); err != nil {
			return nil, &RequestError{
				Method:       req.Method,
				URL:          req.URL,
				StatusCode:   resp.StatusCode,
				RequestBody:  string(body),
				ResponseBody: string(resp.Body),
				Err:          fmt.Errorf("invalid JSON response: %w", err),
			}
		}

		if raw, ok := doc[errorKey]; ok && !isJSONNull(raw) {
			var payload any
			_ = json.Unmarshal(raw, &payload)
			return nil, &DataError{
				Payload:     payload,
				URL:         req.URL,
				RequestBody: string(body),
				StatusCode:  resp.StatusCode,
			}
		}

		wrapper, ok := doc[wrapperKey]
		if !ok {
			return nil, &RequestError{
				Method:       req.Method,
				URL:          req.URL,
				StatusCode:   resp.StatusCode,
				RequestBody:  string(body),
				ResponseBody: string(resp.Body),
				Err:          errors.New(`response has no "d" wrapper`),
			}
		}
		res, err := mapEnvelope(s, s.registry, wrapper)
		if errors.Is(err, errMalformedEnvelope) {
			return nil, &RequestError{
				Method:       req.Method,
				URL:          req.URL,
				StatusCode:   resp.StatusCode,
				RequestBody:  string(body),
				ResponseBody: string(resp.Body),
				Err:          err,
			}
		}
		return res, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &RequestError{
			Method:       req.Method,
			URL:          req.URL,
			StatusCode:   resp.StatusCode,
			RequestBody:  string(body),
			ResponseBody: string(resp.Body),
		}
	}

	return &Result{Kind: ResultRaw, Raw: resp.Body}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
