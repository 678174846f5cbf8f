package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// DigestContext is an acquired form digest together with its own freshness
// check. ContextWebInformation implements it.
type DigestContext interface {
	FormDigest() string
	IsUpToDate() bool
}

// digestCache holds the single live digest of a site. The mutex covers the
// whole check, acquire and store sequence so concurrent callers share one
// acquisition.
type digestCache struct {
	mu      sync.Mutex
	current DigestContext
}

// ensureFresh returns the cached digest, calling acquire first when there
// is none or it is stale. A failed acquisition leaves the cache untouched.
func (c *digestCache) ensureFresh(
	ctx context.Context,
	acquire func(context.Context) (DigestContext, error),
) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.current.IsUpToDate() {
		fresh, err := acquire(ctx)
		if err != nil {
			return "", err
		}
		c.current = fresh
	}
	return c.current.FormDigest(), nil
}

func (c *digestCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *digestCache) peek() DigestContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// FormDigest returns a valid X-RequestDigest value, acquiring a new one
// from the contextinfo endpoint when needed.
func (s *Site) FormDigest(ctx context.Context) (string, error) {
	return s.digest.ensureFresh(ctx, s.acquireFormDigest)
}

// InvalidateFormDigest drops the cached digest; the next mutating request
// acquires a new one.
func (s *Site) InvalidateFormDigest() {
	s.digest.invalidate()
}

// CurrentDigest returns the cached digest context without refreshing it.
func (s *Site) CurrentDigest() DigestContext {
	return s.digest.peek()
}

func (s *Site) acquireFormDigest(ctx context.Context) (DigestContext, error) {
	s.logger.Debug("acquiring form digest", "url", s.ContextInfoPath())

	result, err := s.Query(ctx, http.MethodPost, s.ContextInfoPath(), nil, acquiringDigest())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire form digest: %w", err)
	}

	obj, ok := result.One()
	if !ok {
		return nil, fmt.Errorf("failed to acquire form digest: contextinfo returned %s, expected an object", result.Kind)
	}
	dc, ok := obj.(DigestContext)
	if !ok {
		return nil, fmt.Errorf("failed to acquire form digest: contextinfo returned %s", obj.TypeName())
	}
	if dc.FormDigest() == "" {
		return nil, fmt.Errorf("failed to acquire form digest: contextinfo returned an empty digest")
	}

	s.logger.Debug("acquired form digest", "type", obj.TypeName())
	return dc, nil
}
