package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole request including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseBodyBytes caps how much of a response body is read.
	DefaultMaxResponseBodyBytes int64 = 10 << 20
)

// Config contains configuration for the HTTP transport.
//
// Example configuration (HCL):
//
//	transport {
//	  timeout    = "30s"
//	  tls_verify = true
//	}
type Config struct {
	// TLSVerify controls TLS certificate verification
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool

	// Timeout for a single request
	// Default: 30 seconds
	Timeout time.Duration

	// MaxResponseBodyBytes limits the size of a response body
	// Default: 10 MiB
	MaxResponseBodyBytes int64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify:            &tlsVerify,
		Timeout:              DefaultTimeout,
		MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
	}
}

// applyDefaults fills zero values from DefaultConfig.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.MaxResponseBodyBytes == 0 {
		c.MaxResponseBodyBytes = defaults.MaxResponseBodyBytes
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got: %v", c.Timeout)
	}
	if c.MaxResponseBodyBytes < 0 {
		return fmt.Errorf(
			"max_response_body_bytes must be non-negative, got: %d",
			c.MaxResponseBodyBytes)
	}
	return nil
}

// NewHTTPClient creates a configured HTTP client for this transport
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
