package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Send(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/_api/web/lists", r.URL.Path)
		assert.Equal(t, "application/json;odata=verbose", r.Header.Get("Accept"))
		assert.Equal(t, "FedAuth=abc", r.Header.Get("Cookie"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"Title":"Docs"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"d":{}}`))
	}))
	defer mockServer.Close()

	tr, err := NewHTTPTransport(nil, hclog.NewNullLogger())
	require.NoError(t, err)

	req := NewRequest("post", mockServer.URL+"/_api/web/lists")
	req.Body = []byte(`{"Title":"Docs"}`)
	req.Header.Set("Accept", "application/json;odata=verbose")
	req.Header.Set("Cookie", "FedAuth=abc")

	resp, err := tr.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"d":{}}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestHTTPTransport_Send_EmptyBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer mockServer.Close()

	tr, err := NewHTTPTransport(nil, nil)
	require.NoError(t, err)

	resp, err := tr.Send(context.Background(), NewRequest("", mockServer.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, resp.Body)
}

func TestHTTPTransport_Send_BodyLimit(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer mockServer.Close()

	tr := NewHTTPTransportWithClient(mockServer.Client(), 16, nil)

	_, err := tr.Send(context.Background(), NewRequest(http.MethodGet, mockServer.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit of 16 bytes")
}

func TestHTTPTransport_Send_Timeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	tr, err := NewHTTPTransport(&Config{Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), NewRequest(http.MethodGet, mockServer.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestHTTPTransport_VerboseLogging(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	}))
	defer mockServer.Close()

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Output: &buf,
		Level:  hclog.Info,
	})
	tr := NewHTTPTransportWithClient(mockServer.Client(), 0, logger)

	req := NewRequest(http.MethodPost, mockServer.URL)
	req.Header.Set("X-RequestDigest", "secret-digest")
	req.Header.Set("Authorization", "Bearer secret-digest")
	req.Verbose = true

	_, err := tr.Send(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sending request")
	assert.Contains(t, out, "received response")
	assert.Contains(t, out, "[redacted]")
	assert.NotContains(t, out, "secret-digest")
}

func TestHTTPTransport_QuietByDefault(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	}))
	defer mockServer.Close()

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Output: &buf,
		Level:  hclog.Info,
	})
	tr := NewHTTPTransportWithClient(mockServer.Client(), 0, logger)

	_, err := tr.Send(context.Background(), NewRequest(http.MethodGet, mockServer.URL))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		errorMsg string
	}{
		{
			name:   "Defaults",
			config: DefaultConfig(),
		},
		{
			name:     "Negative timeout",
			config:   &Config{Timeout: -1 * time.Second},
			errorMsg: "timeout",
		},
		{
			name:     "Negative body limit",
			config:   &Config{MaxResponseBodyBytes: -1},
			errorMsg: "max_response_body_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestConfig_NewHTTPClient(t *testing.T) {
	tlsVerify := false
	cfg := &Config{TLSVerify: &tlsVerify, Timeout: 5 * time.Second}

	client := cfg.NewHTTPClient()
	assert.Equal(t, 5*time.Second, client.Timeout)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, tr.TLSClientConfig)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
}
