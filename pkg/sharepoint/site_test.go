package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/transport"
)

// fakeServer records requests and answers them with handler.
type fakeServer struct {
	mu       sync.Mutex
	requests []*transport.Request
	handler  func(req *transport.Request) (*transport.Response, error)
}

func (f *fakeServer) Send(_ context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	handler := f.handler
	f.mu.Unlock()
	return handler(req)
}

func (f *fakeServer) recorded() []*transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*transport.Request(nil), f.requests...)
}

// count returns the number of requests whose URL ends with suffix.
func (f *fakeServer) count(suffix string) int {
	n := 0
	for _, r := range f.recorded() {
		if strings.HasSuffix(r.URL, suffix) {
			n++
		}
	}
	return n
}

type staticSession string

func (s staticSession) Cookie() string {
	return string(s)
}

func jsonResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json;odata=verbose"}},
		Body:       []byte(body),
	}
}

func contextInfoBody(digest string, timeoutSeconds int) string {
	return fmt.Sprintf(`{"d":{"GetContextWebInformation":{
		"__metadata":{"type":"SP.ContextWebInformation"},
		"FormDigestValue":%q,
		"FormDigestTimeoutSeconds":%d,
		"LibraryVersion":"16.0.24322.12006",
		"SiteFullUrl":"https://contoso.sharepoint.com/sites/eng",
		"WebFullUrl":"https://contoso.sharepoint.com/sites/eng"}}}`, digest, timeoutSeconds)
}

// newTestSite returns a site for contoso.sharepoint.com/sites/eng whose
// contextinfo endpoint issues "digest-1" and whose other endpoints are
// served by handler.
func newTestSite(t *testing.T, handler func(req *transport.Request) (*transport.Response, error)) (*Site, *fakeServer) {
	t.Helper()

	fake := &fakeServer{}
	fake.handler = func(req *transport.Request) (*transport.Response, error) {
		if strings.HasSuffix(req.URL, "/_api/contextinfo") {
			return jsonResponse(http.StatusOK, contextInfoBody("digest-1", 1800)), nil
		}
		return handler(req)
	}

	site, err := NewSite(Config{
		ServerURL: "contoso.sharepoint.com",
		Name:      "eng",
		Session:   staticSession("FedAuth=abc; rtFa=def"),
		Transport: fake,
		Logger:    hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	return site, fake
}

func TestNewSite_URLComposition(t *testing.T) {
	empty := ""
	custom := "teams"

	tests := []struct {
		name        string
		cfg         Config
		wantURL     string
		wantAPI     string
		wantAuth    string
		wantContext string
	}{
		{
			name:        "default prefix",
			cfg:         Config{ServerURL: "contoso.sharepoint.com", Name: "eng"},
			wantURL:     "contoso.sharepoint.com/sites/eng",
			wantAPI:     "https://contoso.sharepoint.com/sites/eng/_api/web/lists",
			wantAuth:    "https://contoso.sharepoint.com/_forms/default.aspx?wa=wsignin1.0",
			wantContext: "https://contoso.sharepoint.com/sites/eng/_api/contextinfo",
		},
		{
			name:        "empty prefix",
			cfg:         Config{ServerURL: "intranet.local", Name: "hr", Prefix: &empty, Protocol: "http"},
			wantURL:     "intranet.local/hr",
			wantAPI:     "http://intranet.local/hr/_api/web/lists",
			wantAuth:    "http://intranet.local/_forms/default.aspx?wa=wsignin1.0",
			wantContext: "http://intranet.local/hr/_api/contextinfo",
		},
		{
			name:        "custom prefix and scheme in server url",
			cfg:         Config{ServerURL: "http://contoso.local/", Name: "/eng/", Prefix: &custom},
			wantURL:     "contoso.local/teams/eng",
			wantAPI:     "http://contoso.local/teams/eng/_api/web/lists",
			wantAuth:    "http://contoso.local/_forms/default.aspx?wa=wsignin1.0",
			wantContext: "http://contoso.local/teams/eng/_api/contextinfo",
		},
		{
			name:        "root site",
			cfg:         Config{ServerURL: "contoso.sharepoint.com", Prefix: &empty},
			wantURL:     "contoso.sharepoint.com",
			wantAPI:     "https://contoso.sharepoint.com/_api/web/lists",
			wantAuth:    "https://contoso.sharepoint.com/_forms/default.aspx?wa=wsignin1.0",
			wantContext: "https://contoso.sharepoint.com/_api/contextinfo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, err := NewSite(tt.cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.wantURL, site.URL())
			assert.Equal(t, tt.wantAPI, site.APIPath("lists"))
			assert.Equal(t, tt.wantAuth, site.AuthenticationPath())
			assert.Equal(t, tt.wantContext, site.ContextInfoPath())
		})
	}
}

func TestNewSite_Defaults(t *testing.T) {
	site, err := NewSite(Config{ServerURL: "contoso.sharepoint.com", Name: "eng"})
	require.NoError(t, err)

	assert.Equal(t, "contoso.sharepoint.com", site.ServerURL())
	assert.Equal(t, "eng", site.Name())
	assert.Equal(t, DefaultProtocol, site.Protocol())
	assert.False(t, site.Verbose())
	assert.NotNil(t, site.Registry())
	assert.NotNil(t, site.Logger())
	assert.Nil(t, site.Session())
	assert.Nil(t, site.CurrentDigest())
}

func TestNewSite_Errors(t *testing.T) {
	_, err := NewSite(Config{Name: "eng"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_url is required")

	_, err = NewSite(Config{ServerURL: "contoso.sharepoint.com", Protocol: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol must be http or https")
}

func TestSite_SetProtocolAndVerbose(t *testing.T) {
	site, fake := newTestSite(t, func(req *transport.Request) (*transport.Response, error) {
		return jsonResponse(http.StatusOK, `{"d":null}`), nil
	})

	site.SetProtocol("http")
	site.SetVerbose(true)

	_, err := site.Query(context.Background(), http.MethodGet, "lists", nil)
	require.NoError(t, err)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "http://contoso.sharepoint.com/sites/eng/_api/web/lists", reqs[0].URL)
	assert.True(t, reqs[0].Verbose)
}

func TestSite_ContextInfo(t *testing.T) {
	site, fake := newTestSite(t, func(req *transport.Request) (*transport.Response, error) {
		return jsonResponse(http.StatusOK, `{"d":{
			"__metadata":{"type":"SP.Web","uri":"https://contoso.sharepoint.com/sites/eng/_api/Web"},
			"Title":"Engineering",
			"Id":"8f4b2f6e-1c2d-4e5f-9a8b-7c6d5e4f3a2b"}}`), nil
	})

	res, err := site.ContextInfo(context.Background())
	require.NoError(t, err)

	obj, ok := res.One()
	require.True(t, ok)
	web, ok := obj.(*Web)
	require.True(t, ok, "expected *Web, got %T", obj)
	assert.Equal(t, "Engineering", web.Title)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/eng/_api/web/", reqs[0].URL)
}

func TestSite_Now(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	site, err := NewSite(Config{
		ServerURL: "contoso.sharepoint.com",
		Now:       func() time.Time { return fixed },
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, site.Now())
}
