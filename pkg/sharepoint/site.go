package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/transport"
)

const (
	// DefaultProtocol is the scheme used to reach the server.
	DefaultProtocol = "https"

	// DefaultPrefix is the path segment between the server and the site
	// name, as in https://contoso.sharepoint.com/sites/engineering.
	DefaultPrefix = "sites"

	// DefaultUserAgent identifies the client in the decorated
	// "NONISV|Company|App/Version" form.
	DefaultUserAgent = "NONISV|HashiCorp|HermesSharePoint/1.0"

	acceptVerboseJSON = "application/json;odata=verbose"
)

// Session provides the credential sent with every request.
type Session interface {
	Cookie() string
}

// RequestPreparer is implemented by sessions that need to inspect or modify
// outgoing requests before they are sent.
type RequestPreparer interface {
	PrepareRequest(req *transport.Request) error
}

// Config holds what is needed to create a Site.
type Config struct {
	// ServerURL is the server host, e.g. "contoso.sharepoint.com". A leading
	// "http://" or "https://" is stripped and used as Protocol when Protocol
	// is empty.
	ServerURL string

	// Name is the site name. Empty addresses the root site.
	Name string

	// Prefix defaults to "sites". Set it to a pointer to "" for sites that
	// live directly under the server.
	Prefix *string

	// Protocol is "https" (default) or "http".
	Protocol string

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	Verbose bool

	Session   Session
	Transport transport.Transport
	Registry  *Registry
	Logger    hclog.Logger

	// Now is the clock used for digest freshness. Default: time.Now.
	Now func() time.Time
}

// Site is a client handle to one SharePoint site.
//
// Protocol and verbosity may be changed between requests but are not
// guarded against concurrent modification.
type Site struct {
	serverURL string
	name      string
	url       string
	protocol  string
	userAgent string
	verbose   bool

	session   Session
	transport transport.Transport
	registry  *Registry
	digest    digestCache
	logger    hclog.Logger
	now       func() time.Time
}

// NewSite creates a site handle. No request is made.
func NewSite(cfg Config) (*Site, error) {
	server := strings.TrimSpace(cfg.ServerURL)
	protocol := strings.ToLower(strings.TrimSpace(cfg.Protocol))
	for _, scheme := range []string{"https", "http"} {
		if rest, ok := strings.CutPrefix(server, scheme+"://"); ok {
			server = rest
			if protocol == "" {
				protocol = scheme
			}
			break
		}
	}
	server = strings.TrimRight(server, "/")
	if server == "" {
		return nil, fmt.Errorf("server_url is required")
	}

	if protocol == "" {
		protocol = DefaultProtocol
	}
	if protocol != "http" && protocol != "https" {
		return nil, fmt.Errorf("protocol must be http or https, got: %s", cfg.Protocol)
	}

	prefix := DefaultPrefix
	if cfg.Prefix != nil {
		prefix = *cfg.Prefix
	}

	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	logger := cfg.Logger.Named("sharepoint")

	if cfg.Transport == nil {
		tr, err := transport.NewHTTPTransport(nil, logger)
		if err != nil {
			return nil, err
		}
		cfg.Transport = tr
	}
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Site{
		serverURL: server,
		name:      strings.Trim(cfg.Name, "/"),
		url:       joinPath(server, strings.Trim(prefix, "/"), strings.Trim(cfg.Name, "/")),
		protocol:  protocol,
		userAgent: cfg.UserAgent,
		verbose:   cfg.Verbose,
		session:   cfg.Session,
		transport: cfg.Transport,
		registry:  cfg.Registry,
		logger:    logger,
		now:       cfg.Now,
	}, nil
}

func joinPath(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// ServerURL returns the server host without scheme.
func (s *Site) ServerURL() string {
	return s.serverURL
}

// Name returns the site name.
func (s *Site) Name() string {
	return s.name
}

// URL returns the site address without scheme, e.g.
// "contoso.sharepoint.com/sites/engineering".
func (s *Site) URL() string {
	return s.url
}

func (s *Site) Protocol() string {
	return s.protocol
}

func (s *Site) SetProtocol(protocol string) {
	s.protocol = protocol
}

func (s *Site) Verbose() bool {
	return s.verbose
}

func (s *Site) SetVerbose(verbose bool) {
	s.verbose = verbose
}

func (s *Site) Session() Session {
	return s.session
}

func (s *Site) Registry() *Registry {
	return s.registry
}

func (s *Site) Logger() hclog.Logger {
	return s.logger
}

// Now returns the current time from the site clock.
func (s *Site) Now() time.Time {
	return s.now()
}

// AuthenticationPath is the forms sign-in endpoint of the server.
func (s *Site) AuthenticationPath() string {
	return fmt.Sprintf("%s://%s/_forms/default.aspx?wa=wsignin1.0", s.protocol, s.serverURL)
}

// APIPath composes the REST address of uri relative to the site web.
func (s *Site) APIPath(uri string) string {
	return fmt.Sprintf("%s://%s/_api/web/%s", s.protocol, s.url, uri)
}

// ContextInfoPath is the endpoint that issues form digests.
func (s *Site) ContextInfoPath() string {
	return fmt.Sprintf("%s://%s/_api/contextinfo", s.protocol, s.url)
}

// ContextInfo fetches the site web object.
func (s *Site) ContextInfo(ctx context.Context) (*Result, error) {
	return s.Query(ctx, http.MethodGet, "", nil)
}
