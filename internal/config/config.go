// Package config loads the HCL configuration of the sharepoint CLI.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/session"
	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/transport"
)

// Config is the configuration file of the sharepoint CLI.
//
// Example configuration (HCL):
//
//	site {
//	  server_url = "contoso.sharepoint.com"
//	  name       = "engineering"
//	}
//
//	session {
//	  cookie_file = "~/.sharepoint/cookie"
//	}
//
//	transport {
//	  timeout = "30s"
//	}
type Config struct {
	Site      *Site      `hcl:"site,block"`
	Session   *Session   `hcl:"session,block"`
	Transport *Transport `hcl:"transport,block"`
}

// Site addresses the SharePoint site.
type Site struct {
	// ServerURL is the server host, e.g. "contoso.sharepoint.com".
	ServerURL string `hcl:"server_url" json:"server_url"`

	// Name is the site name below the prefix.
	Name string `hcl:"name,optional" json:"name"`

	// Prefix is the path between server and site name.
	// Default: "sites"
	Prefix *string `hcl:"prefix,optional" json:"prefix"`

	// Protocol is "https" or "http".
	// Default: "https"
	Protocol string `hcl:"protocol,optional" json:"protocol"`

	UserAgent string `hcl:"user_agent,optional" json:"user_agent"`

	// Verbose logs every request and response.
	Verbose bool `hcl:"verbose,optional" json:"verbose"`
}

// Session selects the credential. At most one of Cookie, CookieFile and
// OAuth2 may be set; none sends requests anonymously.
type Session struct {
	// Cookie is a literal cookie header. Prefer env("...").
	Cookie string `hcl:"cookie,optional" json:"cookie"`

	// CookieFile is a file holding the cookies, see session.CookieFile.
	CookieFile string `hcl:"cookie_file,optional" json:"cookie_file"`

	OAuth2 *OAuth2 `hcl:"oauth2,block" json:"oauth2"`
}

// OAuth2 configures the client credentials grant.
type OAuth2 struct {
	ClientID     string   `hcl:"client_id" json:"client_id"`
	ClientSecret string   `hcl:"client_secret" json:"client_secret"`
	TokenURL     string   `hcl:"token_url" json:"token_url"`
	Scopes       []string `hcl:"scopes,optional" json:"scopes"`
}

// Transport configures the HTTP client.
type Transport struct {
	// Timeout for a single request, as a duration string.
	// Default: "30s"
	Timeout string `hcl:"timeout,optional" json:"timeout"`

	// TLSVerify controls TLS certificate verification.
	// Default: true
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tls_verify"`

	// MaxResponseBodyBytes limits the size of a response body.
	// Default: 10 MiB
	MaxResponseBodyBytes int64 `hcl:"max_response_body_bytes,optional" json:"max_response_body_bytes"`
}

// lookupEnv backs the env() configuration function.
var lookupEnv = os.Getenv

// envFunc returns the value of an environment variable, or "" if unset.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(lookupEnv(args[0].AsString())), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// LoadFile reads and validates a configuration file. The file name must end
// in .hcl or .json.
func LoadFile(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := hclsimple.Decode(path, src, evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every block and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Site == nil {
		result = multierror.Append(result, fmt.Errorf("site block is required"))
	} else if err := c.Site.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("site: %w", err))
	}

	if c.Session != nil {
		if err := c.Session.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("session: %w", err))
		}
	}

	if c.Transport != nil {
		if err := c.Transport.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("transport: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func (s *Site) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ServerURL, validation.Required),
		validation.Field(&s.Protocol, validation.In("http", "https")),
	)
}

func (s *Session) Validate() error {
	set := 0
	for _, ok := range []bool{s.Cookie != "", s.CookieFile != "", s.OAuth2 != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("only one of cookie, cookie_file and oauth2 may be set")
	}

	if s.OAuth2 != nil {
		if err := s.OAuth2.Validate(); err != nil {
			return fmt.Errorf("oauth2: %w", err)
		}
	}
	return nil
}

func (o *OAuth2) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.ClientID, validation.Required),
		validation.Field(&o.ClientSecret, validation.Required),
		validation.Field(&o.TokenURL, validation.Required, is.URL),
	)
}

func (t *Transport) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Timeout, validation.By(validDuration)),
		validation.Field(&t.MaxResponseBodyBytes, validation.Min(int64(0))),
	)
}

func validDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as \"30s\"")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// TransportConfig converts the transport block, which may be absent.
func (c *Config) TransportConfig() (*transport.Config, error) {
	tc := transport.DefaultConfig()
	if c.Transport == nil {
		return tc, nil
	}

	if c.Transport.Timeout != "" {
		d, err := time.ParseDuration(c.Transport.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid transport timeout: %w", err)
		}
		tc.Timeout = d
	}
	if c.Transport.TLSVerify != nil {
		tc.TLSVerify = c.Transport.TLSVerify
	}
	if c.Transport.MaxResponseBodyBytes > 0 {
		tc.MaxResponseBodyBytes = c.Transport.MaxResponseBodyBytes
	}
	return tc, nil
}

// NewSession builds the configured session, or nil when none is set. A
// leading "~" in cookie_file is expanded to the home directory.
func (c *Config) NewSession(ctx context.Context, fs afero.Fs) (sharepoint.Session, error) {
	s := c.Session
	switch {
	case s == nil:
		return nil, nil
	case s.Cookie != "":
		return session.NewStatic(s.Cookie), nil
	case s.CookieFile != "":
		path, err := homedir.Expand(s.CookieFile)
		if err != nil {
			return nil, fmt.Errorf("error expanding cookie_file: %w", err)
		}
		return session.NewCookieFile(fs, path)
	case s.OAuth2 != nil:
		return session.NewClientCredentials(ctx, session.ClientCredentialsConfig{
			ClientID:     s.OAuth2.ClientID,
			ClientSecret: s.OAuth2.ClientSecret,
			TokenURL:     s.OAuth2.TokenURL,
			Scopes:       s.OAuth2.Scopes,
		}), nil
	default:
		return nil, nil
	}
}

// NewSite builds a ready site handle with its session and transport.
func (c *Config) NewSite(ctx context.Context, fs afero.Fs, logger hclog.Logger) (*sharepoint.Site, error) {
	if c.Site == nil {
		return nil, fmt.Errorf("site block is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	tc, err := c.TransportConfig()
	if err != nil {
		return nil, err
	}
	tr, err := transport.NewHTTPTransport(tc, logger)
	if err != nil {
		return nil, err
	}

	sess, err := c.NewSession(ctx, fs)
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return sharepoint.NewSite(sharepoint.Config{
		ServerURL: c.Site.ServerURL,
		Name:      c.Site.Name,
		Prefix:    c.Site.Prefix,
		Protocol:  c.Site.Protocol,
		UserAgent: c.Site.UserAgent,
		Verbose:   c.Site.Verbose,
		Session:   sess,
		Transport: tr,
		Logger:    logger,
	})
}
