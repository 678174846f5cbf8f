package session

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint/transport"
)

// OAuth2 authorizes requests with an access token. The token replaces the
// Authorization header the site sets on mutating requests; the form digest
// is still sent as X-RequestDigest.
type OAuth2 struct {
	source oauth2.TokenSource
}

// NewOAuth2 wraps src so tokens are reused until they expire.
func NewOAuth2(src oauth2.TokenSource) *OAuth2 {
	return &OAuth2{source: oauth2.ReuseTokenSource(nil, src)}
}

// ClientCredentialsConfig configures app-only authentication against an
// Azure AD token endpoint.
type ClientCredentialsConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// NewClientCredentials returns a session that obtains tokens with the client
// credentials grant. ctx is used for every token request.
func NewClientCredentials(ctx context.Context, cfg ClientCredentialsConfig) *OAuth2 {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return NewOAuth2(cc.TokenSource(ctx))
}

// Cookie is always empty; OAuth2 sessions carry no cookie.
func (o *OAuth2) Cookie() string {
	return ""
}

// PrepareRequest sets the Authorization header from the current token.
func (o *OAuth2) PrepareRequest(req *transport.Request) error {
	tok, err := o.source.Token()
	if err != nil {
		return fmt.Errorf("error obtaining oauth2 token: %w", err)
	}
	req.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}
