// Package session provides the credentials a sharepoint.Site sends with
// each request.
//
// Static and CookieFile carry the FedAuth/rtFa cookies of a signed-in
// browser session. OAuth2 attaches an access token from any
// oauth2.TokenSource and leaves the cookie empty.
package session

import (
	"strings"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

var (
	_ sharepoint.Session         = Static("")
	_ sharepoint.Session         = (*CookieFile)(nil)
	_ sharepoint.Session         = (*OAuth2)(nil)
	_ sharepoint.RequestPreparer = (*OAuth2)(nil)
)

// Static is a fixed cookie header value, e.g. "FedAuth=...; rtFa=...".
type Static string

// NewStatic trims cookie and returns it as a session.
func NewStatic(cookie string) Static {
	return Static(strings.TrimSpace(cookie))
}

func (s Static) Cookie() string {
	return string(s)
}
