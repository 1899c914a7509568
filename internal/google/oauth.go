package google

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig identifies the Google OAuth client used for the owner's
// calendar connection.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// oauthScopes are the scopes required to query free/busy data and insert
// events on the owner's calendar.
var oauthScopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
}

// oauth2Config builds the oauth2 configuration for all Google calls.
func (c OAuthConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  c.RedirectURL,
		Scopes:       oauthScopes,
	}
}
