package auth

import (
	"context"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const tokenRequestTimeout = 15 * time.Second

// Scopes requested during authorization.
var Scopes = []string{
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserReadPrivate,
}

// SpotifyOAuth performs the authorization-code exchanges against Spotify's accounts service.
type SpotifyOAuth struct {
	auth       *spotifyauth.Authenticator
	config     *oauth2.Config
	httpClient *http.Client
}

// NewSpotifyOAuth creates the OAuth capability for the given application credentials.
func NewSpotifyOAuth(clientID, clientSecret, redirectURL string) *SpotifyOAuth {
	return &SpotifyOAuth{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithScopes(Scopes...),
		),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		httpClient: &http.Client{Timeout: tokenRequestTimeout},
	}
}

// AuthURL returns the consent page URL. The dialog is always shown so the
// user can switch accounts.
func (o *SpotifyOAuth) AuthURL(state string) string {
	return o.auth.AuthURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for a token.
func (o *SpotifyOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return o.auth.Exchange(o.withClient(ctx), code)
}

// Refresh exchanges the refresh token of token for a new access token. The
// exchange always happens, even if token has not expired yet.
func (o *SpotifyOAuth) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	stale := &oauth2.Token{
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       time.Unix(1, 0),
	}
	return o.config.TokenSource(o.withClient(ctx), stale).Token()
}

func (o *SpotifyOAuth) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}
