package socialauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// twitterProvider implements the Twitter/X v2 dialect: Basic-auth token
// transport plus the plain PKCE challenge the client app sends alongside the
// consent redirect.
type twitterProvider struct {
	oauth      oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// The client application performs the consent redirect with a plain
// code_challenge; the verifier sent during exchange has to match it.
const twitterCodeVerifier = "challenge"

// NewTwitterProvider creates the Twitter/X adapter.
func NewTwitterProvider(creds config.OAuthCredentials) Provider {
	return &twitterProvider{
		oauth: oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://twitter.com/i/oauth2/authorize",
				TokenURL:  "https://api.twitter.com/2/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiURL:     "https://api.twitter.com/2",
		httpClient: newUpstreamClient(),
	}
}

func (p *twitterProvider) Slug() string               { return "twitter" }
func (p *twitterProvider) Platform() string           { return models.PlatformTwitter }
func (p *twitterProvider) StateBinding() StateBinding { return BindState }

func (p *twitterProvider) AuthorizationURL(state, redirectURI string) (string, error) {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return "", &ConfigurationError{Platform: p.Slug(), Missing: "client id/secret"}
	}
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", twitterCodeVerifier),
		oauth2.SetAuthURLParam("code_challenge_method", "plain"),
	), nil
}

func (p *twitterProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return nil, &ConfigurationError{Platform: p.Slug(), Missing: "client id/secret"}
	}
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", twitterCodeVerifier))
	if err != nil {
		return nil, exchangeError(p.Slug(), err)
	}
	return fromOAuth2Token(tok), nil
}

func (p *twitterProvider) ResolveAccount(ctx context.Context, token *Token) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/users/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", Message: "Provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	var payload struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}
	if resp.StatusCode != http.StatusOK || payload.Data.Username == "" {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", StatusCode: resp.StatusCode, Message: "Failed to get profile"}
	}
	return &Account{Name: payload.Data.Username}, nil
}

// fromOAuth2Token converts an x/oauth2 token into the adapter token shape.
func fromOAuth2Token(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// exchangeError maps an x/oauth2 exchange failure onto the upstream taxonomy,
// keeping only the provider's error description.
func exchangeError(platform string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		msg := rerr.ErrorDescription
		if msg == "" {
			msg = "Failed to get access token"
		}
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return &UpstreamError{Platform: platform, Op: "exchange code", StatusCode: status, Message: msg, Err: err}
	}
	return &UpstreamError{Platform: platform, Op: "exchange code", Message: "Failed to get access token", Err: err}
}
