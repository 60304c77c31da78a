package socialauth

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// linkedinProvider is a plain authorization-code dialect. Its callback is
// handled by the client application, which relays the code over its own
// authenticated session, so no state token is involved.
type linkedinProvider struct {
	oauth      oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewLinkedInProvider creates the LinkedIn adapter.
func NewLinkedInProvider(creds config.OAuthCredentials) Provider {
	return &linkedinProvider{
		oauth: oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       []string{"openid", "profile", "email", "w_member_social"},
			Endpoint:     linkedin.Endpoint,
		},
		apiURL:     "https://api.linkedin.com/v2",
		httpClient: newUpstreamClient(),
	}
}

func (p *linkedinProvider) Slug() string               { return "linkedin" }
func (p *linkedinProvider) Platform() string           { return models.PlatformLinkedIn }
func (p *linkedinProvider) StateBinding() StateBinding { return BindSession }

func (p *linkedinProvider) AuthorizationURL(state, redirectURI string) (string, error) {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return "", &ConfigurationError{Platform: p.Slug(), Missing: "client id/secret"}
	}
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(state), nil
}

func (p *linkedinProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return nil, &ConfigurationError{Platform: p.Slug(), Missing: "client id/secret"}
	}
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, exchangeError(p.Slug(), err)
	}
	return fromOAuth2Token(tok), nil
}

func (p *linkedinProvider) ResolveAccount(ctx context.Context, token *Token) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", Message: "Provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	var profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", StatusCode: resp.StatusCode, Message: "Failed to get profile"}
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	if name == "" {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", Message: "Profile has no usable name"}
	}
	return &Account{Name: name}, nil
}
