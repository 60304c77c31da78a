package socialauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// youtubeProvider uses the Google dialect. Offline access plus forced consent
// is required so the first link always yields a refresh token. The callback
// is relayed by the client application (BindSession), like LinkedIn.
type youtubeProvider struct {
	oauth      oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewYouTubeProvider creates the YouTube/Google adapter.
func NewYouTubeProvider(creds config.OAuthCredentials) Provider {
	return &youtubeProvider{
		oauth: oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/youtube.upload",
				"https://www.googleapis.com/auth/youtube.readonly",
			},
			Endpoint: google.Endpoint,
		},
		apiURL:     "https://www.googleapis.com/youtube/v3",
		httpClient: newUpstreamClient(),
	}
}

func (p *youtubeProvider) Slug() string               { return "youtube" }
func (p *youtubeProvider) Platform() string           { return models.PlatformYouTube }
func (p *youtubeProvider) StateBinding() StateBinding { return BindSession }

func (p *youtubeProvider) AuthorizationURL(state, redirectURI string) (string, error) {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" {
		return "", &ConfigurationError{Platform: p.Slug(), Missing: "client id/secret"}
	}
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (p *youtubeProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
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

// ResolveAccount labels the connection with the user's channel title. An
// account without a channel cannot receive uploads, so it is not linkable.
func (p *youtubeProvider) ResolveAccount(ctx context.Context, token *Token) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/channels?part=snippet&mine=true", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch channel", Message: "Provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	var payload struct {
		Items []struct {
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch channel", StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch channel", StatusCode: resp.StatusCode, Message: "Failed to get channel"}
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("%w: no YouTube channel found", ErrNoLinkableAccount)
	}
	return &Account{Name: payload.Items[0].Snippet.Title}, nil
}
