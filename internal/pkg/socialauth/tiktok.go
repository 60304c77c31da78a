package socialauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// tiktokProvider implements the TikTok v2 dialect. TikTok deviates from
// RFC 6749 by naming the client id "client_key" in both the authorize URL and
// the token form, which is why this adapter posts its own form instead of
// going through x/oauth2.
type tiktokProvider struct {
	creds        config.OAuthCredentials
	authorizeURL string
	apiURL       string
	httpClient   *http.Client
}

// NewTikTokProvider creates the TikTok adapter.
func NewTikTokProvider(creds config.OAuthCredentials) Provider {
	return &tiktokProvider{
		creds:        creds,
		authorizeURL: "https://www.tiktok.com/v2/auth/authorize",
		apiURL:       "https://open.tiktokapis.com/v2",
		httpClient:   newUpstreamClient(),
	}
}

func (p *tiktokProvider) Slug() string               { return "tiktok" }
func (p *tiktokProvider) Platform() string           { return models.PlatformTikTok }
func (p *tiktokProvider) StateBinding() StateBinding { return BindState }

const tiktokScopes = "user.info.basic,video.upload,video.publish"

func (p *tiktokProvider) AuthorizationURL(state, redirectURI string) (string, error) {
	if !p.creds.IsConfigured() {
		return "", &ConfigurationError{Platform: p.Slug(), Missing: "client key/secret"}
	}
	q := url.Values{}
	q.Set("client_key", p.creds.ClientID)
	q.Set("scope", tiktokScopes)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return p.authorizeURL + "?" + q.Encode(), nil
}

type tiktokTokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (p *tiktokProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !p.creds.IsConfigured() {
		return nil, &ConfigurationError{Platform: p.Slug(), Missing: "client key/secret"}
	}
	form := url.Values{}
	form.Set("client_key", p.creds.ClientID)
	form.Set("client_secret", p.creds.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/oauth/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "exchange code", Message: "Provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	var tok tiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "exchange code", StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}
	// TikTok reports errors with a 200 and an error field, so both paths
	// must be checked.
	if resp.StatusCode < 200 || resp.StatusCode > 299 || tok.Error != "" || tok.AccessToken == "" {
		msg := tok.ErrorDescription
		if msg == "" {
			msg = "Failed to get access token"
		}
		return nil, &UpstreamError{Platform: p.Slug(), Op: "exchange code", StatusCode: resp.StatusCode, Message: msg}
	}

	token := &Token{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if tok.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return token, nil
}

func (p *tiktokProvider) ResolveAccount(ctx context.Context, token *Token) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user/info/", nil)
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
			User struct {
				DisplayName string `json:"display_name"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "fetch profile", StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}

	name := payload.Data.User.DisplayName
	if name == "" {
		name = "TikTok User"
	}
	return &Account{Name: name}, nil
}
