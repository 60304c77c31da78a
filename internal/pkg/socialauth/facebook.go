package socialauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// facebookProvider implements the Facebook Graph dialect. It is the one
// adapter with extra steps: the short-lived user token is extended to a
// long-lived one, and the persisted credential is the page token of the
// user's first page, resolved together with its Instagram business account.
type facebookProvider struct {
	creds      config.OAuthCredentials
	dialogURL  string
	graphURL   string
	httpClient *http.Client
}

// NewFacebookProvider creates the Facebook/Instagram adapter.
func NewFacebookProvider(creds config.OAuthCredentials) Provider {
	return &facebookProvider{
		creds:      creds,
		dialogURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		graphURL:   "https://graph.facebook.com/v18.0",
		httpClient: newUpstreamClient(),
	}
}

func (p *facebookProvider) Slug() string               { return "facebook" }
func (p *facebookProvider) Platform() string           { return models.PlatformInstagram }
func (p *facebookProvider) StateBinding() StateBinding { return BindState }

const facebookScopes = "instagram_basic,instagram_content_publish,pages_read_engagement,pages_manage_posts"

func (p *facebookProvider) AuthorizationURL(state, redirectURI string) (string, error) {
	if !p.creds.IsConfigured() {
		return "", &ConfigurationError{Platform: p.Slug(), Missing: "app id/secret"}
	}
	q := url.Values{}
	q.Set("client_id", p.creds.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	q.Set("scope", facebookScopes)
	return p.dialogURL + "?" + q.Encode(), nil
}

type facebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExchangeCode swaps the code for a short-lived user token. The Graph token
// endpoint is a GET with query parameters, unlike every other dialect.
func (p *facebookProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !p.creds.IsConfigured() {
		return nil, &ConfigurationError{Platform: p.Slug(), Missing: "app id/secret"}
	}
	q := url.Values{}
	q.Set("client_id", p.creds.ClientID)
	q.Set("client_secret", p.creds.ClientSecret)
	q.Set("redirect_uri", redirectURI)
	q.Set("code", code)

	data, err := p.graphGet(ctx, "exchange code", p.graphURL+"/oauth/access_token?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var tok facebookTokenResponse
	if err := json.Unmarshal(data, &tok); err != nil || tok.AccessToken == "" {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "exchange code", Message: "Failed to get access token", Err: err}
	}
	// The short-lived expiry is irrelevant; ExtendToken replaces it before
	// anything is persisted.
	return &Token{AccessToken: tok.AccessToken}, nil
}

// ExtendToken exchanges the short-lived token for a long-lived one. A failure
// here fails the whole callback; no partial-success state is persisted.
func (p *facebookProvider) ExtendToken(ctx context.Context, token *Token) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", p.creds.ClientID)
	q.Set("client_secret", p.creds.ClientSecret)
	q.Set("fb_exchange_token", token.AccessToken)

	data, err := p.graphGet(ctx, "extend token", p.graphURL+"/oauth/access_token?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var tok facebookTokenResponse
	if err := json.Unmarshal(data, &tok); err != nil || tok.AccessToken == "" {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "extend token", Message: "Failed to get long-lived token", Err: err}
	}
	return &Token{AccessToken: tok.AccessToken}, nil
}

type facebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// ResolveAccount picks the user's first page and resolves its Instagram
// business account. No page means the link cannot succeed. The page token is
// what gets persisted; page-scoped tokens do not expire.
func (p *facebookProvider) ResolveAccount(ctx context.Context, token *Token) (*Account, error) {
	q := url.Values{}
	q.Set("access_token", token.AccessToken)
	data, err := p.graphGet(ctx, "list pages", p.graphURL+"/me/accounts?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var pages struct {
		Data []facebookPage `json:"data"`
	}
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: "list pages", Message: "Malformed pages response", Err: err}
	}
	if len(pages.Data) == 0 {
		return nil, fmt.Errorf("%w: no Facebook page found, please create a Facebook page first", ErrNoLinkableAccount)
	}
	page := pages.Data[0]

	igq := url.Values{}
	igq.Set("fields", "instagram_business_account")
	igq.Set("access_token", page.AccessToken)
	if _, err := p.graphGet(ctx, "resolve instagram account", p.graphURL+"/"+page.ID+"?"+igq.Encode()); err != nil {
		return nil, err
	}

	return &Account{
		Name:  page.Name,
		Token: &Token{AccessToken: page.AccessToken},
	}, nil
}

func (p *facebookProvider) graphGet(ctx context.Context, op, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: op, Message: "Provider unreachable", Err: err}
	}
	defer resp.Body.Close()

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Platform: p.Slug(), Op: op, StatusCode: resp.StatusCode, Message: "Malformed provider response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := graphErrorMessage(body)
		return nil, &UpstreamError{Platform: p.Slug(), Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func graphErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "Failed to get access token"
}
