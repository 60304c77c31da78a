package socialauth

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

// StateBinding describes where a provider's redirect lands and therefore
// where the persisted user id comes from on callback.
type StateBinding int

const (
	// BindState: the provider redirects straight back to this service. The
	// callback request carries no caller session, so the user id travels
	// inside the signed state token.
	BindState StateBinding = iota

	// BindSession: the provider redirects to the client application, which
	// relays the code over its own authenticated session. The user id comes
	// from that session and no state parameter is issued.
	BindSession
)

// Token is the credential material returned by a token exchange. A zero
// Expiry means the token does not expire.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Account is the resolved external identity for a successful link. When Token
// is non-nil it replaces the exchanged token as the persisted credential
// (Facebook persists the page token, not the user token).
type Account struct {
	Name  string
	Token *Token
}

// Provider encapsulates one external OAuth dialect.
type Provider interface {
	// Slug is the route identifier (oauth-<slug>).
	Slug() string

	// Platform is the value persisted in connected_accounts. Differs from
	// Slug only for Facebook, which links an Instagram business account.
	Platform() string

	StateBinding() StateBinding

	// AuthorizationURL builds the provider consent URL. Pure string work;
	// fails only on missing configuration.
	AuthorizationURL(state, redirectURI string) (string, error)

	// ExchangeCode swaps the authorization code for tokens.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error)

	// ResolveAccount fetches a human-presentable label for the linked
	// account, plus replacement credentials where the dialect requires it.
	ResolveAccount(ctx context.Context, token *Token) (*Account, error)
}

// TokenExtender is the optional capability of exchanging a short-lived token
// for a long-lived one before anything is persisted. Only Facebook has it.
type TokenExtender interface {
	ExtendToken(ctx context.Context, token *Token) (*Token, error)
}

// upstreamTimeout bounds every call to an external token or profile endpoint.
// A timeout fails the whole callback before the single upsert.
const upstreamTimeout = 10 * time.Second

func newUpstreamClient() *http.Client {
	return &http.Client{Timeout: upstreamTimeout}
}

// Registry maps platform slugs to their adapters.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds the registry with all five platform adapters wired to
// the configured credentials. Unconfigured providers are still registered;
// they surface a ConfigurationError when used.
func NewRegistry(creds config.ProviderCredentials) *Registry {
	return NewRegistryWith(
		NewFacebookProvider(creds.Facebook),
		NewTikTokProvider(creds.TikTok),
		NewTwitterProvider(creds.Twitter),
		NewLinkedInProvider(creds.LinkedIn),
		NewYouTubeProvider(creds.YouTube),
	)
}

// NewRegistryWith builds a registry from explicit providers.
func NewRegistryWith(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Slug()] = p
	}
	return &Registry{providers: m}
}

// Get returns the adapter for a slug.
func (r *Registry) Get(slug string) (Provider, error) {
	p, ok := r.providers[slug]
	if !ok {
		return nil, &ValidationError{Message: "unknown platform: " + slug}
	}
	return p, nil
}

// Slugs returns all registered platform slugs, sorted.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.providers))
	for slug := range r.providers {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
