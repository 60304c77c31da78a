package socialauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

var testCreds = config.OAuthCredentials{ClientID: "client-id", ClientSecret: "client-secret"}

func TestTikTokAuthorizationURL(t *testing.T) {
	p := NewTikTokProvider(testCreds)

	raw, err := p.AuthorizationURL("signed-state", "https://api.example.com/api/v1/oauth-tiktok")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	// TikTok names the client id "client_key".
	assert.Equal(t, "client-id", q.Get("client_key"))
	assert.Empty(t, q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "signed-state", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "video.publish")
}

func TestTikTokExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/oauth/token/", r.URL.Path)
		assert.Equal(t, "client-id", r.PostForm.Get("client_key"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tt-access",
			"refresh_token": "tt-refresh",
			"expires_in":    86400,
		})
	}))
	defer srv.Close()

	p := NewTikTokProvider(testCreds).(*tiktokProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	token, err := p.ExchangeCode(context.Background(), "auth-code", "https://api.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "tt-access", token.AccessToken)
	assert.Equal(t, "tt-refresh", token.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), token.Expiry, time.Minute)
}

func TestTikTokExchangeErrorInOKBody(t *testing.T) {
	// TikTok reports failures with HTTP 200 and an error field.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "Authorization code is expired.",
		})
	}))
	defer srv.Close()

	p := NewTikTokProvider(testCreds).(*tiktokProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	_, err := p.ExchangeCode(context.Background(), "stale-code", "https://api.example.com/cb")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Authorization code is expired.", upstream.Message)
}

func TestTikTokResolveAccountFallbackName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tt-access", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"user": map[string]any{}}})
	}))
	defer srv.Close()

	p := NewTikTokProvider(testCreds).(*tiktokProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	account, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "tt-access"})
	require.NoError(t, err)
	assert.Equal(t, "TikTok User", account.Name)
}

func TestTwitterAuthorizationURL(t *testing.T) {
	p := NewTwitterProvider(testCreds)

	raw, err := p.AuthorizationURL("signed-state", "https://api.example.com/api/v1/oauth-twitter")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "challenge", q.Get("code_challenge"))
	assert.Equal(t, "plain", q.Get("code_challenge_method"))
	assert.Contains(t, q.Get("scope"), "offline.access")
	assert.Contains(t, q.Get("scope"), "tweet.write")
}

func TestTwitterExchangeUsesBasicAuthAndVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "challenge", r.PostForm.Get("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tw-access",
			"refresh_token": "tw-refresh",
			"token_type":    "bearer",
			"expires_in":    7200,
		})
	}))
	defer srv.Close()

	p := NewTwitterProvider(testCreds).(*twitterProvider)
	p.oauth.Endpoint.TokenURL = srv.URL + "/2/oauth2/token"

	token, err := p.ExchangeCode(context.Background(), "auth-code", "https://api.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "tw-access", token.AccessToken)
	assert.Equal(t, "tw-refresh", token.RefreshToken)
	assert.False(t, token.Expiry.IsZero())
}

func TestTwitterExchangeMapsRetrieveError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_request",
			"error_description": "Value passed for the authorization code was invalid.",
		})
	}))
	defer srv.Close()

	p := NewTwitterProvider(testCreds).(*twitterProvider)
	p.oauth.Endpoint.TokenURL = srv.URL + "/2/oauth2/token"

	_, err := p.ExchangeCode(context.Background(), "bad-code", "https://api.example.com/cb")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "Value passed for the authorization code was invalid.", upstream.Message)
}

func TestTwitterResolveAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tw-access", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "1", "username": "brightposter"}})
	}))
	defer srv.Close()

	p := NewTwitterProvider(testCreds).(*twitterProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	account, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "tw-access"})
	require.NoError(t, err)
	assert.Equal(t, "brightposter", account.Name)
}

func TestLinkedInAuthorizationURL(t *testing.T) {
	p := NewLinkedInProvider(testCreds)

	raw, err := p.AuthorizationURL("", "https://app.example.com/linkedin/callback")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/linkedin/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "w_member_social")
	assert.Equal(t, BindSession, p.StateBinding())
}

func TestLinkedInResolveAccountPrefersNameOverEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userinfo", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"name": "Jordan Example", "email": "jordan@example.com"})
	}))
	defer srv.Close()

	p := NewLinkedInProvider(testCreds).(*linkedinProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	account, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "li-access"})
	require.NoError(t, err)
	assert.Equal(t, "Jordan Example", account.Name)
}

func TestLinkedInResolveAccountFallsBackToEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"email": "jordan@example.com"})
	}))
	defer srv.Close()

	p := NewLinkedInProvider(testCreds).(*linkedinProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	account, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "li-access"})
	require.NoError(t, err)
	assert.Equal(t, "jordan@example.com", account.Name)
}

func TestYouTubeAuthorizationURL(t *testing.T) {
	p := NewYouTubeProvider(testCreds)

	raw, err := p.AuthorizationURL("", "https://app.example.com/youtube/callback")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "youtube.upload")
}

func TestYouTubeResolveAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"snippet": map[string]string{"title": "Bright Channel"}}},
		})
	}))
	defer srv.Close()

	p := NewYouTubeProvider(testCreds).(*youtubeProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	account, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "yt-access"})
	require.NoError(t, err)
	assert.Equal(t, "Bright Channel", account.Name)
}

func TestYouTubeResolveAccountNoChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	p := NewYouTubeProvider(testCreds).(*youtubeProvider)
	p.apiURL = srv.URL
	p.httpClient = srv.Client()

	_, err := p.ResolveAccount(context.Background(), &Token{AccessToken: "yt-access"})
	assert.ErrorIs(t, err, ErrNoLinkableAccount)
}

func TestRegistrySlugs(t *testing.T) {
	registry := NewRegistry(config.ProviderCredentials{})
	assert.Equal(t, []string{"facebook", "linkedin", "tiktok", "twitter", "youtube"}, registry.Slugs())

	_, err := registry.Get("facebook")
	assert.NoError(t, err)
	_, err = registry.Get("myspace")
	assert.Error(t, err)
}
