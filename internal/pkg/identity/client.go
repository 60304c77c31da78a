package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// User is the identity provider's view of the caller. The subject id is owned
// by the provider; this service only references it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Resolver turns a bearer token into a user. All request surfaces fail closed
// when resolution fails.
type Resolver interface {
	GetUser(ctx context.Context, bearerToken string) (*User, error)
}

// Client resolves bearer tokens against the external identity provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an identity client for the given auth service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUser fetches the user behind the bearer token. Any non-200 answer or
// missing subject id is treated as an invalid token.
func (c *Client) GetUser(ctx context.Context, bearerToken string) (*User, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("empty bearer token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider rejected token (status %d)", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity response missing subject id")
	}
	return &user, nil
}
