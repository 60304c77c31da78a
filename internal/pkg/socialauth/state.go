package socialauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NonceStore marks state nonces as used; the first Consume for a nonce
// returns true, later ones false.
type NonceStore interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

// StateTTL is how long an issued state token stays redeemable. The window
// only needs to cover the user's trip through the provider's consent screen.
const StateTTL = 10 * time.Minute

type stateClaims struct {
	UserID    string `json:"uid"`
	Platform  string `json:"pfm"`
	Nonce     string `json:"non"`
	ExpiresAt int64  `json:"exp"`
}

// StateCodec issues and redeems the state parameter for providers whose
// callback lands on this service unauthenticated. Instead of the raw user id,
// state carries HMAC-signed claims with a single-use nonce, so intercepting
// or guessing a callback URL cannot bind tokens to a foreign user.
type StateCodec struct {
	secret []byte
	ttl    time.Duration
	nonces NonceStore
}

// NewStateCodec creates a codec signing with secret and consuming nonces
// through the given store.
func NewStateCodec(secret string, nonces NonceStore) *StateCodec {
	return &StateCodec{secret: []byte(secret), ttl: StateTTL, nonces: nonces}
}

// Issue creates a signed state token binding userID to a connection attempt
// for the given platform slug.
func (s *StateCodec) Issue(userID, slug string) (string, error) {
	if len(s.secret) == 0 {
		return "", &ConfigurationError{Platform: slug, Missing: "state secret"}
	}
	claims := stateClaims{
		UserID:    userID,
		Platform:  slug,
		Nonce:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	sig := s.sign(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Redeem verifies the token, checks expiry and platform, consumes the nonce
// and returns the bound user id. A token can be redeemed exactly once.
func (s *StateCodec) Redeem(ctx context.Context, token, slug string) (string, error) {
	claims, err := s.verify(token)
	if err != nil {
		return "", err
	}
	if claims.Platform != slug {
		return "", &ValidationError{Message: "state was issued for a different platform"}
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return "", &ValidationError{Message: "state expired, please restart the connection"}
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	fresh, err := s.nonces.Consume(ctx, claims.Nonce, ttl)
	if err != nil {
		return "", fmt.Errorf("state redemption: %w", err)
	}
	if !fresh {
		return "", &ValidationError{Message: "state already used"}
	}
	return claims.UserID, nil
}

func (s *StateCodec) verify(token string) (*stateClaims, error) {
	if token == "" {
		return nil, &ValidationError{Message: "missing state"}
	}
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, &ValidationError{Message: "invalid state format"}
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &ValidationError{Message: "invalid state encoding"}
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, &ValidationError{Message: "invalid state encoding"}
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return nil, &ValidationError{Message: "invalid state signature"}
	}
	var claims stateClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &ValidationError{Message: "invalid state payload"}
	}
	if claims.UserID == "" || claims.Nonce == "" {
		return nil, &ValidationError{Message: "invalid state payload"}
	}
	return &claims, nil
}

func (s *StateCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// IsValidationError reports whether err is client-input related.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
