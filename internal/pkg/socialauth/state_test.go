package socialauth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memNonceStore is an in-process NonceStore for tests.
type memNonceStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemNonceStore() *memNonceStore {
	return &memNonceStore{seen: make(map[string]bool)}
}

func (s *memNonceStore) Consume(_ context.Context, nonce string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[nonce] {
		return false, nil
	}
	s.seen[nonce] = true
	return true, nil
}

func TestStateCodecRoundTrip(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())

	token, err := codec.Issue("user-123", "facebook")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := codec.Redeem(context.Background(), token, "facebook")
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestStateCodecSingleUse(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())

	token, err := codec.Issue("user-123", "tiktok")
	require.NoError(t, err)

	_, err = codec.Redeem(context.Background(), token, "tiktok")
	require.NoError(t, err)

	_, err = codec.Redeem(context.Background(), token, "tiktok")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "already used")
}

func TestStateCodecPlatformMismatch(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())

	token, err := codec.Issue("user-123", "facebook")
	require.NoError(t, err)

	_, err = codec.Redeem(context.Background(), token, "twitter")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestStateCodecExpired(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())
	codec.ttl = -time.Minute

	token, err := codec.Issue("user-123", "facebook")
	require.NoError(t, err)

	_, err = codec.Redeem(context.Background(), token, "facebook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestStateCodecTamperedPayload(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())

	token, err := codec.Issue("user-123", "facebook")
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	require.Len(t, parts, 2)
	tampered := parts[0][:len(parts[0])-2] + "xx." + parts[1]

	_, err = codec.Redeem(context.Background(), tampered, "facebook")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestStateCodecWrongSecret(t *testing.T) {
	issuer := NewStateCodec("secret-a", newMemNonceStore())
	verifier := NewStateCodec("secret-b", newMemNonceStore())

	token, err := issuer.Issue("user-123", "facebook")
	require.NoError(t, err)

	_, err = verifier.Redeem(context.Background(), token, "facebook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestStateCodecRejectsRawUserID(t *testing.T) {
	// The legacy scheme put the bare user id on the wire; it must not verify.
	codec := NewStateCodec("test-secret", newMemNonceStore())

	_, err := codec.Redeem(context.Background(), "user-123", "facebook")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestStateCodecEmptyState(t *testing.T) {
	codec := NewStateCodec("test-secret", newMemNonceStore())

	_, err := codec.Redeem(context.Background(), "", "facebook")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestStateCodecIssueWithoutSecret(t *testing.T) {
	codec := NewStateCodec("", newMemNonceStore())

	_, err := codec.Issue("user-123", "facebook")
	require.Error(t, err)
	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}
