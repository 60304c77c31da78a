package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/identity"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/middleware"
)

const testBearerToken = "valid-token"

// fakeResolver accepts exactly one bearer token.
type fakeResolver struct {
	user identity.User
}

func (r *fakeResolver) GetUser(_ context.Context, bearerToken string) (*identity.User, error) {
	if bearerToken != testBearerToken {
		return nil, fmt.Errorf("unknown token")
	}
	u := r.user
	return &u, nil
}

func newAuthedApp(t *testing.T) (*fiber.App, fiber.Router) {
	t.Helper()
	app := fiber.New()
	resolver := &fakeResolver{user: identity.User{ID: "user-1", Email: "user@example.com"}}
	group := app.Group("/api/v1", middleware.RequireIdentity(resolver))
	return app, group
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testBearerToken)
	return req
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// multipartRequest builds an authenticated upload request with an explicit
// per-part content type.
func multipartRequest(t *testing.T, target, filename, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testBearerToken)
	return req
}

// memAccountStore is an in-memory ConnectedAccountRepository.
type memAccountStore struct {
	mu   sync.Mutex
	rows map[string]*models.ConnectedAccount
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{rows: make(map[string]*models.ConnectedAccount)}
}

func (r *memAccountStore) key(userID, platform string) string { return userID + "|" + platform }

func (r *memAccountStore) Upsert(account *models.ConnectedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *account
	r.rows[r.key(account.UserID, account.Platform)] = &cp
	return nil
}

func (r *memAccountStore) GetByUserAndPlatform(userID, platform string) (*models.ConnectedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[r.key(userID, platform)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *memAccountStore) ListByUser(userID string) ([]models.ConnectedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConnectedAccount
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memAccountStore) ListActivePlatforms(userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, row := range r.rows {
		if row.UserID == userID && row.IsActive {
			out = append(out, row.Platform)
		}
	}
	return out, nil
}

func (r *memAccountStore) Deactivate(userID, platform string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[r.key(userID, platform)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.IsActive = false
	return nil
}

func (r *memAccountStore) Delete(userID, platform string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[r.key(userID, platform)]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, r.key(userID, platform))
	return nil
}

// memPostStore is an in-memory PostRepository.
type memPostStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Post
}

func newMemPostStore() *memPostStore {
	return &memPostStore{nextID: 1, rows: make(map[uint]*models.Post)}
}

func (r *memPostStore) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	cp := *post
	r.rows[post.ID] = &cp
	return nil
}

func (r *memPostStore) GetByIDForUser(id uint, userID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memPostStore) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[post.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *post
	r.rows[post.ID] = &cp
	return nil
}

func (r *memPostStore) ListByUser(userID string, offset, limit int) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
