package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Lloyd3312/brightpost-ai/app/models"
)

func newConnectionsTestApp(t *testing.T, accounts *memAccountStore) *fiber.App {
	t.Helper()
	ct := NewConnectionsController(accounts)
	app, group := newAuthedApp(t)
	group.Get("/connections", ct.HandleList)
	group.Delete("/connections/:platform", ct.HandleDisconnect)
	group.Patch("/connections/:platform/deactivate", ct.HandleDeactivate)
	return app
}

func TestListConnectionsHidesTokens(t *testing.T) {
	accounts := newMemAccountStore()
	require.NoError(t, accounts.Upsert(&models.ConnectedAccount{
		UserID:      "user-1",
		Platform:    models.PlatformTikTok,
		AccessToken: "super-secret",
		AccountName: "creatorhandle",
		IsActive:    true,
	}))
	require.NoError(t, accounts.Upsert(&models.ConnectedAccount{
		UserID:      "someone-else",
		Platform:    models.PlatformTwitter,
		AccountName: "not-yours",
	}))
	app := newConnectionsTestApp(t, accounts)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/connections", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	conns, ok := body["connections"].([]any)
	require.True(t, ok)
	require.Len(t, conns, 1)

	conn := conns[0].(map[string]any)
	assert.Equal(t, models.PlatformTikTok, conn["platform"])
	assert.Equal(t, "creatorhandle", conn["account_name"])
	assert.Equal(t, true, conn["is_active"])
	assert.NotContains(t, conn, "access_token")
	assert.NotContains(t, conn, "refresh_token")
}

func TestDisconnect(t *testing.T) {
	accounts := newMemAccountStore()
	require.NoError(t, accounts.Upsert(&models.ConnectedAccount{
		UserID:   "user-1",
		Platform: models.PlatformTikTok,
	}))
	app := newConnectionsTestApp(t, accounts)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/connections/tiktok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = accounts.GetByUserAndPlatform("user-1", models.PlatformTikTok)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDisconnectUnknownPlatform(t *testing.T) {
	app := newConnectionsTestApp(t, newMemAccountStore())

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/connections/tiktok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeactivateKeepsRow(t *testing.T) {
	accounts := newMemAccountStore()
	require.NoError(t, accounts.Upsert(&models.ConnectedAccount{
		UserID:   "user-1",
		Platform: models.PlatformInstagram,
		IsActive: true,
	}))
	app := newConnectionsTestApp(t, accounts)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/connections/instagram/deactivate", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	row, err := accounts.GetByUserAndPlatform("user-1", models.PlatformInstagram)
	require.NoError(t, err)
	assert.False(t, row.IsActive)
}
