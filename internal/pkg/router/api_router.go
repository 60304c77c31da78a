package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/Lloyd3312/brightpost-ai/app/controllers"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/identity"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/middleware"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/socialauth"
)

// ApiRouter installs the /api/v1 surface: one oauth endpoint per platform,
// the upload gate, connection management and post persistence.
type ApiRouter struct {
	resolver    identity.Resolver
	registry    *socialauth.Registry
	oauth       *controllers.OAuthController
	upload      *controllers.UploadController
	connections *controllers.ConnectionsController
	posts       *controllers.PostController
}

// NewApiRouter creates the API router with all its controllers.
func NewApiRouter(
	resolver identity.Resolver,
	registry *socialauth.Registry,
	oauth *controllers.OAuthController,
	upload *controllers.UploadController,
	connections *controllers.ConnectionsController,
	posts *controllers.PostController,
) *ApiRouter {
	return &ApiRouter{
		resolver:    resolver,
		registry:    registry,
		oauth:       oauth,
		upload:      upload,
		connections: connections,
		posts:       posts,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	// Browser clients call these endpoints cross-origin; the preflight is
	// answered unconditionally with permissive headers.
	api.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Authorization, Content-Type",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	v1 := api.Group("/v1")
	requireIdentity := middleware.RequireIdentity(h.resolver)

	for _, slug := range h.registry.Slugs() {
		v1.Post("/oauth-"+slug, requireIdentity, h.oauth.Handle(slug))
	}

	v1.Post("/validate-upload", requireIdentity, h.upload.HandleValidateUpload)

	v1.Get("/connections", requireIdentity, h.connections.HandleList)
	v1.Delete("/connections/:platform", requireIdentity, h.connections.HandleDisconnect)
	v1.Patch("/connections/:platform/deactivate", requireIdentity, h.connections.HandleDeactivate)

	v1.Post("/posts", requireIdentity, h.posts.HandleSavePost)
	v1.Get("/posts", requireIdentity, h.posts.HandleListPosts)
}
