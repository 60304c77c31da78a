package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Lloyd3312/brightpost-ai/app/controllers"
	"github.com/Lloyd3312/brightpost-ai/app/repository"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/cache"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/database"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/identity"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/router"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/socialauth"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := NewApplication(cfg)
	log.Fatal(app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)))
}

func NewApplication(cfg *config.Config) *fiber.App {
	database.SetupDatabase(cfg)
	cache.SetupCache(cfg)
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	blobs, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		log.Fatal(err)
	}

	registry := socialauth.NewRegistry(cfg.Providers)
	states := socialauth.NewStateCodec(cfg.StateSecret, cache.NewNonceStore())
	flows := socialauth.NewOrchestrator(registry, states, repos.ConnectedAccount, cfg.PublicBaseURL)

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // validator caps payloads at 20 MiB; headroom for multipart framing
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	router.InstallRouter(app, router.NewApiRouter(
		identity.NewClient(cfg.AuthServiceURL),
		registry,
		controllers.NewOAuthController(flows),
		controllers.NewUploadController(blobs),
		controllers.NewConnectionsController(repos.ConnectedAccount),
		controllers.NewPostController(repos.Post, repos.ConnectedAccount),
	))

	return app
}
