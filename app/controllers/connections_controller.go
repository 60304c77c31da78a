package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Lloyd3312/brightpost-ai/app/repository"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/usercontext"
)

// ConnectionsController lists and tears down platform links. Token material
// never leaves the service through these endpoints.
type ConnectionsController struct {
	accounts repository.ConnectedAccountRepository
}

// NewConnectionsController creates the controller.
func NewConnectionsController(accounts repository.ConnectedAccountRepository) *ConnectionsController {
	return &ConnectionsController{accounts: accounts}
}

type connectionView struct {
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
	IsActive    bool   `json:"is_active"`
	ConnectedAt string `json:"connected_at"`
}

// HandleList returns the caller's platform connections.
func (ct *ConnectionsController) HandleList(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	accounts, err := ct.accounts.ListByUser(user.UserID)
	if err != nil {
		fiberlog.Errorf("[Connections] list failed for user %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load connections"})
	}

	views := make([]connectionView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, connectionView{
			Platform:    a.Platform,
			AccountName: a.AccountName,
			IsActive:    a.IsActive,
			ConnectedAt: a.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(fiber.Map{"connections": views})
}

// HandleDisconnect removes the link entirely. The user can re-link at any
// time by running the flow again.
func (ct *ConnectionsController) HandleDisconnect(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	platform := c.Params("platform")
	if err := ct.accounts.Delete(user.UserID, platform); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No such connection"})
		}
		fiberlog.Errorf("[Connections] disconnect failed for user %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to disconnect"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleDeactivate soft-disables the link, keeping its history.
func (ct *ConnectionsController) HandleDeactivate(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	platform := c.Params("platform")
	if err := ct.accounts.Deactivate(user.UserID, platform); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No such connection"})
		}
		fiberlog.Errorf("[Connections] deactivate failed for user %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate"})
	}
	return c.JSON(fiber.Map{"success": true})
}
