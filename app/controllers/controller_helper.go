package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/socialauth"
)

// respondFlowError maps the connection flow error taxonomy onto HTTP. Nothing
// is retried server-side; the client re-initiates from scratch.
func respondFlowError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var validationErr *socialauth.ValidationError
	var upstreamErr *socialauth.UpstreamError
	var configErr *socialauth.ConfigurationError

	switch {
	case errors.Is(err, socialauth.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, socialauth.ErrNoLinkableAccount):
		status = fiber.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &upstreamErr):
		status = fiber.StatusBadGateway
	case errors.As(err, &configErr):
		status = fiber.StatusInternalServerError
	}

	fiberlog.Errorf("[OAuth] flow error (%d): %v", status, err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
