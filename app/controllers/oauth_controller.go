package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/socialauth"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/usercontext"
)

// OAuthController exposes the per-platform connection endpoints. One route
// per platform (POST /oauth-<slug>), dispatching on the action field like the
// client expects.
type OAuthController struct {
	flows *socialauth.Orchestrator
}

// NewOAuthController creates the controller around the connection flows.
func NewOAuthController(flows *socialauth.Orchestrator) *OAuthController {
	return &OAuthController{flows: flows}
}

type oauthRequest struct {
	Action      string `json:"action"`
	Code        string `json:"code"`
	State       string `json:"state"`
	RedirectURI string `json:"redirectUri"`
}

// Handle returns the handler for one platform slug.
func (ct *OAuthController) Handle(slug string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := usercontext.GetUserContext(c)
		if !user.IsAuthenticated {
			return respondFlowError(c, socialauth.ErrUnauthorized)
		}

		var req oauthRequest
		if err := c.BodyParser(&req); err != nil {
			return respondFlowError(c, &socialauth.ValidationError{Message: "invalid request body"})
		}

		switch req.Action {
		case "initiate":
			return ct.initiate(c, user.UserID, slug, req)
		case "callback":
			return ct.callback(c, user.UserID, slug, req)
		default:
			return respondFlowError(c, &socialauth.ValidationError{Message: "invalid action"})
		}
	}
}

func (ct *OAuthController) initiate(c *fiber.Ctx, userID, slug string, req oauthRequest) error {
	authURL, err := ct.flows.Initiate(c.UserContext(), userID, slug, req.RedirectURI)
	if err != nil {
		return respondFlowError(c, err)
	}

	// Client-relayed providers historically answer with "url", the
	// direct-callback ones with "authUrl". Both shapes are kept.
	clientManaged, err := ct.flows.ClientManagedRedirect(slug)
	if err != nil {
		return respondFlowError(c, err)
	}
	if clientManaged {
		return c.JSON(fiber.Map{"url": authURL})
	}
	return c.JSON(fiber.Map{"authUrl": authURL})
}

func (ct *OAuthController) callback(c *fiber.Ctx, userID, slug string, req oauthRequest) error {
	account, err := ct.flows.Callback(c.UserContext(), userID, slug, req.Code, req.State, req.RedirectURI)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "account": account})
}
