package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/app/repository"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/usercontext"
)

// PostController persists post drafts and schedules. Publishing is someone
// else's job.
type PostController struct {
	posts    repository.PostRepository
	accounts repository.ConnectedAccountRepository
}

// NewPostController creates the controller.
func NewPostController(posts repository.PostRepository, accounts repository.ConnectedAccountRepository) *PostController {
	return &PostController{posts: posts, accounts: accounts}
}

type savePostRequest struct {
	PostID      uint       `json:"postId"`
	Caption     string     `json:"caption"`
	MediaURL    string     `json:"mediaUrl"`
	Platforms   []string   `json:"platforms"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// HandleSavePost creates a post, or updates it when postId is set. Updates
// are scoped to the owning user.
func (ct *PostController) HandleSavePost(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req savePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Drafts may target anything; a schedule needs a live connection behind
	// every platform it names, or the publisher would fail later anyway.
	if req.ScheduledAt != nil && len(req.Platforms) > 0 {
		missing, err := ct.missingConnection(user.UserID, req.Platforms)
		if err != nil {
			fiberlog.Errorf("[Posts] connection lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save post"})
		}
		if missing != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("No active %s connection. Connect the account before scheduling.", missing),
			})
		}
	}

	if req.PostID != 0 {
		post, err := ct.posts.GetByIDForUser(req.PostID, user.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
			}
			fiberlog.Errorf("[Posts] lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save post"})
		}

		post.Caption = req.Caption
		post.MediaURL = req.MediaURL
		post.Platforms = req.Platforms
		post.ScheduledAt = req.ScheduledAt
		if err := ct.posts.Update(post); err != nil {
			fiberlog.Errorf("[Posts] update failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save post"})
		}
		return c.JSON(post)
	}

	status := models.PostStatusDraft
	if req.ScheduledAt != nil {
		status = models.PostStatusScheduled
	}
	post := &models.Post{
		UserID:      user.UserID,
		Caption:     req.Caption,
		MediaURL:    req.MediaURL,
		Platforms:   req.Platforms,
		ScheduledAt: req.ScheduledAt,
		Status:      status,
	}
	if err := ct.posts.Create(post); err != nil {
		fiberlog.Errorf("[Posts] create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save post"})
	}
	return c.JSON(post)
}

// HandleListPosts returns the caller's posts, newest first, paged with
// offset/limit query parameters.
func (ct *PostController) HandleListPosts(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	posts, err := ct.posts.ListByUser(user.UserID, offset, limit)
	if err != nil {
		fiberlog.Errorf("[Posts] list failed for user %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load posts"})
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// missingConnection returns the first requested platform without an active
// connection, or "" when all are covered.
func (ct *PostController) missingConnection(userID string, platforms []string) (string, error) {
	active, err := ct.accounts.ListActivePlatforms(userID)
	if err != nil {
		return "", err
	}
	connected := make(map[string]bool, len(active))
	for _, p := range active {
		connected[p] = true
	}
	for _, p := range platforms {
		if !connected[p] {
			return p, nil
		}
	}
	return "", nil
}
