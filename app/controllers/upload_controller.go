package controllers

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/storage"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/upload"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/usercontext"
)

// UploadController is the content-integrity gate in front of blob storage.
type UploadController struct {
	blobs storage.BlobStore
}

// NewUploadController creates the upload controller.
func NewUploadController(blobs storage.BlobStore) *UploadController {
	return &UploadController{blobs: blobs}
}

// HandleValidateUpload validates one multipart file and forwards it to blob
// storage. Checks run in fixed order and short-circuit; an accepted payload
// is stored under a per-user, timestamped key.
func (ct *UploadController) HandleValidateUpload(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	declaredType := file.Header.Get(fiber.HeaderContentType)

	src, err := file.Open()
	if err != nil {
		fiberlog.Errorf("[Upload] failed to open multipart file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process upload. Please try again."})
	}
	defer src.Close()

	head := make([]byte, upload.SniffLen)
	n, _ := io.ReadFull(src, head)
	head = head[:n]

	if err := upload.Validate(file.Filename, declaredType, file.Size, head); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rest, err := io.ReadAll(src)
	if err != nil {
		fiberlog.Errorf("[Upload] failed to read multipart file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process upload. Please try again."})
	}
	body := append(head, rest...)

	key := fmt.Sprintf("%s/%d-%s", user.UserID, time.Now().UnixMilli(), file.Filename)
	if err := ct.blobs.Put(c.UserContext(), key, body, declaredType); err != nil {
		fiberlog.Errorf("[Upload] storage error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}

	return c.JSON(fiber.Map{
		"url":      ct.blobs.PublicURL(key),
		"fileName": key,
		"size":     file.Size,
		"type":     declaredType,
	})
}
