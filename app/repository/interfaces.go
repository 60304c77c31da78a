package repository

import (
	"github.com/Lloyd3312/brightpost-ai/app/models"
	"gorm.io/gorm"
)

// ConnectedAccountRepository is the credential store for platform links.
type ConnectedAccountRepository interface {
	// Upsert atomically replaces or inserts the row keyed by
	// (user_id, platform). Last writer wins under concurrent callbacks.
	Upsert(account *models.ConnectedAccount) error
	GetByUserAndPlatform(userID, platform string) (*models.ConnectedAccount, error)
	ListByUser(userID string) ([]models.ConnectedAccount, error)
	ListActivePlatforms(userID string) ([]string, error)
	Deactivate(userID, platform string) error
	Delete(userID, platform string) error
}

// PostRepository persists scheduled posts.
type PostRepository interface {
	Create(post *models.Post) error
	GetByIDForUser(id uint, userID string) (*models.Post, error)
	Update(post *models.Post) error
	ListByUser(userID string, offset, limit int) ([]models.Post, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	ConnectedAccount ConnectedAccountRepository
	Post             PostRepository
}

// NewRepositories creates a new instance of all repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		ConnectedAccount: NewConnectedAccountRepository(db),
		Post:             NewPostRepository(db),
	}
}
