package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lloyd3312/brightpost-ai/app/models"
)

// connectedAccountRepository implements ConnectedAccountRepository using GORM.
type connectedAccountRepository struct {
	db *gorm.DB
}

// NewConnectedAccountRepository creates a new connected account repository.
func NewConnectedAccountRepository(db *gorm.DB) ConnectedAccountRepository {
	return &connectedAccountRepository{db: db}
}

// Upsert inserts the record or replaces the existing row sharing the same
// (user_id, platform) key in a single statement. The ON CONFLICT clause is
// what guarantees exactly one full record survives concurrent callbacks.
func (r *connectedAccountRepository) Upsert(account *models.ConnectedAccount) error {
	account.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"token_expires_at",
			"account_name",
			"is_active",
			"updated_at",
		}),
	}).Create(account).Error
}

func (r *connectedAccountRepository) GetByUserAndPlatform(userID, platform string) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("user_id = ? AND platform = ?", userID, platform).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *connectedAccountRepository) ListByUser(userID string) ([]models.ConnectedAccount, error) {
	var accounts []models.ConnectedAccount
	err := r.db.Where("user_id = ?", userID).Order("platform ASC").Find(&accounts).Error
	return accounts, err
}

func (r *connectedAccountRepository) ListActivePlatforms(userID string) ([]string, error) {
	var platforms []string
	err := r.db.Model(&models.ConnectedAccount{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("platform ASC").
		Pluck("platform", &platforms).Error
	return platforms, err
}

func (r *connectedAccountRepository) Deactivate(userID, platform string) error {
	res := r.db.Model(&models.ConnectedAccount{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *connectedAccountRepository) Delete(userID, platform string) error {
	res := r.db.Where("user_id = ? AND platform = ?", userID, platform).
		Delete(&models.ConnectedAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
