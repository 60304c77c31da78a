package models

import "time"

// Platform values persisted in connected_accounts. The Facebook flow stores
// "instagram" because the credential that survives it is the page token used
// for Instagram publishing.
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
)

// ConnectedAccount is one user's credential for one platform. The unique
// (user_id, platform) key makes re-linking an overwrite, never a second row.
type ConnectedAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"index:idx_user_platform,unique;type:varchar(64)" json:"user_id"`
	Platform       string     `gorm:"index:idx_user_platform,unique;type:varchar(32)" json:"platform"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"token_expires_at,omitempty"`
	AccountName    string     `gorm:"type:varchar(255)" json:"account_name"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
