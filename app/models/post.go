package models

import "time"

// Post lifecycle states. Publishing workers move posts beyond these; this
// service only creates and edits them.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
)

// Post is a draft or scheduled social media post.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"index;type:varchar(64)" json:"user_id"`
	Caption     string     `gorm:"type:text" json:"caption"`
	MediaURL    string     `gorm:"type:varchar(2048)" json:"media_url"`
	Platforms   []string   `gorm:"serializer:json" json:"platforms"`
	ScheduledAt *time.Time `gorm:"type:timestamp;default:null" json:"scheduled_at,omitempty"`
	Status      string     `gorm:"type:varchar(32);default:draft" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
