// internal/models/content.go
package models

import (
	"github.com/google/uuid"
)

// HomepageContent is one block of the storefront homepage (hero banner,
// featured collection, promo strip). Rendering is entirely client-side;
// the backend just stores and orders the blocks.
type HomepageContent struct {
	BaseModel
	Section   string `json:"section" gorm:"size:50;not null;index"`
	Title     string `json:"title" gorm:"size:255"`
	Subtitle  string `json:"subtitle" gorm:"size:255"`
	ImageURL  string `json:"image_url" gorm:"size:500"`
	LinkURL   string `json:"link_url" gorm:"size:500"`
	SortOrder int    `json:"sort_order" gorm:"default:0;index"`
	IsActive  bool   `json:"is_active" gorm:"default:true;index"`
}

// AppIcon is an installable-app icon variant managed from the back office.
type AppIcon struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;not null"`
	ImageURL string `json:"image_url" gorm:"size:500;not null"`
	Size     string `json:"size" gorm:"size:20"`
	IsActive bool   `json:"is_active" gorm:"default:true;index"`
}

// StoreSetting is a typed key/value row for storefront configuration
// (shipping cost, free-shipping threshold, enabled payment methods).
type StoreSetting struct {
	BaseModel
	Key         string    `json:"key" gorm:"uniqueIndex;size:100;not null"`
	Value       JSONB     `json:"value" gorm:"type:jsonb;not null"`
	Description string    `json:"description" gorm:"type:text"`
	UpdatedBy   uuid.UUID `json:"updated_by" gorm:"type:uuid"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
