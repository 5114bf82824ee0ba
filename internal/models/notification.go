// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID  uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type    NotificationType `json:"type" gorm:"type:varchar(20);not null;index"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message" gorm:"type:text;not null"`
	Data    JSONB            `json:"data,omitempty" gorm:"type:jsonb"`
	IsRead  bool             `json:"is_read" gorm:"default:false;index"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
