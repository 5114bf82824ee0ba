// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label" gorm:"size:50"`
	FullName   string    `json:"full_name" gorm:"size:150;not null"`
	Phone      string    `json:"phone" gorm:"size:30"`
	Line1      string    `json:"line1" gorm:"size:255;not null"`
	Line2      string    `json:"line2,omitempty" gorm:"size:255"`
	City       string    `json:"city" gorm:"size:100;not null"`
	PostalCode string    `json:"postal_code" gorm:"size:20"`
	Country    string    `json:"country" gorm:"size:100;not null"`
	IsDefault  bool      `json:"is_default" gorm:"default:false;index"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

type PaymentMethod struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       string    `json:"type" gorm:"size:30;not null"`
	Label      string    `json:"label" gorm:"size:100"`
	CardBrand  string    `json:"card_brand,omitempty" gorm:"size:30"`
	CardLast4  string    `json:"card_last4,omitempty" gorm:"size:4"`
	CardExpiry string    `json:"card_expiry,omitempty" gorm:"size:7"`
	IsDefault  bool      `json:"is_default" gorm:"default:false;index"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
