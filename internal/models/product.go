// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"size:100;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:120;not null"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Name              string         `json:"name" gorm:"size:255;not null"`
	Slug              string         `json:"slug" gorm:"uniqueIndex;size:280;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Price             float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice     *float64       `json:"original_price" gorm:"type:decimal(10,2)"`
	CategoryID        *uuid.UUID     `json:"category_id" gorm:"type:uuid;index"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Sizes             pq.StringArray `json:"sizes" gorm:"type:text[]"`
	Colors            pq.StringArray `json:"colors" gorm:"type:text[]"`
	Features          pq.StringArray `json:"features" gorm:"type:text[]"`
	Stock             int            `json:"stock" gorm:"default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"default:5"`
	IsNew             bool           `json:"is_new" gorm:"default:false"`
	IsActive          bool           `json:"is_active" gorm:"default:true;index"`
	Rating            float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount       int64          `json:"review_count" gorm:"default:0"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// IsLowStock reports whether stock has fallen below the product's own threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

type Favorite struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product"`

	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
