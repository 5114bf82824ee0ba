// internal/services/favorite_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
)

// FavoriteService manages a customer's wishlist. The composite unique index
// on (user_id, product_id) makes toggling idempotent.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

func (s *FavoriteService) GetFavorites(userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ? AND products.is_active = ?", userID, true).
		Order("favorites.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	return products, nil
}

func (s *FavoriteService) AddFavorite(userID, productID uuid.UUID) error {
	var product models.Product
	if err := s.db.Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	favorite := &models.Favorite{UserID: userID, ProductID: productID}
	if err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		FirstOrCreate(favorite).Error; err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) RemoveFavorite(userID, productID uuid.UUID) error {
	res := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("favorite not found")
	}
	return nil
}
