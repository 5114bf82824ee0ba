// internal/services/content_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// ContentService manages the homepage blocks, app icons and store settings
// edited from the back office.
type ContentService struct {
	db *gorm.DB
}

type HomepageContentRequest struct {
	Section   string `json:"section" validate:"required,min=2,max=50"`
	Title     string `json:"title,omitempty" validate:"max=255"`
	Subtitle  string `json:"subtitle,omitempty" validate:"max=255"`
	ImageURL  string `json:"imageUrl,omitempty" validate:"omitempty,url,max=500"`
	LinkURL   string `json:"linkUrl,omitempty" validate:"omitempty,url,max=500"`
	SortOrder int    `json:"sortOrder,omitempty"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type AppIconRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	ImageURL string `json:"imageUrl" validate:"required,url,max=500"`
	Size     string `json:"size,omitempty" validate:"max=20"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type UpdateSettingRequest struct {
	Key         string       `json:"key" validate:"required,min=2,max=100"`
	Value       models.JSONB `json:"value" validate:"required"`
	Description string       `json:"description,omitempty"`
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// GetHomepageContent returns the blocks the storefront renders. The back
// office passes includeInactive to preview hidden blocks.
func (s *ContentService) GetHomepageContent(includeInactive bool) ([]models.HomepageContent, error) {
	query := s.db.Model(&models.HomepageContent{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var blocks []models.HomepageContent
	if err := query.Order("sort_order ASC, created_at ASC").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch homepage content: %w", err)
	}
	return blocks, nil
}

func (s *ContentService) CreateHomepageContent(req *HomepageContentRequest) (*models.HomepageContent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	block := &models.HomepageContent{
		Section:   req.Section,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		block.IsActive = *req.IsActive
	}

	if err := s.db.Create(block).Error; err != nil {
		return nil, fmt.Errorf("failed to create homepage content: %w", err)
	}
	return block, nil
}

func (s *ContentService) UpdateHomepageContent(id uuid.UUID, req *HomepageContentRequest) (*models.HomepageContent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var block models.HomepageContent
	if err := s.db.First(&block, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("homepage content not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"section":    req.Section,
		"title":      req.Title,
		"subtitle":   req.Subtitle,
		"image_url":  req.ImageURL,
		"link_url":   req.LinkURL,
		"sort_order": req.SortOrder,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&block).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update homepage content: %w", err)
	}
	return &block, nil
}

func (s *ContentService) DeleteHomepageContent(id uuid.UUID) error {
	res := s.db.Delete(&models.HomepageContent{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete homepage content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("homepage content not found")
	}
	return nil
}

func (s *ContentService) GetAppIcons(includeInactive bool) ([]models.AppIcon, error) {
	query := s.db.Model(&models.AppIcon{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var icons []models.AppIcon
	if err := query.Order("created_at DESC").Find(&icons).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch app icons: %w", err)
	}
	return icons, nil
}

func (s *ContentService) CreateAppIcon(req *AppIconRequest) (*models.AppIcon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	icon := &models.AppIcon{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Size:     req.Size,
		IsActive: true,
	}
	if req.IsActive != nil {
		icon.IsActive = *req.IsActive
	}

	if err := s.db.Create(icon).Error; err != nil {
		return nil, fmt.Errorf("failed to create app icon: %w", err)
	}
	return icon, nil
}

func (s *ContentService) DeleteAppIcon(id uuid.UUID) error {
	res := s.db.Delete(&models.AppIcon{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete app icon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("app icon not found")
	}
	return nil
}

func (s *ContentService) GetSettings() ([]models.StoreSetting, error) {
	var settings []models.StoreSetting
	if err := s.db.Order("key ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return settings, nil
}

func (s *ContentService) GetSetting(key string) (*models.StoreSetting, error) {
	var setting models.StoreSetting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("setting not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &setting, nil
}

// UpsertSetting creates or overwrites a setting and records who changed it.
func (s *ContentService) UpsertSetting(updatedBy uuid.UUID, req *UpdateSettingRequest) (*models.StoreSetting, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var setting models.StoreSetting
	err := s.db.Where("key = ?", req.Key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		setting = models.StoreSetting{
			Key:         req.Key,
			Value:       req.Value,
			Description: req.Description,
			UpdatedBy:   updatedBy,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, fmt.Errorf("failed to create setting: %w", err)
		}
		return &setting, nil
	}

	updates := map[string]interface{}{
		"value":      req.Value,
		"updated_by": updatedBy,
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if err := s.db.Model(&setting).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}
	return &setting, nil
}
