// internal/services/address_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// AddressService manages a customer's address book and saved payment
// methods. At most one entry of each kind is the default: marking one
// clears the flag on its siblings inside the same transaction.
type AddressService struct {
	db *gorm.DB
}

type AddressRequest struct {
	Label      string `json:"label,omitempty" validate:"max=50"`
	FullName   string `json:"fullName" validate:"required,min=2,max=100"`
	Phone      string `json:"phone,omitempty" validate:"max=30"`
	Line1      string `json:"line1" validate:"required,min=3,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,min=1,max=100"`
	PostalCode string `json:"postalCode" validate:"required,min=2,max=20"`
	Country    string `json:"country" validate:"required,min=2,max=100"`
	IsDefault  bool   `json:"isDefault,omitempty"`
}

type PaymentMethodRequest struct {
	Type       string `json:"type" validate:"required,oneof=card cash_on_delivery"`
	Label      string `json:"label,omitempty" validate:"max=50"`
	CardBrand  string `json:"cardBrand,omitempty" validate:"max=20"`
	CardLast4  string `json:"cardLast4,omitempty" validate:"omitempty,len=4,numeric"`
	CardExpiry string `json:"cardExpiry,omitempty" validate:"max=7"`
	IsDefault  bool   `json:"isDefault,omitempty"`
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

func (s *AddressService) GetAddresses(userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return addresses, nil
}

func (s *AddressService) CreateAddress(userID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	address := &models.Address{
		UserID:     userID,
		Label:      req.Label,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// First address becomes the default regardless of the flag
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := clearDefaultAddresses(tx, userID, nil); err != nil {
				return err
			}
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) UpdateAddress(userID, id uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var address models.Address

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("address not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if req.IsDefault && !address.IsDefault {
			if err := clearDefaultAddresses(tx, userID, &id); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"label":       req.Label,
			"full_name":   req.FullName,
			"phone":       req.Phone,
			"line1":       req.Line1,
			"line2":       req.Line2,
			"city":        req.City,
			"postal_code": req.PostalCode,
			"country":     req.Country,
			"is_default":  req.IsDefault || address.IsDefault,
		}
		if err := tx.Model(&address).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AddressService) DeleteAddress(userID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("address not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Delete(&address).Error; err != nil {
			return fmt.Errorf("failed to delete address: %w", err)
		}

		// Promote the most recent remaining address when the default goes
		if address.IsDefault {
			var next models.Address
			err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&next).Error
			if err == nil {
				return tx.Model(&next).Update("is_default", true).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", err)
			}
		}
		return nil
	})
}

func (s *AddressService) SetDefaultAddress(userID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("address not found")
		}
		return clearDefaultAddresses(tx, userID, &id)
	})
}

func clearDefaultAddresses(tx *gorm.DB, userID uuid.UUID, except *uuid.UUID) error {
	query := tx.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if except != nil {
		query = query.Where("id != ?", *except)
	}
	if err := query.Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to clear default addresses: %w", err)
	}
	return nil
}

func (s *AddressService) GetPaymentMethods(userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment methods: %w", err)
	}
	return methods, nil
}

func (s *AddressService) CreatePaymentMethod(userID uuid.UUID, req *PaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Type == "card" && req.CardLast4 == "" {
		return nil, errors.New("card payment methods require the last four digits")
	}

	method := &models.PaymentMethod{
		UserID:     userID,
		Type:       req.Type,
		Label:      req.Label,
		CardBrand:  req.CardBrand,
		CardLast4:  req.CardLast4,
		CardExpiry: req.CardExpiry,
		IsDefault:  req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			method.IsDefault = true
		}

		if method.IsDefault {
			if err := clearDefaultPaymentMethods(tx, userID, nil); err != nil {
				return err
			}
		}
		if err := tx.Create(method).Error; err != nil {
			return fmt.Errorf("failed to create payment method: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return method, nil
}

func (s *AddressService) DeletePaymentMethod(userID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var method models.PaymentMethod
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&method).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("payment method not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Delete(&method).Error; err != nil {
			return fmt.Errorf("failed to delete payment method: %w", err)
		}

		if method.IsDefault {
			var next models.PaymentMethod
			err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&next).Error
			if err == nil {
				return tx.Model(&next).Update("is_default", true).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", err)
			}
		}
		return nil
	})
}

func (s *AddressService) SetDefaultPaymentMethod(userID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to update payment method: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("payment method not found")
		}
		return clearDefaultPaymentMethods(tx, userID, &id)
	})
}

func clearDefaultPaymentMethods(tx *gorm.DB, userID uuid.UUID, except *uuid.UUID) error {
	query := tx.Model(&models.PaymentMethod{}).Where("user_id = ? AND is_default = ?", userID, true)
	if except != nil {
		query = query.Where("id != ?", *except)
	}
	if err := query.Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to clear default payment methods: %w", err)
	}
	return nil
}
