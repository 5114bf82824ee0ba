// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/config"
	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// PaymentService wraps card payments through Stripe. Cash on delivery needs
// no intent; the order is created with payment status pending and marked paid
// from the back office.
type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	PaymentID    string `json:"paymentId"`
	Status       string `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"paymentIntentId" validate:"required"`
	OrderID         uuid.UUID `json:"orderId" validate:"required"`
}

type RefundOrderRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Reason  string    `json:"reason,omitempty"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: cfg,
	}
}

// amountInCents converts a euro amount to Stripe's integer cents. Rounding
// matters here: truncation turns 64.35 into 6434.
func amountInCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreatePaymentIntent opens a Stripe intent for a pending card order. The
// amount always comes from the stored order, never from the client.
func (s *PaymentService) CreatePaymentIntent(req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.config.Payment.CardPaymentsEnabled {
		return nil, errors.New("card payments are not enabled")
	}

	var order models.Order
	if err := s.db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("order payment is already %s", order.PaymentStatus)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(order.Total)),
		Currency: stripe.String("eur"),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_number", order.OrderNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment checks the intent with Stripe and marks the order paid.
func (s *PaymentService) ConfirmPayment(req *ConfirmPaymentRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment not completed, status is %s", pi.Status)
	}
	if pi.Metadata["order_id"] != req.OrderID.String() {
		return nil, errors.New("payment intent does not belong to this order")
	}

	var order models.Order
	if err := s.db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&order).Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	order.PaymentStatus = models.PaymentStatusPaid

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"intent":       pi.ID,
	}).Info("Order payment confirmed")

	return &order, nil
}

// RefundOrder marks a paid order refunded. Card orders additionally trigger
// a Stripe refund against the stored intent.
func (s *PaymentService) RefundOrder(req *RefundOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	if err := s.db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		return nil, errors.New("only paid orders can be refunded")
	}

	if order.PaymentMethod == "card" && s.config.Payment.CardPaymentsEnabled {
		intentID, err := s.findIntentForOrder(&order)
		if err != nil {
			return nil, err
		}
		params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
		if req.Reason != "" {
			params.AddMetadata("reason", req.Reason)
		}
		if _, err := refund.New(params); err != nil {
			return nil, fmt.Errorf("failed to create refund: %w", err)
		}
	}

	if err := s.db.Model(&order).Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	order.PaymentStatus = models.PaymentStatusRefunded

	logrus.WithField("order_number", order.OrderNumber).Info("Order refunded")

	return &order, nil
}

func (s *PaymentService) findIntentForOrder(order *models.Order) (string, error) {
	it := paymentintent.Search(&stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Query: fmt.Sprintf("metadata['order_id']:'%s'", order.ID.String()),
		},
	})
	for it.Next() {
		return it.PaymentIntent().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("failed to look up payment intent: %w", err)
	}
	return "", errors.New("no payment intent found for this order")
}
