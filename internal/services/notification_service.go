// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/email"
	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// NotificationService creates in-app notifications and dispatches
// transactional email. Email goes through the AMQP mail queue when one is
// configured; otherwise it is sent directly on a background goroutine. Either
// way the caller returns immediately and a delivery failure only logs.
type NotificationService struct {
	db        *gorm.DB
	publisher *email.Publisher
	sender    *email.Sender
}

func NewNotificationService(db *gorm.DB, publisher *email.Publisher, sender *email.Sender) *NotificationService {
	return &NotificationService{
		db:        db,
		publisher: publisher,
		sender:    sender,
	}
}

func (s *NotificationService) dispatchEmail(to, subject, body string) {
	if to == "" {
		return
	}

	job := email.Job{To: to, Subject: subject, Body: body}

	if s.publisher != nil {
		if err := s.publisher.Publish(job); err != nil {
			logrus.WithError(err).WithField("to", to).Error("Failed to enqueue email, falling back to direct send")
		} else {
			return
		}
	}

	go func() {
		if err := s.sender.Send(job.To, job.Subject, job.Body); err != nil {
			logrus.WithError(err).WithField("to", to).Error("Failed to send email")
		}
	}()
}

func (s *NotificationService) createInApp(userID uuid.UUID, nType models.NotificationType, title, message string, data models.JSONB) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to create notification")
	}
}

// SendOrderConfirmation fires the post-checkout email and, for account
// holders, an in-app notification. Never blocks order creation.
func (s *NotificationService) SendOrderConfirmation(order *models.Order) {
	lines := make([]email.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, email.OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Size:     item.Size,
			Price:    item.Price,
			Total:    item.Total,
		})
	}

	body := email.BuildOrderConfirmationBody(order.OrderNumber, lines, order.Subtotal, order.ShippingCost, order.Total)
	s.dispatchEmail(order.CustomerEmail(), fmt.Sprintf("Order confirmation %s", order.OrderNumber), body)

	if order.UserID != nil {
		s.createInApp(*order.UserID, models.NotificationTypeOrder,
			"Order confirmed",
			fmt.Sprintf("Your order %s has been received.", order.OrderNumber),
			models.JSONB{"order_id": order.ID.String(), "order_number": order.OrderNumber})
	}
}

// SendStatusUpdate notifies the customer after an admin status change.
func (s *NotificationService) SendStatusUpdate(order *models.Order) {
	body := email.BuildStatusUpdateBody(order.OrderNumber, string(order.Status))
	s.dispatchEmail(order.CustomerEmail(), fmt.Sprintf("Update on order %s", order.OrderNumber), body)

	if order.UserID != nil {
		s.createInApp(*order.UserID, models.NotificationTypeOrder,
			"Order update",
			fmt.Sprintf("Your order %s is now %s.", order.OrderNumber, order.Status),
			models.JSONB{"order_id": order.ID.String(), "status": string(order.Status)})
	}
}

// SendShippingNotice is the admin "send email" action with tracking details.
func (s *NotificationService) SendShippingNotice(order *models.Order, trackingNumber, carrier, estimatedDelivery string) {
	body := email.BuildShippingNoticeBody(order.OrderNumber, trackingNumber, carrier, estimatedDelivery)
	s.dispatchEmail(order.CustomerEmail(), fmt.Sprintf("Your order %s has shipped", order.OrderNumber), body)

	if order.UserID != nil {
		s.createInApp(*order.UserID, models.NotificationTypeOrder,
			"Order shipped",
			fmt.Sprintf("Your order %s is on its way.", order.OrderNumber),
			models.JSONB{"order_id": order.ID.String(), "tracking_number": trackingNumber})
	}
}

// Broadcast creates the same notification for every active user, used by the
// back office for promotions and announcements.
func (s *NotificationService) Broadcast(nType models.NotificationType, title, message string) (int64, error) {
	var users []models.User
	if err := s.db.Select("id").Where("status = ?", models.UserStatusActive).Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	notifications := make([]models.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, models.Notification{
			UserID:  u.ID,
			Type:    nType,
			Title:   title,
			Message: message,
		})
	}
	if len(notifications) == 0 {
		return 0, nil
	}

	if err := s.db.CreateInBatches(&notifications, 200).Error; err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}
	return int64(len(notifications)), nil
}

func (s *NotificationService) GetUserNotifications(userID uuid.UUID, params utils.PaginationParams, unreadOnly bool) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(id, userID uuid.UUID) error {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return fmt.Errorf("failed to update notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
