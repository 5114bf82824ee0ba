// internal/models/order.go
package models

import (
	"fmt"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo validates an admin-driven status change. Transitions between
// non-terminal states are unrestricted (an order may jump pending -> delivered),
// but delivered and cancelled are final.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.Valid() || s.IsTerminal() {
		return false
	}
	return s != target
}

type Order struct {
	BaseModel
	OrderNumber     string        `json:"order_number" gorm:"uniqueIndex;size:30;not null"`
	UserID          *uuid.UUID    `json:"user_id" gorm:"type:uuid;index"`
	GuestEmail      string        `json:"guest_email,omitempty" gorm:"size:255"`
	GuestPhone      string        `json:"guest_phone,omitempty" gorm:"size:30"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod   string        `json:"payment_method" gorm:"size:50;not null"`
	Subtotal        float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	ShippingCost    float64       `json:"shipping_cost" gorm:"type:decimal(10,2);not null"`
	Total           float64       `json:"total" gorm:"type:decimal(10,2);not null"`
	ShippingAddress JSONB         `json:"shipping_address" gorm:"type:jsonb;not null"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// CustomerEmail returns the address order mail goes to, for guest and
// account orders alike.
func (o *Order) CustomerEmail() string {
	if o.User != nil && o.User.Email != "" {
		return o.User.Email
	}
	return o.GuestEmail
}

// Transition applies a status change after validating it.
func (o *Order) Transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("invalid status transition from %s to %s", o.Status, target)
	}
	o.Status = target
	return nil
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Size      string    `json:"size,omitempty" gorm:"size:20"`
	Color     string    `json:"color,omitempty" gorm:"size:50"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Total     float64   `json:"total" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
