// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	OrderNumber      string        `json:"orderNumber" gorm:"uniqueIndex;size:40;not null"`
	UserID           uuid.UUID     `json:"userId" gorm:"type:uuid;not null;index"`
	Items            []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
	ShippingAddress  Address       `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress   Address       `json:"billingAddress" gorm:"embedded;embeddedPrefix:billing_"`
	Subtotal         float64       `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Tax              float64       `json:"tax" gorm:"type:decimal(12,2);not null"`
	ShippingCost     float64       `json:"shippingCost" gorm:"type:decimal(12,2);not null"`
	TotalAmount      float64       `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod    string        `json:"paymentMethod" gorm:"size:30"`
	PaymentReference string        `json:"paymentReference,omitempty" gorm:"size:255"`
	Status           OrderStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus    PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);default:'pending'"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// OrderItem is immutable once the order exists.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}
