// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
)

type Cart struct {
	BaseModel
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems int        `json:"totalItems" gorm:"not null;default:0"`
	TotalPrice float64    `json:"totalPrice" gorm:"type:decimal(12,2);not null;default:0"`
}

// CartItem is a line item; Price is the unit price captured when the product was added.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
