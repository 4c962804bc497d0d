// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ProductImages is persisted as a JSON array.
type ProductImages []ProductImage

func (p ProductImages) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ProductImages) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, p)
}

type Product struct {
	BaseModel
	Name          string         `json:"name" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Price         float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *float64       `json:"originalPrice,omitempty" gorm:"type:decimal(10,2)"`
	CategoryID    uuid.UUID      `json:"categoryId" gorm:"type:uuid;not null;index"`
	Images        ProductImages  `json:"images" gorm:"type:jsonb"`
	Stock         int            `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Rating        float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	SKU           string         `json:"sku,omitempty" gorm:"size:64;index"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
	ViewCount     int64          `json:"viewCount" gorm:"default:0"`
	IsActive      bool           `json:"isActive" gorm:"default:true;index"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
