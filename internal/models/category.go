// internal/models/category.go
package models

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	IsActive    bool   `json:"isActive" gorm:"default:true;index"`
}
