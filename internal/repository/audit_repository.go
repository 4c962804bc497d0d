// internal/repository/audit_repository.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/storefront-api/internal/models"
)

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}
