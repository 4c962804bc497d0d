// internal/repository/store.go
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository          { return &userRepository{db: s.db} }
func (s *gormStore) Categories() CategoryRepository { return &categoryRepository{db: s.db} }
func (s *gormStore) Products() ProductRepository    { return &productRepository{db: s.db} }
func (s *gormStore) Carts() CartRepository          { return &cartRepository{db: s.db} }
func (s *gormStore) Orders() OrderRepository        { return &orderRepository{db: s.db} }
func (s *gormStore) Audit() AuditRepository         { return &auditRepository{db: s.db} }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "SQLSTATE 23505"):
		return ErrDuplicate
	default:
		return err
	}
}
