// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	FirstName    string     `json:"firstName" gorm:"size:100;not null"`
	LastName     string     `json:"lastName" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);default:'user';not null"`
	Phone        string     `json:"phone,omitempty" gorm:"size:50"`
	Address      Address    `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	ProfileImage *string    `json:"profileImage"`
	IsActive     bool       `json:"isActive" gorm:"default:true"`
	LastLogin    *time.Time `json:"lastLogin"`
}

func (u *User) SetPassword(password string, cost int) error {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the user shape returned by the auth endpoints.
type PublicUser struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      Role     `json:"role"`
	Phone     string   `json:"phone,omitempty"`
	Address   *Address `json:"address,omitempty"`
}

func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
	}
	if !u.Address.IsZero() {
		addr := u.Address
		p.Address = &addr
	}
	return p
}
