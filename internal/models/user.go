// internal/models/user.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username      string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email         string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string `json:"-" gorm:"size:255;not null"`
	FirstName     string `json:"first_name" gorm:"size:100"`
	LastName      string `json:"last_name" gorm:"size:100"`
	StreetAddress string `json:"street_address,omitempty" gorm:"size:255"`

	// Relationships
	Products     []Product     `json:"products,omitempty" gorm:"foreignKey:UserID"`
	Orders       []Order       `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	PaymentTypes []PaymentType `json:"payment_types,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Seller is what other users see of the owner of a listing. Contact details
// stay private.
type Seller struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

func (u *User) Seller() *Seller {
	return &Seller{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
	}
}
