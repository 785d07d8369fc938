// internal/models/payment_type.go
package models

import (
	"fmt"

	"github.com/google/uuid"
)

type PaymentType struct {
	BaseModel
	AccountNumber string    `json:"account_number" gorm:"size:20;not null"`
	PaymentMethod string    `json:"payment_method" gorm:"size:55;not null"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	// Relationships
	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// Label is what a checkout form shows for this payment method, e.g. "Visa ****4242".
func (p *PaymentType) Label() string {
	account := p.AccountNumber
	if len(account) > 4 {
		account = account[len(account)-4:]
	}
	return fmt.Sprintf("%s ****%s", p.PaymentMethod, account)
}
