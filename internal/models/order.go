// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order doubles as the cart: it is open while PaymentTypeID is nil and completed
// once a payment type and DateCompleted have been written together.
type Order struct {
	BaseModel
	DateCompleted *time.Time `json:"date_completed"`
	UserID        uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	PaymentTypeID *uuid.UUID `json:"payment_type_id" gorm:"type:uuid;index"`
	Version       int        `json:"version" gorm:"not null;default:1"`

	// Relationships
	User          *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	PaymentType   *PaymentType   `json:"payment_type,omitempty" gorm:"foreignKey:PaymentTypeID"`
	OrderProducts []OrderProduct `json:"order_products,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderProduct is a single line item joining an order to a product.
type OrderProduct struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`

	// Relationships
	Order   *Order   `json:"-" gorm:"foreignKey:OrderID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (o *Order) IsOpen() bool {
	return o.PaymentTypeID == nil
}

func (o *Order) IsCompleted() bool {
	return o.PaymentTypeID != nil && o.DateCompleted != nil
}

func (o *Order) Status() OrderStatus {
	if o.IsOpen() {
		return OrderStatusOpen
	}
	return OrderStatusCompleted
}

// Total sums the price of every loaded line item; products that were not
// preloaded count as zero.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderProducts {
		if item.Product != nil {
			total = total.Add(item.Product.Price)
		}
	}
	return total
}
