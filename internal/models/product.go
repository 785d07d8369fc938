// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductType struct {
	BaseModel
	Label string `json:"label" gorm:"size:55;not null;index"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:ProductTypeID"`
}

type Product struct {
	BaseModel
	Title         string          `json:"title" gorm:"size:55;not null"`
	Description   string          `json:"description" gorm:"size:255;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	Quantity      int             `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	City          string          `json:"city" gorm:"size:100"`
	ImagePath     string          `json:"image_path,omitempty" gorm:"size:512"`
	UserID        uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	ProductTypeID uuid.UUID       `json:"product_type_id" gorm:"type:uuid;not null;index"`
	Version       int             `json:"version" gorm:"not null;default:1"`
	ImageURL      string          `json:"image_url,omitempty" gorm:"-"`
	Seller        *Seller         `json:"seller,omitempty" gorm:"-"`

	// Relationships
	User          *User          `json:"-" gorm:"foreignKey:UserID"`
	ProductType   *ProductType   `json:"product_type,omitempty" gorm:"foreignKey:ProductTypeID"`
	OrderProducts []OrderProduct `json:"-" gorm:"foreignKey:ProductID"`
}
