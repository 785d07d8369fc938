// internal/testutil/fixtures.go
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/models"
)

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		FirstName: username,
		LastName:  "Tester",
	}
	if err := user.SetPassword("Str0ng-Password!"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func CreateProductType(t *testing.T, db *gorm.DB, label string) *models.ProductType {
	t.Helper()

	productType := &models.ProductType{Label: label}
	if err := db.Create(productType).Error; err != nil {
		t.Fatalf("failed to create product type: %v", err)
	}
	return productType
}

// ProductOption tweaks a fixture product before it is inserted.
type ProductOption func(*models.Product)

func WithCity(city string) ProductOption {
	return func(p *models.Product) { p.City = city }
}

func WithPrice(price string) ProductOption {
	return func(p *models.Product) { p.Price = decimal.RequireFromString(price) }
}

func WithCreatedAt(createdAt time.Time) ProductOption {
	return func(p *models.Product) { p.CreatedAt = createdAt }
}

func CreateProduct(t *testing.T, db *gorm.DB, owner *models.User, productType *models.ProductType, title string, opts ...ProductOption) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:         title,
		Description:   title + " description",
		Price:         decimal.RequireFromString("10.00"),
		Quantity:      1,
		City:          "Nashville",
		UserID:        owner.ID,
		ProductTypeID: productType.ID,
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func CreatePaymentType(t *testing.T, db *gorm.DB, owner *models.User, method string) *models.PaymentType {
	t.Helper()

	paymentType := &models.PaymentType{
		AccountNumber: "4111111111111111",
		PaymentMethod: method,
		UserID:        owner.ID,
	}
	if err := db.Create(paymentType).Error; err != nil {
		t.Fatalf("failed to create payment type: %v", err)
	}
	return paymentType
}

// CreateCart inserts an open order for owner holding one line item per product,
// the way the add-to-cart collaborator would.
func CreateCart(t *testing.T, db *gorm.DB, owner *models.User, products ...*models.Product) *models.Order {
	t.Helper()

	order := &models.Order{UserID: owner.ID}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	for _, product := range products {
		item := &models.OrderProduct{OrderID: order.ID, ProductID: product.ID}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("failed to create line item: %v", err)
		}
	}
	return order
}

// CreateCompletedOrder inserts an order already paid with paymentType.
func CreateCompletedOrder(t *testing.T, db *gorm.DB, owner *models.User, paymentType *models.PaymentType, products ...*models.Product) *models.Order {
	t.Helper()

	order := CreateCart(t, db, owner, products...)
	completedAt := time.Now().UTC()
	err := db.Model(order).Updates(map[string]interface{}{
		"payment_type_id": paymentType.ID,
		"date_completed":  completedAt,
	}).Error
	if err != nil {
		t.Fatalf("failed to complete order: %v", err)
	}
	order.PaymentTypeID = &paymentType.ID
	order.DateCompleted = &completedAt
	return order
}

// MissingID is a syntactically valid id that no fixture will ever use.
func MissingID() uuid.UUID {
	return uuid.New()
}
