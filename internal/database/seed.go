// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/models"
)

// DefaultProductTypes is the reference data every environment starts with.
var DefaultProductTypes = []string{
	"Electronics",
	"Home and Garden",
	"Sporting Goods",
	"Clothing",
	"Toys",
}

const demoPassword = "Bangazon-Demo-1!"

// SeedInitialData loads product types, a demo seller and a demo shopper with an
// open cart. It is safe to run more than once.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	return WithTransaction(db, func(tx *gorm.DB) error {
		types, err := seedProductTypes(tx)
		if err != nil {
			return err
		}

		var userCount int64
		if err := tx.Model(&models.User{}).Count(&userCount).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if userCount > 0 {
			logrus.Info("Users already present, skipping demo accounts")
			return nil
		}

		seller, err := seedUser(tx, "seller", "seller@bangazon.local", "Sam", "Seller")
		if err != nil {
			return err
		}
		shopper, err := seedUser(tx, "shopper", "shopper@bangazon.local", "Pat", "Shopper")
		if err != nil {
			return err
		}

		paymentTypes := []models.PaymentType{
			{AccountNumber: "4111111111114242", PaymentMethod: "Visa", UserID: shopper.ID},
			{AccountNumber: "371449635398431", PaymentMethod: "Amex", UserID: shopper.ID},
		}
		if err := tx.Create(&paymentTypes).Error; err != nil {
			return fmt.Errorf("failed to create payment types: %w", err)
		}

		products := []models.Product{
			{Title: "Desk Lamp", Description: "Adjustable LED desk lamp", Price: decimal.RequireFromString("19.99"), Quantity: 5, City: "Austin", ProductTypeID: types["Home and Garden"].ID, UserID: seller.ID},
			{Title: "Bluetooth Speaker", Description: "Portable waterproof speaker", Price: decimal.RequireFromString("49.00"), Quantity: 12, City: "Nashville", ProductTypeID: types["Electronics"].ID, UserID: seller.ID},
			{Title: "Soccer Ball", Description: "Size 5 match ball", Price: decimal.RequireFromString("24.50"), Quantity: 30, City: "Nashville", ProductTypeID: types["Sporting Goods"].ID, UserID: seller.ID},
			{Title: "Rain Jacket", Description: "Lightweight packable shell", Price: decimal.RequireFromString("75.00"), Quantity: 3, City: "Portland", ProductTypeID: types["Clothing"].ID, UserID: seller.ID},
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to create products: %w", err)
		}

		cart := &models.Order{UserID: shopper.ID}
		if err := tx.Create(cart).Error; err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}
		lineItems := []models.OrderProduct{
			{OrderID: cart.ID, ProductID: products[0].ID},
			{OrderID: cart.ID, ProductID: products[1].ID},
		}
		if err := tx.Create(&lineItems).Error; err != nil {
			return fmt.Errorf("failed to create cart line items: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"seller":  seller.Email,
			"shopper": shopper.Email,
		}).Info("Demo accounts created")
		return nil
	})
}

func seedProductTypes(tx *gorm.DB) (map[string]models.ProductType, error) {
	types := make(map[string]models.ProductType, len(DefaultProductTypes))

	for _, label := range DefaultProductTypes {
		var productType models.ProductType
		if err := tx.Where(models.ProductType{Label: label}).
			FirstOrCreate(&productType).Error; err != nil {
			return nil, fmt.Errorf("failed to seed product type %q: %w", label, err)
		}
		types[label] = productType
	}

	return types, nil
}

func seedUser(tx *gorm.DB, username, email, firstName, lastName string) (*models.User, error) {
	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := user.SetPassword(demoPassword); err != nil {
		return nil, fmt.Errorf("failed to set password for %s: %w", username, err)
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return user, nil
}
