// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bangazon/bangazon-backend/internal/database"
	"github.com/bangazon/bangazon-backend/internal/models"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

// OrderService manages carts (open orders) and completed orders. Orders are
// created by the add-to-cart flow, never here.
type OrderService struct {
	db                 *gorm.DB
	paymentTypeService *PaymentTypeService
}

type CheckoutRequest struct {
	PaymentTypeID string `json:"payment_type_id" form:"payment_type_id" validate:"required,uuid"`
}

// OrderView is an order with its derived status and total.
type OrderView struct {
	*models.Order
	Status models.OrderStatus `json:"status"`
	Total  decimal.Decimal    `json:"total"`
}

type CheckoutForm struct {
	Order        OrderView      `json:"order"`
	PaymentTypes []SelectOption `json:"payment_types"`
}

func NewOrderService(db *gorm.DB, paymentTypeService *PaymentTypeService) *OrderService {
	return &OrderService{
		db:                 db,
		paymentTypeService: paymentTypeService,
	}
}

func newOrderView(order *models.Order) OrderView {
	return OrderView{
		Order:  order,
		Status: order.Status(),
		Total:  order.Total(),
	}
}

// ListCompletedOrders returns the user's paid orders, most recent first.
func (s *OrderService) ListCompletedOrders(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("PaymentType").
		Preload("OrderProducts.Product").
		Where("user_id = ? AND payment_type_id IS NOT NULL", userID).
		Order("date_completed DESC").
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}

	return orderViews(orders), nil
}

// GetCart returns every open order of the user with its line items.
func (s *OrderService) GetCart(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("OrderProducts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at").Order("id")
		}).
		Preload("OrderProducts.Product.ProductType").
		Where("user_id = ? AND payment_type_id IS NULL", userID).
		Order("created_at").
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return orderViews(orders), nil
}

// GetOrder returns ErrNotFound unless the order belongs to userID.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.findOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	view := newOrderView(order)
	return &view, nil
}

// GetCheckoutForm returns an open order together with the payment types the
// user can complete it with.
func (s *OrderService) GetCheckoutForm(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutForm, error) {
	order, err := s.findOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, ErrNotFound
	}

	options, err := s.paymentTypeService.PaymentTypeOptions(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	return &CheckoutForm{
		Order:        newOrderView(order),
		PaymentTypes: options,
	}, nil
}

// Checkout completes an open order by attaching one of the user's payment
// types. Payment type and completion date are written by one conditional
// update, so an order is never half completed.
func (s *OrderService) Checkout(ctx context.Context, userID, orderID uuid.UUID, req *CheckoutRequest) (*OrderView, error) {
	order, err := s.findOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailure(err)
	}
	paymentTypeID, err := uuid.Parse(req.PaymentTypeID)
	if err != nil {
		return nil, newValidationError("payment_type_id", "uuid", "Please select a payment type")
	}

	if _, err := s.paymentTypeService.GetPaymentType(ctx, userID, paymentTypeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newValidationError("payment_type_id", "exists", "Please select a payment type")
		}
		return nil, err
	}

	if !order.IsOpen() {
		return nil, ErrNotFound
	}

	completedAt := time.Now().UTC()
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND payment_type_id IS NULL AND version = ?", orderID, userID, order.Version).
			Updates(map[string]interface{}{
				"payment_type_id": paymentTypeID,
				"date_completed":  completedAt,
				"version":         gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return s.staleOrderError(tx, userID, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  userID,
	}).Info("Order completed")

	return s.GetOrder(ctx, userID, orderID)
}

// DeleteOrder removes an open order and its line items together.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !order.IsOpen() {
			return ErrNotFound
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderProduct{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

func (s *OrderService) findOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("PaymentType").
		Preload("OrderProducts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at").Order("id")
		}).
		Preload("OrderProducts.Product.ProductType").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// staleOrderError explains a checkout update that matched no row. An order
// that was completed in the meantime is no longer checkout-able.
func (s *OrderService) staleOrderError(tx *gorm.DB, userID, orderID uuid.UUID) error {
	var order models.Order
	if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if !order.IsOpen() {
		return ErrNotFound
	}
	return ErrConflict
}

func orderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	return views
}
