// internal/services/payment_type_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/models"
)

// PaymentTypeService reads the stored payment methods of a user. Creating and
// editing them belongs to the user profile.
type PaymentTypeService struct {
	db *gorm.DB
}

func NewPaymentTypeService(db *gorm.DB) *PaymentTypeService {
	return &PaymentTypeService{db: db}
}

func (s *PaymentTypeService) ListPaymentTypes(ctx context.Context, userID uuid.UUID) ([]models.PaymentType, error) {
	var paymentTypes []models.PaymentType
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Order("id").
		Find(&paymentTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment types: %w", err)
	}
	return paymentTypes, nil
}

// GetPaymentType returns ErrNotFound unless the payment type belongs to userID.
func (s *PaymentTypeService) GetPaymentType(ctx context.Context, userID, paymentTypeID uuid.UUID) (*models.PaymentType, error) {
	var paymentType models.PaymentType
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", paymentTypeID, userID).
		First(&paymentType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &paymentType, nil
}

// PaymentTypeOptions is the select list shown on the checkout form.
func (s *PaymentTypeService) PaymentTypeOptions(ctx context.Context, userID uuid.UUID, selected string) ([]SelectOption, error) {
	paymentTypes, err := s.ListPaymentTypes(ctx, userID)
	if err != nil {
		return nil, err
	}

	options := make([]SelectOption, 0, len(paymentTypes))
	for i := range paymentTypes {
		options = append(options, newSelectOption(paymentTypes[i].ID, paymentTypes[i].Label(), selected))
	}
	return options, nil
}
