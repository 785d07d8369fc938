// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bangazon/bangazon-backend/internal/database"
	"github.com/bangazon/bangazon-backend/internal/models"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

const (
	// MaxListedProducts caps the public catalog listing.
	MaxListedProducts = 20
	// SamplesPerProductType is how many products the grouped view shows per type.
	SamplesPerProductType = 3
)

type ProductService struct {
	db             *gorm.DB
	storageService *StorageService
}

// ProductRequest carries the editable product fields for both create and edit.
// Price is a decimal string so that cents are never rounded through a float.
type ProductRequest struct {
	Title         string `json:"title" form:"title" validate:"required,max=55,product_text"`
	Description   string `json:"description" form:"description" validate:"required,max=255,product_text"`
	Price         string `json:"price" form:"price" validate:"required,money"`
	Quantity      int    `json:"quantity" form:"quantity" validate:"min=0"`
	City          string `json:"city" form:"city" validate:"max=100"`
	ProductTypeID string `json:"product_type_id" form:"product_type_id" validate:"required,uuid"`

	// Version, when sent on edit, must match the stored version.
	Version *int `json:"version,omitempty" form:"version"`
}

// Normalize trims surrounding whitespace so that blank text fails "required"
// instead of being stored empty.
func (r *ProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Price = strings.TrimSpace(r.Price)
	r.City = strings.TrimSpace(r.City)
	r.ProductTypeID = strings.TrimSpace(r.ProductTypeID)
}

type ProductSearchParams struct {
	Title string `form:"title"`
	City  string `form:"city"`
}

// ProductTypeGroup is one row of the grouped catalog view.
type ProductTypeGroup struct {
	ID           uuid.UUID        `json:"id"`
	Label        string           `json:"label"`
	ProductCount int64            `json:"product_count"`
	Products     []models.Product `json:"products"`
}

type productTypeCount struct {
	ID           uuid.UUID
	Label        string
	ProductCount int64
}

type DeleteOutcome string

const (
	DeleteOutcomeDeleted DeleteOutcome = "deleted"
	DeleteOutcomeDenied  DeleteOutcome = "denied"
)

type DeleteProductResult struct {
	Outcome       DeleteOutcome `json:"outcome"`
	LineItemCount int64         `json:"line_item_count"`
}

func NewProductService(db *gorm.DB, storageService *StorageService) *ProductService {
	return &ProductService{
		db:             db,
		storageService: storageService,
	}
}

// ListProducts returns the newest products. Title and city are case-insensitive
// substring filters and must both match when both are given.
func (s *ProductService) ListProducts(ctx context.Context, params ProductSearchParams) ([]models.Product, error) {
	query := s.db.WithContext(ctx).
		Preload("User").
		Preload("ProductType")

	if title := strings.TrimSpace(params.Title); title != "" {
		query = query.Where("LOWER(title) LIKE ?", containsPattern(title))
	}
	if city := strings.TrimSpace(params.City); city != "" {
		query = query.Where("LOWER(city) LIKE ?", containsPattern(city))
	}

	var products []models.Product
	if err := query.
		Order("created_at DESC").
		Order("id").
		Limit(MaxListedProducts).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return s.presentAll(products), nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("ProductType").
		First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.present(&product)
	return &product, nil
}

// GetProductTypeGroups lists every product type that has products, ordered by
// label, with its product count and its oldest products as samples.
func (s *ProductService) GetProductTypeGroups(ctx context.Context) ([]ProductTypeGroup, error) {
	db := s.db.WithContext(ctx)

	var counts []productTypeCount
	if err := db.Table("product_types").
		Select("product_types.id, product_types.label, COUNT(products.id) AS product_count").
		Joins("JOIN products ON products.product_type_id = product_types.id").
		Group("product_types.id, product_types.label").
		Order("product_types.label").
		Order("product_types.id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products by type: %w", err)
	}
	if len(counts) == 0 {
		return []ProductTypeGroup{}, nil
	}

	ranked := db.Model(&models.Product{}).
		Select("products.*, ROW_NUMBER() OVER (PARTITION BY product_type_id ORDER BY created_at ASC, id ASC) AS rn")

	var samples []models.Product
	if err := db.Table("(?) AS products", ranked).
		Where("rn <= ?", SamplesPerProductType).
		Order("product_type_id").
		Order("rn").
		Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("failed to load sample products: %w", err)
	}

	byType := make(map[uuid.UUID][]models.Product, len(counts))
	for _, product := range s.presentAll(samples) {
		byType[product.ProductTypeID] = append(byType[product.ProductTypeID], product)
	}

	groups := make([]ProductTypeGroup, 0, len(counts))
	for _, c := range counts {
		products := byType[c.ID]
		if products == nil {
			products = []models.Product{}
		}
		groups = append(groups, ProductTypeGroup{
			ID:           c.ID,
			Label:        c.Label,
			ProductCount: c.ProductCount,
			Products:     products,
		})
	}

	return groups, nil
}

// ProductTypeOptions builds the category select list for the product form. The
// placeholder is always first; only the option matching selected is marked.
func (s *ProductService) ProductTypeOptions(ctx context.Context, selected string) ([]SelectOption, error) {
	var types []models.ProductType
	if err := s.db.WithContext(ctx).
		Order("label").
		Order("id").
		Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list product types: %w", err)
	}

	options := make([]SelectOption, 0, len(types)+1)
	options = append(options, ProductTypePlaceholder)
	for _, productType := range types {
		options = append(options, newSelectOption(productType.ID, productType.Label, selected))
	}
	return options, nil
}

// ListUserProducts returns everything the user is selling, newest first.
func (s *ProductService) ListUserProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Preload("ProductType").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list user products: %w", err)
	}

	return s.presentAll(products), nil
}

// CreateProduct stores the optional image first and removes it again if the
// product row cannot be written.
func (s *ProductService) CreateProduct(ctx context.Context, ownerID uuid.UUID, req *ProductRequest, image io.Reader) (*models.Product, error) {
	price, productTypeID, err := s.validateProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         price,
		Quantity:      req.Quantity,
		City:          req.City,
		UserID:        ownerID,
		ProductTypeID: productTypeID,
	}

	if image != nil {
		upload, err := s.storageService.SaveImage(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		product.ImagePath = upload.Key
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		if product.ImagePath != "" {
			s.storageService.deleteImageBestEffort(context.WithoutCancel(ctx), product.ImagePath)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"user_id":    ownerID,
	}).Info("Product created")

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct edits a product owned by ownerID. The owner never changes.
func (s *ProductService) UpdateProduct(ctx context.Context, ownerID, productID uuid.UUID, req *ProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", productID, ownerID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	price, productTypeID, err := s.validateProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	version := product.Version
	if req.Version != nil {
		version = *req.Version
	}

	result := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND user_id = ? AND version = ?", productID, ownerID, version).
		Updates(map[string]interface{}{
			"title":           req.Title,
			"description":     req.Description,
			"price":           price,
			"quantity":        req.Quantity,
			"city":            req.City,
			"product_type_id": productTypeID,
			"version":         gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, s.staleProductError(ctx, ownerID, productID)
	}

	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes a product only while no order references it. The count
// and the delete run under a row lock so a product cannot be deleted out from
// under a line item.
func (s *ProductService) DeleteProduct(ctx context.Context, ownerID, productID uuid.UUID) (*DeleteProductResult, error) {
	var (
		result    DeleteProductResult
		imagePath string
	)

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", productID, ownerID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&models.OrderProduct{}).
			Where("product_id = ?", productID).
			Count(&result.LineItemCount).Error; err != nil {
			return fmt.Errorf("failed to count line items: %w", err)
		}
		if result.LineItemCount > 0 {
			result.Outcome = DeleteOutcomeDenied
			return nil
		}

		if err := tx.Delete(&product).Error; err != nil {
			return err
		}

		result.Outcome = DeleteOutcomeDeleted
		imagePath = product.ImagePath
		return nil
	})
	if err != nil {
		// A line item inserted concurrently trips the foreign key
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return &DeleteProductResult{Outcome: DeleteOutcomeDenied, LineItemCount: 1}, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if imagePath != "" {
		s.storageService.deleteImageBestEffort(context.WithoutCancel(ctx), imagePath)
	}

	return &result, nil
}

// validateProduct checks the request fields and that the product type exists.
func (s *ProductService) validateProduct(ctx context.Context, req *ProductRequest) (decimal.Decimal, uuid.UUID, error) {
	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return decimal.Zero, uuid.Nil, validationFailure(err)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return decimal.Zero, uuid.Nil, newValidationError("price", "money", "Price must be a non-negative amount with at most two decimal places")
	}

	productTypeID, err := uuid.Parse(req.ProductTypeID)
	if err != nil {
		return decimal.Zero, uuid.Nil, newValidationError("product_type_id", "uuid", ProductTypePlaceholder.Label)
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.ProductType{}).
		Where("id = ?", productTypeID).
		Count(&count).Error; err != nil {
		return decimal.Zero, uuid.Nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return decimal.Zero, uuid.Nil, newValidationError("product_type_id", "exists", ProductTypePlaceholder.Label)
	}

	return price.Round(2), productTypeID, nil
}

// staleProductError explains a conditional update that matched no row.
func (s *ProductService) staleProductError(ctx context.Context, ownerID, productID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND user_id = ?", productID, ownerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

// present fills the response-only fields: the public image URL and the
// seller summary that stands in for the owner's account.
func (s *ProductService) present(product *models.Product) {
	if s.storageService != nil && product.ImagePath != "" {
		product.ImageURL = s.storageService.URL(product.ImagePath)
	}
	if product.User != nil {
		product.Seller = product.User.Seller()
	}
}

func (s *ProductService) presentAll(products []models.Product) []models.Product {
	for i := range products {
		s.present(&products[i])
	}
	return products
}

// containsPattern escapes LIKE wildcards in term and wraps it for a
// case-insensitive substring match against a LOWER() column.
func containsPattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(term)) + "%"
}
