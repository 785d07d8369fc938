// internal/services/product_service_test.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/models"
	"github.com/bangazon/bangazon-backend/internal/testutil"
)

var pngImage = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func validProductRequest(productType *models.ProductType) *ProductRequest {
	return &ProductRequest{
		Title:         "Lamp",
		Description:   "A bright desk lamp",
		Price:         "19.99",
		Quantity:      2,
		City:          "Austin",
		ProductTypeID: productType.ID.String(),
	}
}

func (suite *ServiceTestSuite) TestCreateProductShowsOwnerAndType() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	testutil.CreateProductType(suite.T(), suite.db, "Electronics")
	homeGoods := testutil.CreateProductType(suite.T(), suite.db, "Home")

	created, err := suite.productService.CreateProduct(suite.ctx, owner.ID, validProductRequest(homeGoods), nil)
	suite.Require().NoError(err)

	product, err := suite.productService.GetProduct(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("Lamp", product.Title)
	suite.Equal("Austin", product.City)
	suite.Equal("19.99", product.Price.StringFixed(2))
	suite.Equal(owner.ID, product.UserID)
	suite.Require().NotNil(product.User)
	suite.Equal("u1", product.User.Username)
	suite.Require().NotNil(product.Seller)
	suite.Equal(owner.ID, product.Seller.ID)
	suite.Equal("u1 Tester", product.Seller.DisplayName)
	suite.Require().NotNil(product.ProductType)
	suite.Equal("Home", product.ProductType.Label)
	suite.False(product.CreatedAt.IsZero())
}

func (suite *ServiceTestSuite) TestCreateProductRejectsUnknownType() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	req := validProductRequest(&models.ProductType{BaseModel: models.BaseModel{ID: testutil.MissingID()}})

	_, err := suite.productService.CreateProduct(suite.ctx, owner.ID, req, nil)

	var validationErr *ValidationError
	suite.Require().True(errors.As(err, &validationErr))
	suite.Equal("product_type_id", validationErr.Fields[0].Field)

	var count int64
	suite.db.Model(&models.Product{}).Count(&count)
	suite.Zero(count)
}

func (suite *ServiceTestSuite) TestCreateProductValidatesFields() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	cases := map[string]func(*ProductRequest){
		"title":       func(r *ProductRequest) { r.Title = "Lamp!" },
		"description": func(r *ProductRequest) { r.Description = "" },
		"price":       func(r *ProductRequest) { r.Price = "1.999" },
		"quantity":    func(r *ProductRequest) { r.Quantity = -1 },
	}
	for field, mutate := range cases {
		req := validProductRequest(productType)
		mutate(req)

		_, err := suite.productService.CreateProduct(suite.ctx, owner.ID, req, nil)

		var validationErr *ValidationError
		suite.Require().True(errors.As(err, &validationErr), field)
		suite.Equal(field, validationErr.Fields[0].Field)
	}
}

func (suite *ServiceTestSuite) TestCreateProductStoresImage() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	product, err := suite.productService.CreateProduct(suite.ctx, owner.ID, validProductRequest(productType), bytes.NewReader(pngImage))
	suite.Require().NoError(err)

	suite.Require().NotEmpty(product.ImagePath)
	suite.Equal(".png", filepath.Ext(product.ImagePath))
	suite.Equal("/uploads/"+product.ImagePath, product.ImageURL)
	suite.FileExists(filepath.Join(suite.cfg.Storage.UploadDir, product.ImagePath))
}

func (suite *ServiceTestSuite) TestCreateProductRejectsNonImage() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	_, err := suite.productService.CreateProduct(suite.ctx, owner.ID, validProductRequest(productType), bytes.NewReader([]byte("#!/bin/sh")))

	suite.ErrorIs(err, ErrInvalidImage)

	var count int64
	suite.db.Model(&models.Product{}).Count(&count)
	suite.Zero(count)
}

func (suite *ServiceTestSuite) TestCreateProductRemovesImageWhenInsertFails() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	callbacks := suite.db.Callback().Create()
	suite.Require().NoError(callbacks.Before("gorm:create").Register("test:fail_products", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			tx.AddError(errors.New("insert refused"))
		}
	}))
	defer callbacks.Remove("test:fail_products")

	_, err := suite.productService.CreateProduct(suite.ctx, owner.ID, validProductRequest(productType), bytes.NewReader(pngImage))
	suite.Require().Error(err)

	entries, err := os.ReadDir(filepath.Join(suite.cfg.Storage.UploadDir, productImageFolder))
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *ServiceTestSuite) TestListProductsCapsAndOrdersNewestFirst() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		testutil.CreateProduct(suite.T(), suite.db, owner, productType, fmt.Sprintf("Item %02d", i),
			testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
	}

	products, err := suite.productService.ListProducts(suite.ctx, ProductSearchParams{})
	suite.Require().NoError(err)

	suite.Len(products, MaxListedProducts)
	suite.Equal("Item 24", products[0].Title)
	for i := 1; i < len(products); i++ {
		suite.False(products[i].CreatedAt.After(products[i-1].CreatedAt))
	}
	suite.NotNil(products[0].ProductType)
	suite.NotNil(products[0].User)
	suite.NotNil(products[0].Seller)
}

func (suite *ServiceTestSuite) TestListProductsCombinesFiltersWithAnd() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Desk Lamp", testutil.WithCity("Austin"))
	testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Floor Lamp", testutil.WithCity("Nashville"))
	testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Chair", testutil.WithCity("Austin"))

	both, err := suite.productService.ListProducts(suite.ctx, ProductSearchParams{Title: "lamp", City: "AUSTIN"})
	suite.Require().NoError(err)
	suite.Require().Len(both, 1)
	suite.Equal("Desk Lamp", both[0].Title)

	byTitle, err := suite.productService.ListProducts(suite.ctx, ProductSearchParams{Title: "LAMP"})
	suite.Require().NoError(err)
	suite.Len(byTitle, 2)

	byCity, err := suite.productService.ListProducts(suite.ctx, ProductSearchParams{City: "austin", Title: "  "})
	suite.Require().NoError(err)
	suite.Len(byCity, 2)
}

func (suite *ServiceTestSuite) TestListProductsEscapesWildcards() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Lamp")

	products, err := suite.productService.ListProducts(suite.ctx, ProductSearchParams{Title: "%"})
	suite.Require().NoError(err)
	suite.Empty(products)
}

func (suite *ServiceTestSuite) TestGetProductUnknownID() {
	_, err := suite.productService.GetProduct(suite.ctx, testutil.MissingID())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ServiceTestSuite) TestProductTypeGroups() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	toys := testutil.CreateProductType(suite.T(), suite.db, "Toys")
	books := testutil.CreateProductType(suite.T(), suite.db, "Books")
	testutil.CreateProductType(suite.T(), suite.db, "Empty")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		testutil.CreateProduct(suite.T(), suite.db, owner, toys, fmt.Sprintf("Toy %d", i),
			testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
	}
	testutil.CreateProduct(suite.T(), suite.db, owner, books, "Novel")

	groups, err := suite.productService.GetProductTypeGroups(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(groups, 2)

	suite.Equal("Books", groups[0].Label)
	suite.EqualValues(1, groups[0].ProductCount)
	suite.Len(groups[0].Products, 1)

	suite.Equal("Toys", groups[1].Label)
	suite.EqualValues(5, groups[1].ProductCount)
	suite.Require().Len(groups[1].Products, SamplesPerProductType)
	suite.Equal("Toy 0", groups[1].Products[0].Title)
	suite.Equal("Toy 1", groups[1].Products[1].Title)
	suite.Equal("Toy 2", groups[1].Products[2].Title)
}

func (suite *ServiceTestSuite) TestProductTypeGroupsEmptyCatalog() {
	testutil.CreateProductType(suite.T(), suite.db, "Toys")

	groups, err := suite.productService.GetProductTypeGroups(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(groups)
}

func (suite *ServiceTestSuite) TestProductTypeOptionsPlaceholderFirst() {
	toys := testutil.CreateProductType(suite.T(), suite.db, "Toys")
	testutil.CreateProductType(suite.T(), suite.db, "Books")

	options, err := suite.productService.ProductTypeOptions(suite.ctx, toys.ID.String())
	suite.Require().NoError(err)
	suite.Require().Len(options, 3)

	suite.Equal(ProductTypePlaceholder, options[0])
	suite.Equal("Books", options[1].Label)
	suite.False(options[1].Selected)
	suite.Equal("Toys", options[2].Label)
	suite.True(options[2].Selected)
}

func (suite *ServiceTestSuite) TestListUserProductsOnlyOwn() {
	u1 := testutil.CreateUser(suite.T(), suite.db, "u1")
	u2 := testutil.CreateUser(suite.T(), suite.db, "u2")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	testutil.CreateProduct(suite.T(), suite.db, u1, productType, "Mine")
	testutil.CreateProduct(suite.T(), suite.db, u2, productType, "Theirs")

	products, err := suite.productService.ListUserProducts(suite.ctx, u1.ID)
	suite.Require().NoError(err)
	suite.Require().Len(products, 1)
	suite.Equal("Mine", products[0].Title)
}

func (suite *ServiceTestSuite) TestUpdateProductByOwner() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	home := testutil.CreateProductType(suite.T(), suite.db, "Home")
	toys := testutil.CreateProductType(suite.T(), suite.db, "Toys")
	product := testutil.CreateProduct(suite.T(), suite.db, owner, home, "Lamp")

	req := validProductRequest(toys)
	req.Title = "Lava Lamp"
	req.Price = "25"

	updated, err := suite.productService.UpdateProduct(suite.ctx, owner.ID, product.ID, req)
	suite.Require().NoError(err)

	suite.Equal("Lava Lamp", updated.Title)
	suite.Equal("25.00", updated.Price.StringFixed(2))
	suite.Equal(toys.ID, updated.ProductTypeID)
	suite.Equal(owner.ID, updated.UserID)
	suite.Equal(product.Version+1, updated.Version)
	suite.WithinDuration(product.CreatedAt, updated.CreatedAt, time.Millisecond)
}

func (suite *ServiceTestSuite) TestBlankProductTextIsRequired() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	product := testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Lamp")

	req := validProductRequest(productType)
	req.Title = "   "
	req.Description = "\t\n"

	_, err := suite.productService.CreateProduct(suite.ctx, owner.ID, req, nil)
	var validationErr *ValidationError
	suite.Require().True(errors.As(err, &validationErr), "got %v", err)
	fields := make([]string, 0, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		fields = append(fields, f.Field)
	}
	suite.ElementsMatch([]string{"title", "description"}, fields)

	req = validProductRequest(productType)
	req.Title = "  "
	_, err = suite.productService.UpdateProduct(suite.ctx, owner.ID, product.ID, req)
	suite.Require().True(errors.As(err, &validationErr), "got %v", err)
	suite.Equal("title", validationErr.Fields[0].Field)

	var stored models.Product
	suite.Require().NoError(suite.db.First(&stored, "id = ?", product.ID).Error)
	suite.Equal("Lamp", stored.Title)

	var count int64
	suite.db.Model(&models.Product{}).Count(&count)
	suite.EqualValues(1, count)
}

func (suite *ServiceTestSuite) TestProductTextIsTrimmed() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	req := validProductRequest(productType)
	req.Title = "  Lamp  "
	req.City = " Austin "

	product, err := suite.productService.CreateProduct(suite.ctx, owner.ID, req, nil)
	suite.Require().NoError(err)
	suite.Equal("Lamp", product.Title)
	suite.Equal("Austin", product.City)
}

func (suite *ServiceTestSuite) TestUpdateProductByOtherUserIsNotFound() {
	u1 := testutil.CreateUser(suite.T(), suite.db, "u1")
	u2 := testutil.CreateUser(suite.T(), suite.db, "u2")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	product := testutil.CreateProduct(suite.T(), suite.db, u2, productType, "Lamp")

	_, err := suite.productService.UpdateProduct(suite.ctx, u1.ID, product.ID, validProductRequest(productType))
	suite.ErrorIs(err, ErrNotFound)

	var stored models.Product
	suite.Require().NoError(suite.db.First(&stored, "id = ?", product.ID).Error)
	suite.Equal("Lamp", stored.Title)
	suite.Equal(u2.ID, stored.UserID)
}

func (suite *ServiceTestSuite) TestUpdateProductStaleVersionConflicts() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	product := testutil.CreateProduct(suite.T(), suite.db, owner, productType, "Lamp")

	first := validProductRequest(productType)
	first.Version = &product.Version
	_, err := suite.productService.UpdateProduct(suite.ctx, owner.ID, product.ID, first)
	suite.Require().NoError(err)

	second := validProductRequest(productType)
	second.Title = "Other"
	second.Version = &product.Version
	_, err = suite.productService.UpdateProduct(suite.ctx, owner.ID, product.ID, second)
	suite.ErrorIs(err, ErrConflict)
}

func (suite *ServiceTestSuite) TestDeleteProductWithoutLineItems() {
	owner := testutil.CreateUser(suite.T(), suite.db, "u1")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")

	product, err := suite.productService.CreateProduct(suite.ctx, owner.ID, validProductRequest(productType), bytes.NewReader(pngImage))
	suite.Require().NoError(err)
	imageFile := filepath.Join(suite.cfg.Storage.UploadDir, product.ImagePath)
	suite.Require().FileExists(imageFile)

	result, err := suite.productService.DeleteProduct(suite.ctx, owner.ID, product.ID)
	suite.Require().NoError(err)
	suite.Equal(DeleteOutcomeDeleted, result.Outcome)

	_, err = suite.productService.GetProduct(suite.ctx, product.ID)
	suite.ErrorIs(err, ErrNotFound)
	suite.NoFileExists(imageFile)
}

func (suite *ServiceTestSuite) TestDeleteProductWithLineItemsIsDenied() {
	seller := testutil.CreateUser(suite.T(), suite.db, "seller")
	shopper := testutil.CreateUser(suite.T(), suite.db, "shopper")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	product := testutil.CreateProduct(suite.T(), suite.db, seller, productType, "Lamp")
	testutil.CreateCart(suite.T(), suite.db, shopper, product)

	result, err := suite.productService.DeleteProduct(suite.ctx, seller.ID, product.ID)
	suite.Require().NoError(err)
	suite.Equal(DeleteOutcomeDenied, result.Outcome)
	suite.EqualValues(1, result.LineItemCount)

	stored, err := suite.productService.GetProduct(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal("Lamp", stored.Title)
}

func (suite *ServiceTestSuite) TestDeleteProductByOtherUserIsNotFound() {
	u1 := testutil.CreateUser(suite.T(), suite.db, "u1")
	u2 := testutil.CreateUser(suite.T(), suite.db, "u2")
	productType := testutil.CreateProductType(suite.T(), suite.db, "Home")
	product := testutil.CreateProduct(suite.T(), suite.db, u2, productType, "Lamp")

	_, err := suite.productService.DeleteProduct(suite.ctx, u1.ID, product.ID)
	suite.ErrorIs(err, ErrNotFound)

	stored, err := suite.productService.GetProduct(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal(u2.ID, stored.UserID)
}
