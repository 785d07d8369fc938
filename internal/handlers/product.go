// internal/handlers/product.go
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bangazon/bangazon-backend/internal/i18n"
	"github.com/bangazon/bangazon-backend/internal/services"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

// multipartOverhead leaves room for the text fields next to the image.
const multipartOverhead = 1 << 20

type ProductHandler struct {
	productService *services.ProductService
	maxUploadBytes int64
}

func NewProductHandler(productService *services.ProductService, maxImageSize int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUploadBytes: maxImageSize + multipartOverhead,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var params services.ProductSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /products/types
func (h *ProductHandler) GetProductTypes(c *gin.Context) {
	groups, err := h.productService.GetProductTypeGroups(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductTypeNotFound)
		return
	}

	utils.SuccessResponse(c, groups)
}

// GET /products/new
func (h *ProductHandler) GetProductForm(c *gin.Context) {
	options, err := h.productService.ProductTypeOptions(c.Request.Context(), "")
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductTypeNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"product_types": options})
}

// GET /products/mine
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	products, err := h.productService.ListUserProducts(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, products)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req services.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	// Validate request
	req.Normalize()
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		h.formValidationError(c, validationErrors, req.ProductTypeID)
		return
	}

	image, err := openImage(c)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.bindError(c, err)
			return
		}
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), nil)
		return
	}
	var imageReader io.Reader
	if image != nil {
		defer image.Close()
		imageReader = image
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), userID, &req, imageReader)
	if err != nil {
		h.productError(c, err, req.ProductTypeID)
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{
		Success: true,
		Data:    product,
		Meta:    gin.H{"message": i18n.T(lang, i18n.KeyProductCreated)},
	})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	var req services.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	// Ownership is checked before field validation
	product, err := h.productService.UpdateProduct(c.Request.Context(), userID, productID, &req)
	if err != nil {
		h.productError(c, err, req.ProductTypeID)
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Data:    product,
		Meta:    gin.H{"message": i18n.T(lang, i18n.KeyProductUpdated)},
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	result, err := h.productService.DeleteProduct(c.Request.Context(), userID, productID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductNotFound)
		return
	}

	if result.Outcome == services.DeleteOutcomeDenied {
		utils.DeniedResponse(c, "DELETION_DENIED", i18n.T(lang, i18n.KeyProductDeletionDenied), result)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"outcome": result.Outcome,
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

func (h *ProductHandler) productError(c *gin.Context, err error, selectedType string) {
	lang := utils.GetLangFromContext(c)

	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.formValidationError(c, validationErr.Fields, selectedType)
	case errors.Is(err, services.ErrInvalidImage):
		h.formValidationError(c, []utils.ValidationError{{
			Field:   "image",
			Tag:     "image",
			Message: i18n.T(lang, i18n.KeyFileInvalidType),
		}}, selectedType)
	case errors.Is(err, services.ErrImageTooLarge):
		h.formValidationError(c, []utils.ValidationError{{
			Field:   "image",
			Tag:     "max",
			Message: i18n.T(lang, i18n.KeyFileTooLarge),
		}}, selectedType)
	default:
		handleServiceError(c, err, i18n.KeyProductNotFound)
	}
}

// formValidationError returns the field errors together with the category
// options so the client can redisplay the form.
func (h *ProductHandler) formValidationError(c *gin.Context, fields []utils.ValidationError, selectedType string) {
	options, err := h.productService.ProductTypeOptions(c.Request.Context(), selectedType)
	if err != nil {
		handleServiceError(c, err, i18n.KeyProductTypeNotFound)
		return
	}

	utils.FormValidationErrorResponse(c, fields, gin.H{"product_types": options})
}

func (h *ProductHandler) bindError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", i18n.T(lang, i18n.KeyRequestTooLarge), nil)
		return
	}
	utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
}

// openImage returns the optional "image" part of a multipart request.
func openImage(c *gin.Context) (multipart.File, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return header.Open()
}
