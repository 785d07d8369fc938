// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bangazon/bangazon-backend/internal/i18n"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// NotFoundResponse never says whether the resource is missing or belongs to someone else.
func NotFoundResponse(c *gin.Context, key string) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, key), nil)
}

func ConflictResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyConcurrencyConflict)
	}
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

// DeniedResponse reports a business rule refusal, distinct from a failure.
func DeniedResponse(c *gin.Context, code, message string, details interface{}) {
	ErrorResponse(c, http.StatusConflict, code, message, details)
}

func InternalErrorResponse(c *gin.Context) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", i18n.T(lang, i18n.KeyInternalError), nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	FormValidationErrorResponse(c, errors, nil)
}

// FormValidationErrorResponse carries whatever the client needs to redisplay the
// form (select options, previous choices) in meta.
func FormValidationErrorResponse(c *gin.Context, errors []ValidationError, form interface{}) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Details: errors,
		},
		Meta: form,
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

// GetUserIDFromContext returns the authenticated caller set by the auth middleware.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			if id, err := uuid.Parse(userIDStr); err == nil {
				return id, true
			}
		}
	}
	return uuid.Nil, false
}
