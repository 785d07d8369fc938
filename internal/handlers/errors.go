// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bangazon/bangazon-backend/internal/i18n"
	"github.com/bangazon/bangazon-backend/internal/services"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

// handleServiceError maps service errors onto responses. Validation errors are
// handled by the caller because some forms need extra data in the response.
func handleServiceError(c *gin.Context, err error, notFoundKey string) {
	lang := utils.GetLangFromContext(c)

	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, notFoundKey)
	case errors.As(err, &validationErr):
		utils.ValidationErrorResponse(c, validationErr.Fields)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyConcurrencyConflict))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrUserExists):
		utils.ErrorResponse(c, http.StatusConflict, "USER_EXISTS", i18n.T(lang, i18n.KeyAuthUserExists), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		utils.InternalErrorResponse(c)
	}
}

// parseIDParam reads a UUID path parameter. A malformed id is reported exactly
// like an unknown one.
func parseIDParam(c *gin.Context, name, notFoundKey string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.NotFoundResponse(c, notFoundKey)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller or writes a 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return userID, true
}
