// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate *validator.Validate

	productTextPattern = regexp.MustCompile(`^[a-zA-Z0-9_\s\-]*$`)
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("product_text", validateProductText)
	validate.RegisterValidation("money", validateMoney)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// Username should be alphanumeric and underscores, 3-50 characters
	if len(username) < 3 || len(username) > 50 {
		return false
	}

	return usernamePattern.MatchString(username)
}

// Letters, digits, whitespace, hyphen and underscore only.
func validateProductText(fl validator.FieldLevel) bool {
	return productTextPattern.MatchString(fl.Field().String())
}

// A non-negative amount with at most two decimal places that fits decimal(10,2).
func validateMoney(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	if amount.IsNegative() || !amount.Equal(amount.Round(2)) {
		return false
	}
	return amount.LessThan(decimal.New(1, 8))
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   toSnakeCase(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if e.Field() == "ProductTypeID" {
			return "Please select a product category"
		}
		if e.Field() == "PaymentTypeID" {
			return "Please select a payment type"
		}
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "uuid":
		return e.Field() + " must be a valid identifier"
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	case "product_text":
		return e.Field() + " may only contain letters, numbers, spaces, hyphens and underscores"
	case "money":
		return e.Field() + " must be a non-negative amount with at most two decimal places"
	default:
		return e.Field() + " is invalid"
	}
}

// ProductTypeID -> product_type_id
func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
