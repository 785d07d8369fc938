// internal/services/forms.go
package services

import (
	"github.com/google/uuid"

	"github.com/bangazon/bangazon-backend/internal/utils"
)

// SelectOption is one entry of a select list a client renders for a form.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ProductTypePlaceholder always heads the product type select list.
var ProductTypePlaceholder = SelectOption{
	Value:    "",
	Label:    "Please select a product category",
	Selected: false,
}

func newSelectOption(id uuid.UUID, label, selected string) SelectOption {
	selectedID, err := uuid.Parse(selected)
	return SelectOption{
		Value:    id.String(),
		Label:    label,
		Selected: err == nil && selectedID == id,
	}
}

// validationFailure converts a validator error into a *ValidationError.
func validationFailure(err error) error {
	fields := utils.GetValidationErrors(err)
	if len(fields) == 0 {
		return err
	}
	return &ValidationError{Fields: fields}
}
