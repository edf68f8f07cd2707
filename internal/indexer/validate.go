package indexer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hyperjump/dialname/internal/models"
)

// ErrInvalidContact is returned when a contact input fails validation.
var ErrInvalidContact = errors.New("invalid contact")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names ("name", "number") rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// cleanInput trims whitespace and collapses runs of spaces in the name.
func cleanInput(in *models.ContactInput) {
	in.DisplayName = strings.Join(strings.Fields(in.DisplayName), " ")
	in.Number = strings.TrimSpace(in.Number)
	in.Type = strings.TrimSpace(in.Type)
	in.Label = strings.TrimSpace(in.Label)
}

// ValidateInput cleans in and checks it. Errors wrap ErrInvalidContact.
func ValidateInput(in *models.ContactInput) error {
	if in == nil {
		return fmt.Errorf("%w: missing contact", ErrInvalidContact)
	}
	cleanInput(in)
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fe.Field()+" is too long")
		case "containsany":
			msgs = append(msgs, fe.Field()+" must contain a digit")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidContact, strings.Join(msgs, "; "))
}
