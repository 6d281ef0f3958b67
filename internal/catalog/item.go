package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidItem is returned when a catalog item is missing required fields.
var ErrInvalidItem = errors.New("invalid catalog item")

// Item is the read-only shape of a record from the primary catalog.
type Item struct {
	ID   string   `json:"id" validate:"required"`
	Name Name     `json:"name"`
	Year int      `json:"year,omitempty" validate:"gte=0"`
	Type *TypeRef `json:"type,omitempty"`
}

// Name holds the display names of an item. English is optional.
type Name struct {
	Main    string `json:"main" validate:"required"`
	English string `json:"english,omitempty"`
}

// TypeRef carries the catalog's release type code (tv, movie, ...).
type TypeRef struct {
	Code string `json:"code"`
}

// TypeCode returns the lower-cased type code or "" when the item has none.
func (i Item) TypeCode() string {
	if i.Type == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(i.Type.Code))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func itemValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate reports whether the item carries the fields resolution needs.
// Blank strings count as missing.
func (i Item) Validate() error {
	normalized := i
	normalized.ID = strings.TrimSpace(i.ID)
	normalized.Name.Main = strings.TrimSpace(i.Name.Main)
	if err := itemValidator().Struct(normalized); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}
