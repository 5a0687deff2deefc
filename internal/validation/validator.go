// Package validation provides input validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/cragbook/cragbook-server/internal/errors"
)

// albumURLPattern matches the fixed external photo-service share URL form.
// Album keys must match exactly; anything else is rejected before storage.
var albumURLPattern = regexp.MustCompile(`^https://photos\.app\.goo\.gl/[A-Za-z0-9_-]+$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty, -
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	// Album keys are share URLs from the external photo service.
	_ = v.RegisterValidation("album_url", func(fl validator.FieldLevel) bool {
		return albumURLPattern.MatchString(fl.Field().String())
	})

	// Entity keys end up inside colon-separated store keys, so colons
	// and newlines are rejected outright.
	_ = v.RegisterValidation("store_key", func(fl validator.FieldLevel) bool {
		return IsStoreKeySafe(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidAlbumURL reports whether url is a well-formed album key.
func ValidAlbumURL(url string) bool {
	return albumURLPattern.MatchString(url)
}

// CheckMembers verifies that every set member can be embedded in a
// colon-separated index key. Members that normalize to empty are skipped;
// NormalizeValues drops them anyway.
func CheckMembers(field string, values []string) error {
	for _, raw := range values {
		v := NormalizeValue(raw)
		if v == "" {
			continue
		}
		if !IsStoreKeySafe(v) {
			return domainerrors.ValidationWithDetails("validation failed", map[string]string{
				field: fmt.Sprintf("member %q must not contain ':' or control characters", raw),
			})
		}
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Collect all field errors
	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	// Return domain validation error with details
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "album_url":
		return "must be an album share URL (https://photos.app.goo.gl/...)"
	case "store_key":
		return "must not contain ':' or control characters"
	case "dive":
		return "has an invalid element"
	default:
		return "is invalid"
	}
}
