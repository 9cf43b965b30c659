package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/slug"
)

// ValidationMessage is the envelope text of every rule violation.
const ValidationMessage = "Validation failed"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	}))
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	// bcrypt limits the encoded length, not the rune count.
	must(v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
// Violations come back as one validation error listing every field.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apperr.Error{
				Kind:    apperr.KindValidation,
				Message: "Request body too large",
				Status:  http.StatusRequestEntityTooLarge,
			}
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid JSON body")
	}

	return validateStruct(dst)
}

// validateStruct runs the struct's validate tags.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperr.Validation(ValidationMessage, fields...)
}

// fieldMessage renders one violation as a sentence about the field.
func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "notblank":
		return name + " cannot be empty"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s cannot have more than %s entries", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "bcryptlen":
		return auth.PasswordTooLongMessage
	case "slug":
		return name + " must contain only lowercase letters, digits and single hyphens"
	case "mongodb":
		return name + " must be a valid id"
	case "url":
		return name + " must be a valid URL"
	}
	return name + " is invalid"
}

// label turns a JSON field name into sentence case: "featuredImage"
// becomes "Featured image", "tags[2]" becomes "Tags[2]".
func label(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
