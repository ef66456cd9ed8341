package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
)

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct tag validation and converts failures to a ValidationError
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return &domain.ValidationError{Message: "validation failed", Fields: fields}
}

// fieldPath drops the root struct name from the namespace, e.g. "items[0].quantity"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}

// assignIdentity gives new records an id and creation time and keeps the
// stored creation time of records that already exist
func assignIdentity(id *string, createdAt, updatedAt *time.Time, now time.Time, stored func() (time.Time, error)) error {
	if *id == "" {
		*id = uuid.NewString()
		*createdAt = now
		*updatedAt = now
		return nil
	}

	created, err := stored()
	switch {
	case err == nil:
		*createdAt = created
	case domain.IsNotFound(err):
		if createdAt.IsZero() {
			*createdAt = now
		}
	default:
		return err
	}
	*updatedAt = now
	return nil
}
