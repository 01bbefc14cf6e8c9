package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/upload"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals validate as their float value so gt/gte apply
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		fl, _ := d.Float64()
		return fl
	}, decimal.Decimal{})

	enums := map[string]func(string) bool{
		"order_type":      func(s string) bool { _, ok := order.ParseType(s); return ok },
		"order_status":    func(s string) bool { _, ok := order.ParseStatus(s); return ok },
		"payment_status":  func(s string) bool { _, ok := order.ParsePaymentStatus(s); return ok },
		"design_status":   func(s string) bool { _, ok := design.ParseStatus(s); return ok },
		"review_status":   func(s string) bool { _, ok := design.ParseReviewStatus(s); return ok },
		"contact_status":  func(s string) bool { _, ok := contact.ParseStatus(s); return ok },
		"upload_category": func(s string) bool { _, ok := upload.ParseCategory(s); return ok },
	}
	for tag, accept := range enums {
		accept := accept
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return accept(fl.Field().String())
		})
	}

	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := parseISO8601(fl.Field().String())
		return err == nil
	})

	return v
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields,
// then runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Message: "request body is required"}
		}
		return &ValidationError{Message: "invalid request body: " + err.Error()}
	}
	if dec.More() {
		return &ValidationError{Message: "request body must contain a single JSON object"}
	}

	if err := validate.Struct(dst); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		fields[path] = describe(fe)
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s characters or items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "iso8601":
		return "must be an ISO8601 date or timestamp"
	}
	return "is not a valid " + strings.ReplaceAll(fe.Tag(), "_", " ")
}
