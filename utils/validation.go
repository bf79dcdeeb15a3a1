package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	panRegex     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarRegex = regexp.MustCompile(`^[0-9]{12}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return ValidatePAN(fl.Field().String())
	})
	_ = validate.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
		return ValidateAadhaar(fl.Field().String())
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidatePAN(pan string) bool {
	return panRegex.MatchString(pan)
}

// ValidateAadhaar accepts the 12 digits with or without the usual spaces.
func ValidateAadhaar(aadhaar string) bool {
	return aadhaarRegex.MatchString(strings.ReplaceAll(aadhaar, " ", ""))
}

// MissingFields runs the advisory checks on a record and returns one message
// per failing field, keyed by its JSON path (e.g. current_address.full_address).
// An empty map means every required marker is satisfied.
func MissingFields(record interface{}) map[string]string {
	return FormatValidationError(ValidateStruct(record))
}

func FormatValidationError(err error) map[string]string {
	errors := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors
	}
	for _, fieldError := range validationErrors {
		field := fieldPath(fieldError.Namespace())
		switch fieldError.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errors[field] = "Invalid email format"
		case "pan":
			errors[field] = "Invalid PAN format"
		case "aadhaar":
			errors[field] = "Invalid Aadhaar format"
		case "oneof":
			errors[field] = fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return errors
}

// fieldPath drops the root type name and embedded struct names from a
// validator namespace, leaving the JSON path.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p == "PersonalDetails" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}
