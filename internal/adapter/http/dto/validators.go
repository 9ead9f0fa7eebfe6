package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var safeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

// RegisterCustomValidators installs the custom binding validators.
// Call once at startup.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("safe_id", validateSafeID)
}

// validateSafeID restricts identifiers to alphanumerics, underscore,
// hyphen and dot. Card UIDs arrive from scanner firmware and end up in
// SQL parameters and log lines, so keep the alphabet tight.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeIDPattern.MatchString(fl.Field().String())
}

// SanitizeStruct trims whitespace and HTML-escapes all string fields
// of a struct pointer, recursively. Non-struct values are ignored.
func SanitizeStruct(obj any) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	sanitizeValue(v.Elem())
}

func sanitizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Field(i).CanSet() {
				sanitizeValue(v.Field(i))
			}
		}
	case reflect.Ptr:
		if !v.IsNil() {
			sanitizeValue(v.Elem())
		}
	case reflect.String:
		v.SetString(html.EscapeString(strings.TrimSpace(v.String())))
	}
}
