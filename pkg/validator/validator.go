package validator

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/encoding/json"
)

var (
	v *validator.Validate

	regxBundleID = regexp.MustCompile(`(?i)^[a-z0-9]+\.[a-z0-9]+(\.[a-z0-9]+)+$`)
)

func init() {
	v = validator.New()

	// use json tag as field name, so the error can be returned as is to the client
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	_ = v.RegisterValidation("bundleid", isBundleID)
	_ = v.RegisterValidation("jsonobject", isJSONObject)
}

func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return v.Struct(i)
}

// Var validates single variable using validator tag.
func Var(field interface{}, tag string) error {
	return v.Var(field, tag)
}

func isBundleID(fl validator.FieldLevel) bool {
	return regxBundleID.MatchString(fl.Field().String())
}

// isJSONObject accept json.RawMessage, []byte, string or map as long as it represents JSON object.
func isJSONObject(fl validator.FieldLevel) bool {
	var raw []byte
	switch val := fl.Field().Interface().(type) {
	case json.RawMessage:
		raw = val
	case []byte:
		raw = val
	case string:
		raw = []byte(val)
	case map[string]interface{}:
		return val != nil
	default:
		// named byte slice such as storage.JSON
		f := fl.Field()
		if f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Uint8 {
			return false
		}
		raw = f.Bytes()
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}

	return json.Valid(raw)
}

// FieldError is one invalid field with human friendly message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s %s", f.Field, f.Message)
}

// FieldErrors convert validator.ValidationErrors into list of FieldError.
// Any other error type returns nil.
func FieldErrors(err error) []FieldError {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return nil
	}

	out := make([]FieldError, 0, len(valErrs))
	for _, fe := range valErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}

	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "should not be empty"
	case "email":
		return "is not email format"
	case "url":
		return "is not url format"
	case "jsonobject":
		return "is not a json format"
	case "bundleid":
		return "bad format."
	case "uuid", "uuid4":
		return "is not uuid format"
	case "oneof":
		return fmt.Sprintf("must be in [%s]", strings.Join(strings.Fields(fe.Param()), ","))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must equal or greater than %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must equal or less than %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	}

	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}

// Errors is list of FieldError which is also an error.
type Errors []FieldError

func (e Errors) Error() string {
	msg := make([]string, 0, len(e))
	for _, fe := range e {
		msg = append(msg, fe.Error())
	}

	return strings.Join(msg, "; ")
}

// Fields collects field errors from err, whether it is Errors, FieldError or validator.ValidationErrors.
func Fields(err error) []FieldError {
	if err == nil {
		return nil
	}

	var list Errors
	if errors.As(err, &list) {
		return list
	}

	var single FieldError
	if errors.As(err, &single) {
		return []FieldError{single}
	}

	return FieldErrors(err)
}
