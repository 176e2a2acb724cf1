package validation

import (
	"math"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/voicemap/errors"
)

// FieldError is one entry of the "fields" detail on an INVALID_INPUT error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	instance *validator.Validate
	initOnce sync.Once
)

func engine() *validator.Validate {
	initOnce.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(wireName)
		_ = instance.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
				return true
			}
			return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
		})
	})
	return instance
}

// wireName reports fields by the name clients send: json tag, then form tag,
// then snake_case.
func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(f.Name)
}

// Validate checks s against its `validate` tags, e.g.
// `validate:"required,gte=0,finite"`. Failures come back as one
// INVALID_INPUT AppError listing every field.
func Validate(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, len(verrs))
	parts := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = FieldError{Field: e.Field(), Message: describe(e)}
		parts[i] = fields[i].Field + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

func describe(e validator.FieldError) string {
	unit := " characters"
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		unit = ""
	}
	switch e.Tag() {
	case "required":
		return "is required"
	case "finite":
		return "must be a finite number"
	case "min", "gte":
		return "must be at least " + e.Param() + unit
	case "max", "lte":
		return "must be at most " + e.Param() + unit
	case "gt":
		return "must be greater than " + e.Param()
	case "gtfield":
		return "must be greater than " + toSnakeCase(e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	}
	return "is invalid"
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
