package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator validates structs
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a struct against its `validate` tags
func (v *Validator) Validate(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate expects a struct")
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("validate")

		if tag == "" {
			continue
		}

		if err := v.validateField(field, tag); err != nil {
			return fmt.Errorf("%s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// validateField validates a single field
func (v *Validator) validateField(field reflect.Value, tag string) error {
	rules := strings.Split(tag, ",")

	for _, rule := range rules {
		parts := strings.SplitN(rule, "=", 2)
		ruleName := parts[0]

		switch ruleName {
		case "required":
			if field.IsZero() {
				return fmt.Errorf("field is required")
			}

		case "min":
			if len(parts) < 2 {
				continue
			}
			bound, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				continue
			}
			switch field.Kind() {
			case reflect.String:
				if float64(len(field.String())) < bound {
					return fmt.Errorf("minimum length is %s", parts[1])
				}
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				if float64(field.Int()) < bound {
					return fmt.Errorf("minimum value is %s", parts[1])
				}
			case reflect.Float32, reflect.Float64:
				if field.Float() < bound {
					return fmt.Errorf("minimum value is %s", parts[1])
				}
			}

		case "max":
			if len(parts) < 2 {
				continue
			}
			bound, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				continue
			}
			switch field.Kind() {
			case reflect.String:
				if float64(len(field.String())) > bound {
					return fmt.Errorf("maximum length is %s", parts[1])
				}
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				if float64(field.Int()) > bound {
					return fmt.Errorf("maximum value is %s", parts[1])
				}
			case reflect.Float32, reflect.Float64:
				if field.Float() > bound {
					return fmt.Errorf("maximum value is %s", parts[1])
				}
			}

		case "oneof":
			if len(parts) < 2 || field.Kind() != reflect.String {
				continue
			}
			allowed := strings.Fields(parts[1])
			matched := false
			for _, candidate := range allowed {
				if field.String() == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
			}
		}
	}

	return nil
}
