package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"shop_return_desk/models"
	"shop_return_desk/records"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func v() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Schema checks and normalizes raw field values for one record type. Rules
// are the validate tags of an input struct; messages use its label tags.
type Schema[T any] struct {
	coll     models.Collection
	defaults func(today models.Date) map[string]any
	parse    func(values map[string]any) (*T, error)
}

func (s *Schema[T]) Collection() models.Collection { return s.coll }

// Defaults are the values of a blank create form.
func (s *Schema[T]) Defaults(today models.Date) map[string]any {
	return s.defaults(today)
}

// Parse returns the normalized record or the first failing rule as a
// *records.ValidationError. Unknown keys are ignored.
func (s *Schema[T]) Parse(values map[string]any) (*T, error) {
	return s.parse(values)
}

func newSchema[T any, In any](
	coll models.Collection,
	defaults func(models.Date) map[string]any,
	build func(in *In) *T,
) *Schema[T] {
	labels := labelsOf(reflect.TypeFor[In]())
	return &Schema[T]{
		coll:     coll,
		defaults: defaults,
		parse: func(values map[string]any) (*T, error) {
			var in In
			if err := decode(values, &in, labels); err != nil {
				return nil, err
			}
			trimStrings(&in)
			if err := v().Struct(&in); err != nil {
				return nil, firstFailure(err, labels)
			}
			return build(&in), nil
		},
	}
}

type fieldLabels map[string]string

// labelsOf maps json names to the human label of each field.
func labelsOf(t reflect.Type) fieldLabels {
	out := make(fieldLabels, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		out[name] = f.Tag.Get("label")
	}
	return out
}

func decode(values map[string]any, dst any, labels fieldLabels) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return &records.ValidationError{Message: "Invalid form data"}
	}
	err = json.Unmarshal(raw, dst)
	if err == nil {
		return nil
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		label := labels[field]
		switch {
		case field == models.ColumnReturnDate:
			return &records.ValidationError{Field: field, Message: label + " must be a valid date (YYYY-MM-DD)"}
		case te.Type.Kind() == reflect.Bool || (te.Type.Kind() == reflect.Pointer && te.Type.Elem().Kind() == reflect.Bool):
			return &records.ValidationError{Field: field, Message: label + " must be a boolean"}
		default:
			return &records.ValidationError{Field: field, Message: label + " must be text"}
		}
	}
	return &records.ValidationError{Message: "Invalid form data"}
}

func trimStrings(ptr any) {
	rv := reflect.ValueOf(ptr).Elem()
	for i := 0; i < rv.NumField(); i++ {
		if f := rv.Field(i); f.Kind() == reflect.String {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func firstFailure(err error, labels fieldLabels) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return &records.ValidationError{Message: err.Error()}
	}
	fe := ves[0]
	field := fe.Field()
	label := labels[field]

	var msg string
	switch fe.Tag() {
	case "required":
		msg = label + " is required"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "datetime":
		msg = label + " must be a valid date (YYYY-MM-DD)"
	default:
		msg = fmt.Sprintf("%s is invalid", label)
	}
	return &records.ValidationError{Field: field, Message: msg}
}
