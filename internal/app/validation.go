package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"madrid_barmap/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimals are validated through their canonical string form
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("terrace", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTerrace(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("tapa", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTapa(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.IsNegative() && d.LessThanOrEqual(domain.MaxPrice)
	})
	return v
}

var tagMessages = map[string]string{
	"required": "is required",
	"terrace":  "must be one of NONE, SMALL, LARGE",
	"tapa":     "must be one of NONE, REGULAR, GENEROUS",
	"price":    "must be between 0 and 999.99",
}

// check validates s and converts failures into a *domain.ValidationError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "failed " + fe.Tag()
			if fe.Param() != "" {
				msg += "=" + fe.Param()
			}
		}
		fields[fe.Field()] = msg
	}
	return &domain.ValidationError{Fields: fields}
}
