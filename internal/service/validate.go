package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports json field names instead of Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and turns the first failure into an apperr.FieldError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return apperr.Field(fe.Field(), "%s", describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gtefield":
		return "must not be before " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "gt", "min":
		return "must be at least " + fe.Param()
	}
	return "failed on " + fe.Tag()
}
