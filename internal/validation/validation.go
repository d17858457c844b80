// Package validation checks raw request fields and typed request shapes.
//
// Request shapes declare their rules with `validate` tags and the message a
// client sees with a `msg` tag. Fields are checked in declaration order and only
// the first failure is reported.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"devagram/internal/errs"
)

const invalidParams = "Parametros de entrada invalidos"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(v, "email_shape", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	mustRegister(v, "strong_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	mustRegister(v, "image_name", func(fl validator.FieldLevel) bool {
		return IsImageFilename(fl.Field().String())
	})
	// min_trim=N: at least N characters once surrounding spaces are removed
	mustRegister(v, "min_trim", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

// Check validates a request shape (pointer to struct) and returns an
// errs.InvalidInput carrying the msg tag of the first failing field.
func Check(shape any) error {
	err := validate.Struct(shape)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewInvalidInput(invalidParams)
	}

	return errs.NewInvalidInput(messageFor(shape, fieldErrs[0].StructField()))
}

func messageFor(shape any, field string) string {
	t := reflect.TypeOf(shape)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return invalidParams
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return invalidParams
	}
	if msg := f.Tag.Get("msg"); msg != "" {
		return msg
	}
	return invalidParams
}
