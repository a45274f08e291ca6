package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/rentals-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves, usually with validator tags and Struct.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a field failure that validator tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

const msgInvalidBody = "El cuerpo de la petición no es un JSON válido"

// BindAndValidate binds path params and the JSON body into payload (a
// pointer) and validates it. Failures come back as *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindError keeps echo's status for non-400 failures (415, 413, ...) and
// never leaks decoder internals for malformed bodies.
func bindError(err error) error {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code != http.StatusBadRequest {
		return echoErr
	}
	return errs.NewBadRequestError(msgInvalidBody, true, nil, nil, nil)
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "es obligatorio"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("debe tener al menos %s caracteres", err.Param())
			} else {
				msg = fmt.Sprintf("debe ser al menos %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("no debe superar %s caracteres", err.Param())
			} else {
				msg = fmt.Sprintf("no debe superar %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("debe ser uno de: %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
