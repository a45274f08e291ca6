// Package resource describes the document collections exposed over HTTP.
//
// A Definition is pure configuration: the collection it lives in, the fields
// a payload must define, extra per-field rules and the fixed messages the API
// answers with. The generic service and handler layers are parameterised by
// it, so adding a collection means adding a Definition to the registry.
package resource

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/deppfellow/rentals-api/internal/errs"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Gender selects the article agreement of the Spanish messages.
type Gender int

const (
	Masculine Gender = iota
	Feminine
)

// Field is a required payload field.
type Field struct {
	Name string

	// AllowEmpty accepts "" as a defined value. The key must still be present
	// and non-null.
	AllowEmpty bool
}

// Rule is an extra check on a field, expressed as a validator tag applied to
// the field's value (e.g. "gte=1,lte=5").
type Rule struct {
	Field   string
	Tag     string
	Numeric bool
	Message string
}

// FieldDefault computes a field value at creation time when the payload
// omits it.
type FieldDefault struct {
	Field string
	Value func(now time.Time) interface{}
}

// Definition is the configuration of one resource.
type Definition struct {
	// Name is the singular noun used in messages and error codes ("usuario").
	Name   string
	Gender Gender

	// Path is both the route segment and the store collection ("usuarios").
	Path string

	Required []Field
	Rules    []Rule
	Defaults []FieldDefault

	// Example is a valid payload, used by the generated API document.
	Example store.Fields
}

// Collection is the store collection backing the resource.
func (d *Definition) Collection() string {
	return d.Path
}

func (d *Definition) label() string {
	return strings.ToUpper(d.Name[:1]) + d.Name[1:]
}

func (d *Definition) suffix() string {
	if d.Gender == Feminine {
		return "a"
	}
	return "o"
}

// NotFoundMessage is answered with 404 on every operation.
func (d *Definition) NotFoundMessage() string {
	return fmt.Sprintf("%s no encontrad%s", d.label(), d.suffix())
}

// NotFoundCode is the machine readable 404 code, e.g. "USUARIO_NOT_FOUND".
func (d *Definition) NotFoundCode() string {
	return errs.MakeUpperCaseWithUnderscores(foldAccents(d.Name)) + "_NOT_FOUND"
}

func (d *Definition) UpdatedMessage() string {
	return fmt.Sprintf("%s actualizad%s correctamente", d.label(), d.suffix())
}

func (d *Definition) DeletedMessage() string {
	return fmt.Sprintf("%s eliminad%s correctamente", d.label(), d.suffix())
}

// MissingFieldsMessage names every required field, not only the missing ones.
func (d *Definition) MissingFieldsMessage() string {
	return "Faltan campos obligatorios: " + strings.Join(d.RequiredNames(), ", ")
}

func (d *Definition) RequiredNames() []string {
	names := make([]string, len(d.Required))
	for i, f := range d.Required {
		names[i] = f.Name
	}
	return names
}

const (
	codeMissingFields = "MISSING_REQUIRED_FIELDS"
	codeInvalidField  = "INVALID_FIELD"

	msgRequired = "es obligatorio"
	msgNumber   = "debe ser un número"
)

var validate = validator.New()

// Validate runs the required-field and rule checks shared by create and
// update. It returns a 400 *errs.HTTPError listing every failing field.
func (d *Definition) Validate(payload store.Fields) error {
	var missing []errs.FieldError
	for _, f := range d.Required {
		if !defined(payload, f) {
			missing = append(missing, errs.FieldError{Field: f.Name, Error: msgRequired})
		}
	}

	if len(missing) > 0 {
		code := codeMissingFields
		return errs.NewBadRequestError(d.MissingFieldsMessage(), true, &code, missing, nil)
	}

	var invalid []errs.FieldError
	var message string
	for _, r := range d.Rules {
		value, ok := payload[r.Field]
		if !ok || value == nil {
			continue
		}

		if r.Numeric {
			if !isNumber(value) {
				invalid = append(invalid, errs.FieldError{Field: r.Field, Error: msgNumber})
				message = r.Message
				continue
			}
		}

		if err := validate.Var(value, r.Tag); err != nil {
			invalid = append(invalid, errs.FieldError{Field: r.Field, Error: r.Message})
			message = r.Message
		}
	}

	if len(invalid) > 0 {
		code := codeInvalidField
		return errs.NewBadRequestError(message, true, &code, invalid, nil)
	}

	return nil
}

// ApplyDefaults fills the creation defaults the payload leaves undefined.
func (d *Definition) ApplyDefaults(payload store.Fields, now time.Time) {
	for _, def := range d.Defaults {
		if v, ok := payload[def.Field]; ok && v != nil {
			continue
		}
		payload[def.Field] = def.Value(now)
	}
}

// defined reports whether the payload holds a value for f. Absent keys, JSON
// null and the empty string (unless allowed) are undefined; 0 and false are
// values like any other.
func defined(payload store.Fields, f Field) bool {
	v, ok := payload[f.Name]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return f.AllowEmpty
	}
	return true
}

// foldAccents strips combining marks: "reseña" -> "resena".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// isNumber reports whether v is a decoded JSON number.
func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, int64, int:
		return true
	default:
		return false
	}
}
