// Package inputval validates form and API input.
//
// Struct validation is driven by go-playground/validator tags. Field labels
// come from the `label` tag and a field can carry a fixed user-facing message
// in its `msg` tag, which replaces the generated one for any rule failure.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the field errors of one validation pass.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first error message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns a *ValidationError when the result has errors, nil otherwise.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationError{Fields: append([]FieldError(nil), r.Errors...)}
}

// ValidationError is returned when user input breaks a form rule.
// Nothing is sent to the community API when it occurs.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for the named field, or "".
func (e *ValidationError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		mustRegister(v, "userstatus", func(fl validator.FieldLevel) bool {
			return models.UserStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "modstatus", func(fl validator.FieldLevel) bool {
			return models.ModerationStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "palette", func(fl validator.FieldLevel) bool {
			return models.InPalette(fl.Field().String())
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
	}
}

// Validate checks s against its `validate` tags.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		label, custom := fieldMeta(t, fe.StructField())
		msg := custom
		if msg == "" {
			msg = message(label, fe)
		}
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: msg})
	}
	return res
}

func fieldMeta(t reflect.Type, name string) (label, msg string) {
	label = name
	if t.Kind() != reflect.Struct {
		return label, ""
	}
	f, ok := t.FieldByName(name)
	if !ok {
		return label, ""
	}
	if l := f.Tag.Get("label"); l != "" {
		label = l
	}
	return label, f.Tag.Get("msg")
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return label + " est obligatoire."
	case "min":
		return fmt.Sprintf("%s doit contenir au moins %s caractères.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s doit contenir au plus %s caractères.", label, fe.Param())
	case "email":
		return "Adresse email invalide"
	case "role":
		return label + " n'est pas un rôle valide."
	case "userstatus", "modstatus", "oneof":
		return label + " n'est pas un statut valide."
	case "palette":
		return label + " doit être une couleur de la palette."
	default:
		return label + " est invalide."
	}
}
