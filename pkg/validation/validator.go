package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern only checks the local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validator validates request structs tagged with `binding:"..."`, the same
// tags gin uses, and turns failures into field messages.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the storefront rules registered. Extra
// registrations (struct-level rules from the dto package) run last.
func New(registrations ...func(*validator.Validate)) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	Register(v)
	for _, register := range registrations {
		register(v)
	}
	return &Validator{validate: v}
}

// Register adds the custom tags to v. It is also applied to gin's engine so
// ShouldBind* honors them.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailpattern", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Engine exposes the underlying validator.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct validates s and returns field messages keyed by JSON name. A nil
// map means s is valid. Errors that are not field failures are returned as
// err.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	return Messages(err)
}

// Messages converts validator errors into field messages. Only the first
// failure per field is kept.
func Messages(err error) (map[string]string, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = Message(e.StructField(), e.Tag())
	}
	return out, nil
}

// Message picks the custom message for field and tag, falling back to the
// default one.
func Message(field, tag string) string {
	if fieldMessages := CustomMessage(field); fieldMessages != nil {
		if msg, exists := fieldMessages[tag]; exists {
			return msg
		}
	}
	return DefaultMessage(field, tag)
}
