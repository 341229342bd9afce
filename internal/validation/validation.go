// Package validation wires go-playground/validator for user input checked
// before any request leaves the client.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"lms-client/internal/model"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// custom validation tags
const (
	NotBlankTag = "notblank"
	PhoneTag    = "phone"
	PostcodeTag = "postcode"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{8,18}[0-9]$`)
	postcodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{1,8}[A-Za-z0-9]$`)
)

// Messages maps "<jsonField>.<tag>" to the text shown to the user.
// Failures without an entry fall back to the default english translation.
type Messages map[string]string

// Validator validates structs and renders failures as *model.ValidationError.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	messages   Messages
}

// New creates a Validator with the custom tags registered.
func New(messages Messages) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(NotBlankTag, notBlank)
	_ = validate.RegisterValidation(PhoneTag, matches(phoneRegex))
	_ = validate.RegisterValidation(PostcodeTag, matches(postcodeRegex))

	return &Validator{
		validate:   validate,
		translator: translator,
		messages:   messages,
	}
}

// RegisterStructValidation adds a struct-level rule for the given types.
func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	v.validate.RegisterStructValidation(fn, types...)
}

// Struct validates s. It returns nil or a *model.ValidationError whose fields
// are in declaration order.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]model.FieldError, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		// one message per field, the first failing tag wins
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: v.message(fe),
		})
	}
	return model.NewValidationError(fields...)
}

func (v *Validator) message(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg := fe.Translate(v.translator); msg != "" && msg != fe.Error() {
		return msg
	}
	return fe.Field() + " is invalid"
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(strings.TrimSpace(str))
	}
}
