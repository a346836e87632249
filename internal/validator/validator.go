package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Custom binding tags registered by Setup.
const (
	// TagTrimmedEmail validates an email address after trimming surrounding whitespace.
	TagTrimmedEmail = "trimmed_email"
	// TagBcryptMax limits a password to what bcrypt can hash.
	TagBcryptMax = "bcrypt_max"
)

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		// Emails are normalized by the service, so surrounding whitespace is accepted here.
		_ = v.RegisterValidation(TagTrimmedEmail, func(fl govalidator.FieldLevel) bool {
			return v.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
		})
		registerTranslation(v, TagTrimmedEmail, "{0} must be a valid email address")

		_ = v.RegisterValidation(TagBcryptMax, func(fl govalidator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		})
		registerTranslation(v, TagBcryptMax, "{0} must be at most 72 bytes")
	}
}

func registerTranslation(v *govalidator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["body"] = "invalid JSON payload"
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQueryOrJSON binds from the query string when it carries any parameters,
// otherwise from the JSON body.
func BindQueryOrJSON(c *gin.Context, dst interface{}) map[string]string {
	if len(c.Request.URL.Query()) > 0 {
		if err := c.ShouldBindQuery(dst); err != nil {
			return TranslateErrors(err)
		}
		return nil
	}
	return Bind(c, dst)
}
