// Package validate holds the process-wide struct validator used for input
// documents (access list, rules file). Messages name fields by their yaml
// tag so they match what the operator wrote
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Init builds the singleton with english translations and custom tags
func Init() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(tagName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")

		_ = v.RegisterValidation("barehost", bareHost)
		registerShort(v, trans, "barehost", "{0} must be a bare host name like github.com")

		_ = v.RegisterValidation("ownerpath", ownerPath)
		registerShort(v, trans, "ownerpath", "{0} must look like host/owner")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Get returns the singleton, initializing on first use
func Get() *Svc { return Init() }

// Struct validates s and maps the first failure to a validation error carrying the field
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	field, msg := fieldAndMessage(err)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		logger.Named("validate").Error().Err(err).Msg("validator internal error")
		return perr.Wrap(err, perr.ErrorCodeUnknown, "validation error")
	}
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// fieldAndMessage returns the first failing field namespace and its translated message
func fieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		return ns, ns + ": " + fe.Translate(Get().Translator)
	}
	return "", err.Error()
}

// tagName prefers yaml, then mapstructure, then json names
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"yaml", "mapstructure", "json"} {
		tag := fld.Tag.Get(key)
		if tag == "-" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag
		}
	}
	return fld.Name
}

func bareHost(fl FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.ContainsAny(s, "/:@ ") {
		return false
	}
	return strings.Contains(s, ".")
}

func ownerPath(fl FieldLevel) bool {
	s := strings.Trim(fl.Field().String(), "/")
	host, owner, ok := strings.Cut(s, "/")
	return ok && host != "" && owner != "" && !strings.ContainsAny(s, " :@")
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
