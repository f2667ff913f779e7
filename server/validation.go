package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/leebenson/conform"
	errs "github.com/techagentng/photohire/errors"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// decode binds the request body into v, trims its string fields and validates
// it.
func decode(c *gin.Context, v interface{}) error {
	if err := c.ShouldBind(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.ErrAttachmentTooLarge
		}
		return errs.Wrap(errs.New("invalid request body", http.StatusBadRequest), err)
	}
	if err := validateWhiteSpaces(v); err != nil {
		return errs.Wrap(errs.ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return errs.New(strings.Join(translateError(err), "; "), http.StatusBadRequest)
	}
	return nil
}

func validateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func translateError(err error) []string {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		out = append(out, e.Translate(trans))
	}
	return out
}
