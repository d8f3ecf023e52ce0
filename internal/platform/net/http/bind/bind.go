// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	perr "datemerge/internal/platform/errors"
	"datemerge/internal/platform/logger"
)

// maxBody caps a request body
const maxBody = 1 << 20

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

func get() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		valid = validator.New(validator.WithRequiredStructEnabled())
		// messages and field paths use json names
		valid.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(valid, trans)
		translate(valid, "min", "{0} must be at least {1}")
		translate(valid, "max", "{0} must be at most {1}")
	})
	return valid, trans
}

// translate overrides the message of tag, {0} is the field and {1} the tag param
func translate(v *validator.Validate, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(u ut.Translator) error { return u.Add(tag, message, true) },
		func(u ut.Translator, fe validator.FieldError) string {
			msg, _ := u.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// RegisterValidation registers a custom tag with the message shown when it fails
func RegisterValidation(tag, message string, fn validator.Func) error {
	v, _ := get()
	if err := v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	translate(v, tag, message)
	return nil
}

// ParseJSON decodes one JSON value into T and validates it
// unknown fields, trailing data and an empty body are JSON errors
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero T
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// validate reports the first failing field, named by its json path
func validate(x any) error {
	v, tr := get()
	err := v.Struct(x)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		logger.Get().Error().Err(err).Msg("validator internal error")
		return perr.JSONErrf("validation error")
	}
	fe := verrs[0]
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(tr)), fieldPath(fe))
}

// fieldPath drops the root type, MergeInput.values[1].value.grain is values[1].value.grain
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
