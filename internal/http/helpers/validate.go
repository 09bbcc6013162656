package helpers

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator devuelve la instancia compartida. Los mensajes usan el nombre
// JSON del campo.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("redirect_uri", func(fl validator.FieldLevel) bool {
			return validation.ValidRedirectURI(fl.Field().String())
		})
		_ = validate.RegisterValidation("scope_name", func(fl validator.FieldLevel) bool {
			return validation.ValidScopeName(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct valida v y traduce el primer error a ErrValidation.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errors.ErrValidation.WithDetail(fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.ErrValidation.WithCause(err)
}
