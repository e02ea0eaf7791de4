package validators

import (
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
)

// DecodeForm parses an application/x-www-form-urlencoded body into dest using
// `form` struct tags, then runs validation. The login endpoint takes form
// credentials rather than JSON.
func DecodeForm(r *http.Request, dest any) error {
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body").WithDetails(map[string]any{"error": err.Error()})
	}

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, "form destination must be a struct pointer")
	}

	elem := v.Elem()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		target := elem.Field(i)
		if !target.CanSet() || target.Kind() != reflect.String {
			continue
		}
		target.SetString(r.PostFormValue(name))
	}

	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}
