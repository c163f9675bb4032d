package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagName matches gin's binding tag so request structs validate the same
// way inside and outside handlers.
const TagName = "binding"

// FieldError is one failed rule, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required":  "is required",
	"gte":       "must not be negative",
	"oneof":     "has an unsupported value",
	"datetime":  "has an invalid format",
	"slotlabel": "must be a half-hour label such as 8:00 or 14:30",
	"email":     "must be a valid email",
}

// New returns a validator using TagName with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName(TagName)
	Register(v)
	return v
}

// Register installs the JSON field naming and the custom rules on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	if err := v.RegisterValidation("slotlabel", isSlotLabel); err != nil {
		panic(err)
	}
}

// isSlotLabel accepts H:00 or H:30 labels without a leading zero.
func isSlotLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	h, m, ok := strings.Cut(s, ":")
	if !ok || (m != "00" && m != "30") || h == "" || len(h) > 2 {
		return false
	}
	if len(h) == 2 && h[0] == '0' {
		return false
	}
	for _, r := range h {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Fields flattens validation errors for responses. Other errors yield nil.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", e.Tag())
		}
		out = append(out, FieldError{Field: fieldPath(e), Message: msg})
	}
	return out
}

// Summary renders validation errors as one line.
func Summary(err error) string {
	fields := Fields(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
