// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"math"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the field errors from Validate.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
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

// HasTag reports whether any failed rule used one of tags.
func (r *Result) HasTag(tags ...string) bool {
	if r == nil {
		return false
	}
	for _, e := range r.Errors {
		for _, t := range tags {
			if e.Tag == t {
				return true
			}
		}
	}
	return false
}

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return IsValidCategory(fl.Field().String())
		})
		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			_, ok := ParsePrice(fl.Field().String())
			return ok
		})
	})
	return v
}

// Validate runs the `validate` struct tags on s. Field names in messages
// come from the `label` tag.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "emailaddr", "email":
		return "A valid email address is required."
	case "category":
		return label + " must be one of " + strings.Join(models.ItemCategories, ", ") + "."
	case "price":
		return label + " must be a number greater than 0."
	case "eqfield":
		return label + " does not match."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether s is a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidCategory accepts "" or one of models.ItemCategories.
func IsValidCategory(s string) bool {
	if s == "" {
		return true
	}
	for _, c := range models.ItemCategories {
		if s == c {
			return true
		}
	}
	return false
}

// ParsePrice parses a form price. It must be a finite number greater than 0.
func ParsePrice(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return 0, false
	}
	return p, true
}
