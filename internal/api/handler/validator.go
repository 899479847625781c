package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FieldError is one entry of a 400 "errors" array.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
	Value    any    `json:"value,omitempty"`
}

// ValidationErrors is returned by the validator and rendered as
// {"errors": [...]} with status 400.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Msg)
	}
	return strings.Join(msgs, "; ")
}

// messenger is implemented by request types that carry their own
// client-facing messages. Keys are "field.tag" or just "field".
type messenger interface {
	validationMessages() map[string]string
}

// redacted fields never echo their value back.
var redacted = map[string]bool{"password": true}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &echoValidator{v: v}
}

// maxBytes bounds the encoded length of a string. max counts runes, which is
// the wrong unit for values handed to bcrypt.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts full timestamps and plain calendar dates.
func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	var msgs map[string]string
	if m, ok := i.(messenger); ok {
		msgs = m.validationMessages()
	}

	out := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		entry := FieldError{
			Msg:      fieldMessage(fe, msgs),
			Param:    field,
			Location: "body",
		}
		if !redacted[field] {
			entry.Value = fe.Value()
		}
		out = append(out, entry)
	}
	return out
}

func fieldMessage(fe validator.FieldError, msgs map[string]string) string {
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := msgs[fe.Field()]; ok {
		return msg
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "isodate":
		return field + " must be a date"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// errInvalidPayload is the body-level failure for JSON that does not decode.
var errInvalidPayload = ValidationErrors{{Msg: "Invalid request payload"}}

// bindAndValidate decodes the body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	return c.Validate(req)
}
