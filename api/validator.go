package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warp/payroll-engine/generic"
)

// newValidator returns a validator that reports JSON field names and knows
// the "clock" tag (HH:MM, 24:00 allowed).
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("clock", validateClock)
	return v
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := generic.ParseClock(fl.Field().String())
	return err == nil
}

// decodeAndValidate reads a JSON body into dst and validates it. An empty
// body is allowed when allowEmpty is set (e.g. POST /session/start).
func (h *Handler) decodeAndValidate(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return &requestError{msg: "Invalid request body", err: err}
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		return &requestError{msg: "Validation failed", err: err, fields: validationFields(err)}
	}
	return nil
}

// requestError is a malformed or structurally invalid request body.
type requestError struct {
	msg    string
	err    error
	fields map[string]string
}

func (e *requestError) Error() string { return fmt.Sprintf("%s: %v", e.msg, e.err) }
func (e *requestError) Unwrap() error { return e.err }

func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = formatValidationError(e)
	}
	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required together with " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "clock":
		return "must be a time of day (HH:MM)"
	default:
		return "failed " + e.Tag() + " validation"
	}
}
