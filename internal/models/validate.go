package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks a request struct against its validate tags and returns the
// first failure as an apperr validation error.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("request", err.Error())
	}

	first := verrs[0]
	switch first.Tag() {
	case "required":
		return apperr.Missing(first.Field())
	case "email":
		return apperr.Invalid(first.Field(), "must be a valid email address")
	case "oneof":
		return apperr.Invalid(first.Field(), fmt.Sprintf("must be one of [%s]", first.Param()))
	case "gt", "gte", "min":
		return apperr.Invalid(first.Field(), fmt.Sprintf("must be at least %s", first.Param()))
	case "lt", "lte", "max":
		return apperr.Invalid(first.Field(), fmt.Sprintf("must be at most %s", first.Param()))
	default:
		return apperr.Invalid(first.Field(), fmt.Sprintf("failed %q check", first.Tag()))
	}
}

// jsonValue encodes v for a JSON column
func jsonValue(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// scanJSON decodes a JSON column value into dest
func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
