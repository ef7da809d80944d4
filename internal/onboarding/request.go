package onboarding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateAccountRequest is the only accepted shape for account creation:
// a flat JSON object with exactly these fields.
type CreateAccountRequest struct {
	RowID         string `json:"employee_row_id" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Name          string `json:"name,omitempty"`
	EmployerEmail string `json:"employer_email,omitempty"`
	Type          string `json:"type,omitempty"`
	BusinessType  string `json:"business_type,omitempty"`
}

// DecodeCreateAccountRequest strictly decodes r. Anything that is not a
// single JSON object of the declared fields is ErrMalformedBody.
func DecodeCreateAccountRequest(r io.Reader) (CreateAccountRequest, error) {
	var req CreateAccountRequest

	data, err := io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return req, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return req, fmt.Errorf("%w: trailing data after object", ErrMalformedBody)
	}

	return req, nil
}

// Validate reports ErrMissingField naming the first absent required field.
func (r CreateAccountRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, verrs[0].Field())
	}
	return fmt.Errorf("%w: %v", ErrMissingField, err)
}
