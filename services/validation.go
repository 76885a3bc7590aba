package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// messages overrides the generic text for specific field/tag pairs.
var messages = map[string]string{
	"email.email":           "Email should be valid",
	"name.min":              "Name must be between 2 and 100 characters",
	"name.max":              "Name must be between 2 and 100 characters",
	"password.min":          "Password must be at least 6 characters",
	"role.oneof":            "Role must be one of ADMIN, DOCTOR, PATIENT",
	"age.min":               "Age must be non-negative",
	"age.max":               "Age must be realistic",
	"patientId.required":    "Patient ID is required",
	"doctorId.required":     "Doctor ID is required",
	"medicineList.required": "Medicine list is required",
	"record.required":       "Medical record is required",
	"date.required":         "Appointment date is required",
}

// Validate checks the struct's validate tags and reports violations as a
// KindValidation error keyed by json field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return ValidationFailed(fields)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	label := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " should be valid"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, fe.Param())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	}
	return label + " is invalid"
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
