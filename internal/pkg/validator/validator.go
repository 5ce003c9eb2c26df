package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Booking status validation
	validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{"confirmed", "pending", "cancelled", "completed", "no_show", ""}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})

	// Weekday validation (0 = Sunday .. 6 = Saturday)
	validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().Int()
		return day >= 0 && day <= 6
	})

	// Room category validation
	validate.RegisterValidation("room_category", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{"standard", "premium", "vip", "party", ""}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "booking_status":
			errors[field] = "Invalid status. Must be: confirmed, pending, cancelled, completed, or no_show"
		case "weekday":
			errors[field] = "Invalid weekday. Must be 0 (Sunday) through 6 (Saturday)"
		case "room_category":
			errors[field] = "Invalid category. Must be: standard, premium, vip, or party"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
