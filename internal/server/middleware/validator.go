package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

const (
	msgMissingFields      = "Missing required fields"
	msgInvalidEmailFormat = "Invalid email format"
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// missingFieldsMessager lets a request replace the generic missing fields message.
type missingFieldsMessager interface {
	MissingFieldsMessage() string
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	commonTags := []string{
		"json",
		"param",
		"query",
		"header",
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range commonTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	validate.RegisterValidation("urls", func(fl validator.FieldLevel) bool {
		slice, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, s := range slice {
			err := validate.Var(s, "url")
			if err != nil {
				return false
			}
		}
		return true
	})

	validate.RegisterValidation("email_format", func(fl validator.FieldLevel) bool {
		return emailFormat.MatchString(fl.Field().String())
	})

	v := &Validator{
		validate: validate,
	}

	return v
}

// Validate returns a 400 *models.Error whose message names the first class
// of failure: missing fields before malformed emails before anything else.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.WrapError(http.StatusBadRequest, err.Error(), err)
	}
	return models.WrapError(http.StatusBadRequest, validationMessage(i, fieldErrs), err)
}

func validationMessage(i interface{}, fieldErrs validator.ValidationErrors) string {
	var emailErr, otherErr validator.FieldError
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_if", "required_with", "required_without":
			if m, ok := i.(missingFieldsMessager); ok {
				return m.MissingFieldsMessage()
			}
			return msgMissingFields
		case "email", "email_format":
			if emailErr == nil {
				emailErr = fe
			}
		default:
			if otherErr == nil {
				otherErr = fe
			}
		}
	}
	if emailErr != nil {
		return msgInvalidEmailFormat
	}
	return "Invalid value for " + otherErr.Field()
}
