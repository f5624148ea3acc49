package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("partner_type", func(fl validator.FieldLevel) bool {
		return model.PartnerType(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct maps validator failures onto appErrors.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, appErrors.FieldError{Field: fe.Field(), Error: describe(fe)})
	}
	return appErrors.NewValidationError(fields...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "ce champ est obligatoire"
	case "email":
		return "adresse e-mail invalide"
	case "uuid":
		return "identifiant invalide"
	case "partner_type":
		return "type de partenaire inconnu"
	case "max":
		return "trop long (max " + fe.Param() + ")"
	case "url":
		return "URL invalide"
	}
	return "valeur invalide (" + fe.Tag() + ")"
}
