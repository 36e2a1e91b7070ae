package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"wabridge/internal/domain/message"
)

// Validator valida requisições com as tags `validate` e converte o
// resultado em message.ValidationError
type Validator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do Validator
func NewValidator() *Validator {
	v := validator.New()
	// usa o nome JSON do campo nas mensagens de erro
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct valida a struct; retorna *message.ValidationError no primeiro campo inválido
func (v *Validator) Struct(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return message.NewValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	return message.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed on '%s'", fe.Tag())
}
