package message

import (
	"errors"
	"fmt"
)

var (
	// ErrMessageNotFound indica que a mensagem original não está no diário
	ErrMessageNotFound = errors.New("message not found")

	// ErrMediaFetchFailed indica que a mídia não pôde ser obtida ou não é suportada
	ErrMediaFetchFailed = errors.New("media fetch failed")

	// ErrSendFailed indica falha no envio pela conexão
	ErrSendFailed = errors.New("send failed")
)

// ValidationError representa um erro de validação da requisição
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError cria um novo erro de validação
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError verifica se err é um erro de validação
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
