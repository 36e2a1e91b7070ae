package session

import (
	"errors"
	"fmt"
)

// Erros de domínio do ciclo de vida da sessão
var (
	// ErrNotReady indica que a sessão não está autenticada e pronta
	ErrNotReady = errors.New("session not ready")

	// ErrAuthExhausted indica que o limite de tentativas de autenticação foi excedido
	ErrAuthExhausted = errors.New("authentication attempts exhausted")

	// ErrQRCodeNotAvailable indica que não há QR pendente
	ErrQRCodeNotAvailable = errors.New("QR code not available")

	// ErrNotConnected indica que não há cliente conectado
	ErrNotConnected = errors.New("session not connected")
)

// LifecycleError é um erro do ciclo de vida com a operação que falhou
type LifecycleError struct {
	Op  string
	Err error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// NewLifecycleError cria um novo erro de ciclo de vida
func NewLifecycleError(op string, err error) *LifecycleError {
	return &LifecycleError{Op: op, Err: err}
}
