package responses

import (
	"context"
	"errors"
	"net/http"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
)

// ErrorScope ajusta o status de erros que dependem da operação
type ErrorScope int

const (
	// ScopeSend é usado pelos envios para uma conversa informada pelo cliente
	ScopeSend ErrorScope = iota
	// ScopeLookup é usado por resposta e reação, que localizam uma mensagem existente
	ScopeLookup
)

// Error converte um erro de domínio no status e código da API
func Error(w http.ResponseWriter, err error, scope ErrorScope) {
	var ve *message.ValidationError

	switch {
	case errors.As(err, &ve):
		Fail(w, http.StatusBadRequest, "Requisição inválida", CodeValidation, ve.Error())

	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrNotConnected):
		Fail(w, http.StatusServiceUnavailable, "Sessão não está pronta", CodeNotReady, err.Error())

	case errors.Is(err, message.ErrMessageNotFound):
		Fail(w, http.StatusNotFound, "Mensagem não encontrada", CodeMessageNotFound, err.Error())

	case errors.Is(err, session.ErrQRCodeNotAvailable):
		Fail(w, http.StatusNotFound, "Nenhum QR code pendente", CodeQRCodeNotAvailable, "")

	case errors.Is(err, whatsapp.ErrConversationUnavailable):
		status := http.StatusBadRequest
		if scope == ScopeLookup {
			status = http.StatusNotFound
		}
		Fail(w, status, "Conversa indisponível", CodeConversationUnavailable, err.Error())

	case errors.Is(err, message.ErrMediaFetchFailed), errors.Is(err, whatsapp.ErrUnsupportedMedia):
		Fail(w, http.StatusBadRequest, "Falha ao obter mídia", CodeMediaFetchFailed, err.Error())

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		Fail(w, http.StatusServiceUnavailable, "Requisição cancelada", CodeSendFailed, err.Error())

	case errors.Is(err, message.ErrSendFailed):
		Fail(w, http.StatusInternalServerError, "Falha no envio", CodeSendFailed, err.Error())

	default:
		Fail(w, http.StatusInternalServerError, "Erro interno do servidor", CodeInternal, err.Error())
	}
}
