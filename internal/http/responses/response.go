package responses

import (
	"encoding/json"
	"net/http"
)

// Códigos de erro retornados em error.code
const (
	CodeNotReady                = "NOT_READY"
	CodeConversationUnavailable = "CONVERSATION_UNAVAILABLE"
	CodeMediaFetchFailed        = "MEDIA_FETCH_FAILED"
	CodeMessageNotFound         = "MESSAGE_NOT_FOUND"
	CodeQRCodeNotAvailable      = "QR_CODE_NOT_AVAILABLE"
	CodeValidation              = "VALIDATION_ERROR"
	CodeSendFailed              = "SEND_FAILED"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeBadRequest              = "BAD_REQUEST"
	CodeNotFound                = "NOT_FOUND"
	CodeRateLimit               = "RATE_LIMIT_EXCEEDED"
	CodeInternal                = "INTERNAL_ERROR"
)

// APIResponse representa a estrutura padronizada de resposta da API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError representa detalhes de erro na resposta
type APIError struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// WriteJSON escreve uma resposta JSON padronizada
func WriteJSON(w http.ResponseWriter, statusCode int, success bool, message string, data interface{}, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: success,
		Message: message,
		Data:    data,
		Error:   err,
	}

	json.NewEncoder(w).Encode(response)
}

// Success escreve uma resposta de sucesso
func Success(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusOK, true, message, data, nil)
}

// Fail escreve uma resposta de erro com código e detalhes
func Fail(w http.ResponseWriter, status int, message, code, details string) {
	WriteJSON(w, status, false, message, nil, &APIError{
		Code:    code,
		Details: details,
	})
}

// BadRequest escreve uma resposta de erro de requisição inválida
func BadRequest(w http.ResponseWriter, message string, details string) {
	Fail(w, http.StatusBadRequest, message, CodeBadRequest, details)
}

// Unauthorized escreve uma resposta de credencial ausente ou inválida
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, message, CodeUnauthorized, "")
}

// NotFound escreve uma resposta de recurso não encontrado
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message, CodeNotFound, "")
}

// InternalError escreve uma resposta de erro interno
func InternalError(w http.ResponseWriter, message string) {
	Fail(w, http.StatusInternalServerError, message, CodeInternal, "")
}

// TooManyRequests escreve uma resposta de rate limit excedido
func TooManyRequests(w http.ResponseWriter, message string) {
	Fail(w, http.StatusTooManyRequests, message, CodeRateLimit, "")
}
