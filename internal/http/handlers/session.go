package handlers

import (
	"net/http"

	"wabridge/internal/http/responses"
	sessionUseCases "wabridge/internal/usecases/session"
	"wabridge/pkg/logger"
)

// SessionHandler implementa os handlers da sessão WhatsApp
type SessionHandler struct {
	getStatusUseCase *sessionUseCases.GetStatusUseCase
	getQRCodeUseCase *sessionUseCases.GetQRCodeUseCase
	logoutUseCase    *sessionUseCases.LogoutUseCase
	events           http.Handler
	logger           logger.Logger
}

// NewSessionHandler cria uma nova instância do session handler. events
// atende o stream de mudanças do ciclo de vida (websocket).
func NewSessionHandler(
	getStatusUseCase *sessionUseCases.GetStatusUseCase,
	getQRCodeUseCase *sessionUseCases.GetQRCodeUseCase,
	logoutUseCase *sessionUseCases.LogoutUseCase,
	events http.Handler,
	log logger.Logger,
) *SessionHandler {
	return &SessionHandler{
		getStatusUseCase: getStatusUseCase,
		getQRCodeUseCase: getQRCodeUseCase,
		logoutUseCase:    logoutUseCase,
		events:           events,
		logger:           log,
	}
}

// GetStatus retorna o estado da sessão; sempre 200
// @Summary Status da sessão
// @Tags Sessão
// @Produce json
// @Success 200 {object} responses.APIResponse
// @Router /status [get]
// @Security ApiKeyAuth
func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	responses.Success(w, "Status da sessão", h.getStatusUseCase.Execute(r.Context()))
}

// GetQRCode retorna o QR code pendente
// @Summary QR code de pareamento
// @Description Retorna o QR code atual como texto e imagem PNG em data URL
// @Tags Sessão
// @Produce json
// @Success 200 {object} responses.APIResponse
// @Failure 404 {object} responses.APIResponse "Nenhum QR code disponível"
// @Router /session/qr [get]
// @Security ApiKeyAuth
func (h *SessionHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	response, err := h.getQRCodeUseCase.Execute(r.Context())
	if err != nil {
		responses.Error(w, err, responses.ScopeLookup)
		return
	}

	responses.Success(w, "QR code disponível", response)
}

// Logout desconecta e remove o pareamento atual
// @Summary Encerrar sessão
// @Tags Sessão
// @Produce json
// @Success 200 {object} responses.APIResponse
// @Failure 500 {object} responses.APIResponse
// @Router /session/logout [post]
// @Security ApiKeyAuth
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	response, err := h.logoutUseCase.Execute(r.Context())
	if err != nil {
		logger.LogError(requestLogger(r, h.logger, "session-handler"), err, "logout", nil)
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Sessão encerrada com sucesso", response)
}

// Events abre o stream websocket de mudanças do ciclo de vida
// @Summary Stream de eventos da sessão
// @Description Websocket: envia um snapshot e depois cada transição do ciclo de vida
// @Tags Sessão
// @Success 101 "Switching Protocols"
// @Router /session/events [get]
// @Security ApiKeyAuth
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		responses.NotFound(w, "Stream de eventos desabilitado")
		return
	}
	h.events.ServeHTTP(w, r)
}
