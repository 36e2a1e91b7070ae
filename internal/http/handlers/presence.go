package handlers

import (
	"net/http"

	"wabridge/internal/domain/message"
	"wabridge/internal/http/responses"
	presenceUseCases "wabridge/internal/usecases/presence"
	"wabridge/pkg/logger"
)

// PresenceHandler implementa o handler de presença manual
type PresenceHandler struct {
	setPresenceUseCase *presenceUseCases.SetPresenceUseCase
	logger             logger.Logger
}

// NewPresenceHandler cria uma nova instância do presence handler
func NewPresenceHandler(setPresenceUseCase *presenceUseCases.SetPresenceUseCase, log logger.Logger) *PresenceHandler {
	return &PresenceHandler{
		setPresenceUseCase: setPresenceUseCase,
		logger:             log,
	}
}

// SetPresence define digitando/gravando em uma conversa, com auto-clear
// @Summary Definir presença
// @Description Mostra "digitando" ou "gravando" e limpa automaticamente após a duração
// @Tags Presença
// @Accept json
// @Produce json
// @Param request body message.SetPresenceRequest true "Conversa, tipo e duração"
// @Success 200 {object} responses.APIResponse
// @Failure 400 {object} responses.APIResponse "Conversa indisponível"
// @Failure 503 {object} responses.APIResponse "Sessão não está pronta"
// @Router /presence [post]
// @Security ApiKeyAuth
func (h *PresenceHandler) SetPresence(w http.ResponseWriter, r *http.Request) {
	var req message.SetPresenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		responses.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	response, err := h.setPresenceUseCase.Execute(r.Context(), req)
	if err != nil {
		logger.LogError(requestLogger(r, h.logger, "presence-handler"), err, "set_presence", map[string]interface{}{
			"conversation_id": req.ConversationID,
			"kind":            req.Kind,
		})
		responses.Error(w, err, responses.ScopeSend)
		return
	}

	responses.Success(w, "Presença definida com sucesso", response)
}
