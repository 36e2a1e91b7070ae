package handlers

import (
	"net/http"

	"wabridge/internal/http/responses"
)

// HealthHandler implementa o handler para health check
type HealthHandler struct{}

// NewHealthHandler cria uma nova instância do health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health verifica a saúde da aplicação; não depende do estado da sessão
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} responses.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	responses.Success(w, "Service is healthy", map[string]interface{}{
		"status":  "ok",
		"service": "wabridge",
	})
}
