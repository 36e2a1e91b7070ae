package middleware

import (
	"net/http"
	"strings"

	"wabridge/internal/http/responses"
	"wabridge/pkg/logger"
)

// APIKeyHeader é o header com a chave da API
const APIKeyHeader = "X-API-Key"

// SecretComparer compara segredos em tempo constante
type SecretComparer interface {
	SecretsEqual(given, expected string) bool
}

// NewAPIKeyAuth exige a chave da API em X-API-Key ou Authorization: Bearer.
// Requests sem chave ou com chave diferente recebem 401.
func NewAPIKeyAuth(apiKey string, comparer SecretComparer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := extractAPIKey(r)
			if given == "" || !comparer.SecretsEqual(given, apiKey) {
				log.WithFields(map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"has_key":     given != "",
				}).Warn().Msg("Rejected request with invalid API key")

				responses.Unauthorized(w, "Chave de API ausente ou inválida")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	// navegadores não enviam headers no handshake do websocket
	return r.URL.Query().Get("api_key")
}
