package middleware

import (
	"net/http"
	"runtime/debug"

	"wabridge/internal/http/responses"
	"wabridge/pkg/logger"
)

// NewRecoveryMiddleware cria um middleware de recovery para panic
func NewRecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.WithFields(map[string]interface{}{
						"panic":       err,
						"stack":       string(debug.Stack()),
						"method":      r.Method,
						"url":         r.URL.String(),
						"remote_addr": r.RemoteAddr,
					}).Error().Msg("Panic recovered")

					responses.InternalError(w, "Um erro inesperado ocorreu")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
