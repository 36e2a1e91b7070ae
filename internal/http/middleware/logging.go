package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wabridge/pkg/logger"
)

// HTTPRecorder recebe as métricas de cada request
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// slowRequestThreshold: envios com simulação de digitação levam alguns segundos
const slowRequestThreshold = 8 * time.Second

// NewLoggingMiddleware loga cada request via logger.HTTPLogger e coloca no
// contexto um logger com o request_id para os handlers.
func NewLoggingMiddleware(log logger.Logger, recorder HTTPRecorder) func(http.Handler) http.Handler {
	httpLog := logger.NewHTTPLogger(log, slowRequestThreshold)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := logger.WithContext(r.Context(), log.WithField("request_id", requestID))

			defer func() {
				duration := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				if recorder != nil {
					recorder.ObserveHTTP(r.Method, routePattern(r), status, duration)
				}
				httpLog.LogRequest(r.Method, r.URL.Path, requestID, status, duration)
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// routePattern evita cardinalidade alta nas métricas
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
