package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"wabridge/internal/app/config"
	"wabridge/internal/http/handlers"
	appMiddleware "wabridge/internal/http/middleware"
	"wabridge/internal/http/responses"
	"wabridge/internal/infra/metrics"
	"wabridge/pkg/logger"
)

// swaggerDocPath é relativo ao diretório de trabalho do processo
var swaggerDocPath = "docs/swagger.json"

// requestTimeout cobre a simulação de digitação mais longa com folga
const requestTimeout = 60 * time.Second

// Router representa o roteador principal da aplicação
type Router struct {
	*chi.Mux
	config          *config.Config
	logger          logger.Logger
	security        appMiddleware.SecretComparer
	metrics         *metrics.Metrics
	sessionHandler  *handlers.SessionHandler
	healthHandler   *handlers.HealthHandler
	messageHandler  *handlers.MessageHandler
	presenceHandler *handlers.PresenceHandler
}

// New cria uma nova instância do router. metrics pode ser nil quando as
// métricas estão desabilitadas.
func New(
	cfg *config.Config,
	log logger.Logger,
	security appMiddleware.SecretComparer,
	m *metrics.Metrics,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
	messageHandler *handlers.MessageHandler,
	presenceHandler *handlers.PresenceHandler,
) *Router {
	r := &Router{
		Mux:             chi.NewRouter(),
		config:          cfg,
		logger:          log.WithComponent("router"),
		security:        security,
		metrics:         m,
		sessionHandler:  sessionHandler,
		healthHandler:   healthHandler,
		messageHandler:  messageHandler,
		presenceHandler: presenceHandler,
	}

	r.setupMiddlewares(log)
	r.setupRoutes()

	return r
}

// setupMiddlewares configura os middlewares globais. log é o logger raiz, sem
// componente; o logging deriva dele o logger de cada request.
func (r *Router) setupMiddlewares(log logger.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	var recorder appMiddleware.HTTPRecorder
	if r.metrics != nil {
		recorder = r.metrics
	}

	r.Use(appMiddleware.NewRecoveryMiddleware(r.logger))
	r.Use(appMiddleware.NewCORS(r.config.CORS.AllowedOrigins))
	r.Use(appMiddleware.NewLoggingMiddleware(log, recorder))
	if r.config.RateLimit.Requests > 0 {
		r.Use(appMiddleware.NewRateLimit(r.config.RateLimit.Requests))
	}
}

// setupRoutes configura as rotas da aplicação
func (r *Router) setupRoutes() {
	// Documentação Swagger
	r.Get("/swagger/doc.json", r.swaggerDocHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rotas públicas
	r.Get("/health", r.healthHandler.Health)
	if r.metrics != nil {
		r.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	// Rotas autenticadas por chave de API
	r.Group(func(rt chi.Router) {
		rt.Use(appMiddleware.NewAPIKeyAuth(r.config.Auth.APIKey, r.security, r.logger))

		// websocket fica fora do timeout global
		rt.Get("/session/events", r.sessionHandler.Events)

		rt.Group(func(rt chi.Router) {
			rt.Use(middleware.Timeout(requestTimeout))

			rt.Get("/status", r.sessionHandler.GetStatus)

			rt.Route("/session", func(rt chi.Router) {
				rt.Get("/qr", r.sessionHandler.GetQRCode)
				rt.Post("/logout", r.sessionHandler.Logout)
			})

			rt.Route("/messages", func(rt chi.Router) {
				rt.Post("/text", r.messageHandler.SendText)
				rt.Post("/reply", r.messageHandler.SendReply)
				rt.Post("/reaction", r.messageHandler.SendReaction)
				rt.Post("/media", r.messageHandler.SendMedia)
				rt.Post("/location", r.messageHandler.SendLocation)
				rt.Post("/contact", r.messageHandler.SendContact)
			})

			rt.Post("/presence", r.presenceHandler.SetPresence)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.Fail(w, http.StatusNotFound, "Endpoint não encontrado", responses.CodeNotFound, "O endpoint solicitado não existe")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.Fail(w, http.StatusMethodNotAllowed, "Método não permitido", responses.CodeBadRequest, req.Method)
	})
}

// swaggerDocHandler serve o JSON do Swagger gerado em docs/
func (r *Router) swaggerDocHandler(w http.ResponseWriter, req *http.Request) {
	http.ServeFile(w, req, swaggerDocPath)
}
