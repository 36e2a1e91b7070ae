package logger

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// ============================================================================
// WHATSAPP ADAPTER
// ============================================================================

// WhatsAppLoggerAdapter adapta nosso Logger para o whatsmeow
type WhatsAppLoggerAdapter struct {
	logger Logger
}

// NewWhatsAppLoggerAdapter cria adaptador para whatsmeow
func NewWhatsAppLoggerAdapter(logger Logger) waLog.Logger {
	return &WhatsAppLoggerAdapter{logger: logger}
}

func (w *WhatsAppLoggerAdapter) Errorf(msg string, args ...any) {
	w.write(w.logger.Error(), msg, args)
}

func (w *WhatsAppLoggerAdapter) Warnf(msg string, args ...any) {
	w.write(w.logger.Warn(), msg, args)
}

func (w *WhatsAppLoggerAdapter) Infof(msg string, args ...any) {
	w.write(w.logger.Info(), msg, args)
}

func (w *WhatsAppLoggerAdapter) Debugf(msg string, args ...any) {
	w.write(w.logger.Debug(), msg, args)
}

func (w *WhatsAppLoggerAdapter) Sub(module string) waLog.Logger {
	if module == "" {
		return w
	}
	return &WhatsAppLoggerAdapter{logger: w.logger.WithField("module", module)}
}

func (w *WhatsAppLoggerAdapter) write(event *zerolog.Event, msg string, args []any) {
	if len(args) == 0 {
		event.Msg(msg)
		return
	}
	event.Msgf(msg, args...)
}

// ============================================================================
// BUN ORM ADAPTER
// ============================================================================

// BunQueryHook implementa hook para logging de queries do Bun ORM
type BunQueryHook struct {
	logger Logger
}

// NewBunQueryHook cria um novo hook para logging de queries do Bun
func NewBunQueryHook(logger Logger) bun.QueryHook {
	return &BunQueryHook{
		logger: logger.WithComponent("database"),
	}
}

func (h *BunQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *BunQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)
	operation := queryOperation(event.Query)

	if event.Err != nil {
		h.logger.Error().
			Err(event.Err).
			Str("query", sanitizeQuery(event.Query)).
			Int64("duration_ms", duration.Milliseconds()).
			Str("operation", operation).
			Msg("Database query failed")
		return
	}

	// Queries lentas (> 100ms) sempre logam como WARNING
	if duration > 100*time.Millisecond {
		h.logger.Warn().
			Str("operation", operation).
			Str("query", sanitizeQuery(event.Query)).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Slow database query")
		return
	}

	h.logger.Trace().
		Str("operation", operation).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("DB operation completed")
}

// queryOperation extrai o tipo de operação da query
func queryOperation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP":
		return op
	}
	return "UNKNOWN"
}

// sanitizeQuery normaliza espaços e encurta a query para logging
func sanitizeQuery(query string) string {
	const maxLength = 200
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > maxLength {
		query = query[:maxLength] + "..."
	}
	return query
}

// ============================================================================
// HTTP LOGGER
// ============================================================================

// HTTPLogger registra requests HTTP com nível conforme status e duração
type HTTPLogger struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewHTTPLogger cria um logger de requests. Requests acima de slowThreshold
// são logados como warning.
func NewHTTPLogger(logger Logger, slowThreshold time.Duration) *HTTPLogger {
	return &HTTPLogger{
		logger:        logger.WithComponent("http"),
		slowThreshold: slowThreshold,
	}
}

// LogRequest loga um request concluído
func (h *HTTPLogger) LogRequest(method, path, requestID string, status int, duration time.Duration) {
	var event *zerolog.Event
	msg := "HTTP"

	switch {
	case status >= 500:
		event, msg = h.logger.Error(), "HTTP server error"
	case status >= 400:
		event, msg = h.logger.Warn(), "HTTP client error"
	case duration > h.slowThreshold:
		event, msg = h.logger.Warn(), "Slow request"
	default:
		event = h.logger.Debug()
	}

	event.
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", status).
		Int64("ms", duration.Milliseconds()).
		Msg(msg)
}
