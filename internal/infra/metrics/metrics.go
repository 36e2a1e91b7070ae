// Package metrics expõe os instrumentos Prometheus da ponte.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wabridge/internal/domain/session"
)

var states = []session.State{
	session.StateInitializing,
	session.StateAwaitingChallenge,
	session.StateAuthenticating,
	session.StateReady,
	session.StateDisconnected,
	session.StateReconnecting,
	session.StateFailed,
}

// Metrics agrupa todos os instrumentos Prometheus do serviço
type Metrics struct {
	SessionState     *prometheus.GaugeVec
	SessionEvents    *prometheus.CounterVec
	AuthEscalations  prometheus.Counter
	PresenceEvents   *prometheus.CounterVec
	InboundMessages  *prometheus.CounterVec
	OutboundMessages *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registra os instrumentos em reg. Com reg nil usa o registry padrão.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	return &Metrics{
		SessionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "Current session lifecycle state (1 for the active state).",
		}, []string{"state"}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		AuthEscalations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_escalations_total",
			Help:      "Pairing challenges issued after the attempt limit was reached.",
		}),
		PresenceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_events_total",
			Help:      "Presence scheduler events by type.",
		}, []string{"event"}),
		InboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Inbound WhatsApp messages by outcome.",
		}, []string{"outcome"}),
		OutboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_messages_total",
			Help:      "Outbound sends by kind and result.",
		}, []string{"kind", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request duration in milliseconds.",
			Buckets:   []float64{5, 25, 100, 500, 1000, 2500, 5000, 10000},
		}, []string{"method", "route"}),
		gatherer: gatherer,
	}
}

// OnChange acompanha as transições do controlador de sessão
func (m *Metrics) OnChange(change session.Change) {
	m.SessionEvents.WithLabelValues(string(change.Event)).Inc()
	if change.Escalated {
		m.AuthEscalations.Inc()
	}
	for _, s := range states {
		v := 0.0
		if s == change.To {
			v = 1
		}
		m.SessionState.WithLabelValues(string(s)).Set(v)
	}
}

// ObservePresence implementa o Recorder do agendador de presença
func (m *Metrics) ObservePresence(event string) {
	m.PresenceEvents.WithLabelValues(event).Inc()
}

// ObserveInbound implementa o Recorder do processador de mensagens
func (m *Metrics) ObserveInbound(outcome string) {
	m.InboundMessages.WithLabelValues(outcome).Inc()
}

// ObserveSend registra o resultado de um envio
func (m *Metrics) ObserveSend(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.OutboundMessages.WithLabelValues(kind, result).Inc()
}

// ObserveHTTP registra um request concluído
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(float64(d.Milliseconds()))
}

// Handler expõe as métricas no formato Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
