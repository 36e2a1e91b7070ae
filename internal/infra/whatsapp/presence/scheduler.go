// Package presence agenda os indicadores de digitação/gravação por conversa.
package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wabridge/internal/domain/whatsapp"
	"wabridge/internal/infra/whatsapp/core"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

// Kind é o tipo de presença simulada
type Kind string

const (
	KindTyping    Kind = "typing"
	KindRecording Kind = "recording"
)

// State é o estado de presença de uma conversa
type State string

const (
	StateIdle      State = "idle"
	StateTyping    State = "typing"
	StateRecording State = "recording"
)

// ParseKind converte o texto da API para Kind
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindTyping, KindRecording:
		return Kind(s), true
	}
	return "", false
}

func (k Kind) chatState() whatsapp.PresenceState {
	if k == KindRecording {
		return whatsapp.PresenceRecording
	}
	return whatsapp.PresenceComposing
}

func (k Kind) state() State {
	if k == KindRecording {
		return StateRecording
	}
	return StateTyping
}

// Signaler envia o estado de presença para a conexão
type Signaler interface {
	SendChatPresence(ctx context.Context, conversationID string, state whatsapp.PresenceState) error
}

// Recorder recebe contadores de presença (métricas)
type Recorder interface {
	ObservePresence(event string)
}

type entry struct {
	state State
	timer clock.Timer
	gen   uint64
}

// Scheduler mantém no máximo um auto-clear pendente por conversa.
// Um novo Begin substitui o anterior (last-write-wins).
type Scheduler struct {
	signaler     Signaler
	clock        clock.Clock
	logger       logger.Logger
	recorder     Recorder
	clearTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
}

// Option configura o Scheduler
type Option func(*Scheduler)

// WithRecorder registra um Recorder de métricas
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithClearTimeout define o timeout da chamada de limpeza no disparo do timer
func WithClearTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.clearTimeout = d }
}

// NewScheduler cria um novo agendador de presença
func NewScheduler(signaler Signaler, clk clock.Clock, log logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		signaler:     signaler,
		clock:        clk,
		logger:       log.WithComponent("presence"),
		clearTimeout: 10 * time.Second,
		entries:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin mostra a presença kind na conversa e agenda o auto-clear após duration.
// duration <= 0 desativa o auto-clear. Se a sinalização falhar nenhum timer é
// agendado e o erro envolve whatsapp.ErrConversationUnavailable.
func (s *Scheduler) Begin(ctx context.Context, conversationID string, kind Kind, duration time.Duration) error {
	if conversationID == "" {
		return fmt.Errorf("%w: empty conversation id", whatsapp.ErrConversationUnavailable)
	}
	conversationID = conversationKey(conversationID)

	if err := s.signaler.SendChatPresence(ctx, conversationID, kind.chatState()); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"conversationId": conversationID,
			"kind":           kind,
		}).Warn().Msg("Failed to signal presence")
		return fmt.Errorf("%w: %w", whatsapp.ErrConversationUnavailable, err)
	}

	s.mu.Lock()
	replaced := s.stopLocked(conversationID)
	s.gen++
	e := &entry{state: kind.state(), gen: s.gen}
	if duration > 0 {
		gen := e.gen
		e.timer = s.clock.AfterFunc(duration, func() { s.fire(conversationID, gen) })
	}
	s.entries[conversationID] = e
	s.mu.Unlock()

	s.observe("begin_" + string(kind))
	if replaced {
		s.observe("superseded")
	}

	s.logger.WithFields(map[string]interface{}{
		"conversationId": conversationID,
		"kind":           kind,
		"durationMs":     duration.Milliseconds(),
		"autoClear":      duration > 0,
		"replaced":       replaced,
	}).Debug().Msg("Presence started")

	return nil
}

// Clear pausa a presença imediatamente e cancela o timer pendente
func (s *Scheduler) Clear(ctx context.Context, conversationID string) error {
	conversationID = conversationKey(conversationID)
	s.mu.Lock()
	s.stopLocked(conversationID)
	delete(s.entries, conversationID)
	s.mu.Unlock()

	if err := s.signaler.SendChatPresence(ctx, conversationID, whatsapp.PresencePaused); err != nil {
		return fmt.Errorf("%w: %w", whatsapp.ErrConversationUnavailable, err)
	}
	s.observe("cleared")
	return nil
}

// CancelAll cancela todos os timers pendentes sem sinalizar a conexão.
// Retorna quantos timers foram cancelados.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	cancelled := 0
	for _, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
			cancelled++
		}
	}
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	if cancelled > 0 {
		s.logger.WithField("cancelled", cancelled).Info().Msg("Pending presence timers cancelled")
		s.observe("cancel_all")
	}
	return cancelled
}

// PendingTimers retorna quantos auto-clears estão agendados
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.timer != nil {
			n++
		}
	}
	return n
}

// ActiveCount retorna quantas conversas têm presença ativa
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// State retorna o estado de presença de uma conversa
func (s *Scheduler) State(conversationID string) State {
	conversationID = conversationKey(conversationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[conversationID]; ok {
		return e.state
	}
	return StateIdle
}

func (s *Scheduler) stopLocked(conversationID string) bool {
	e, ok := s.entries[conversationID]
	if !ok {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	return true
}

// fire roda no disparo do timer; gen descarta timers já substituídos
func (s *Scheduler) fire(conversationID string, gen uint64) {
	s.mu.Lock()
	e, ok := s.entries[conversationID]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.entries, conversationID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.clearTimeout)
	defer cancel()

	if err := s.signaler.SendChatPresence(ctx, conversationID, whatsapp.PresencePaused); err != nil {
		s.logger.WithError(err).WithField("conversationId", conversationID).Warn().Msg("Failed to clear presence")
		s.observe("clear_failed")
		return
	}
	s.observe("auto_cleared")
}

// conversationKey normaliza o identificador para o JID canônico, de modo que
// "5511999999999" e "5511999999999@s.whatsapp.net" compartilhem a mesma entrada.
// Identificadores não reconhecidos são usados como vieram.
func conversationKey(id string) string {
	if jid, err := core.ParseJID(id); err == nil {
		return jid.String()
	}
	return id
}

func (s *Scheduler) observe(event string) {
	if s.recorder != nil {
		s.recorder.ObservePresence(event)
	}
}
