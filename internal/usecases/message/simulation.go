package message

import (
	"context"
	"time"

	"wabridge/internal/domain/message"
	"wabridge/internal/infra/whatsapp/presence"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

// MaxMessageDelay limita a pausa extra após a digitação
const MaxMessageDelay = 5 * time.Second

// PresenceScheduler é o agendador de presença usado antes dos envios
type PresenceScheduler interface {
	Begin(ctx context.Context, conversationID string, kind presence.Kind, duration time.Duration) error
}

// Simulator executa a simulação de digitação/gravação antes de um envio
type Simulator struct {
	scheduler PresenceScheduler
	model     presence.DurationModel
	clock     clock.Clock
	logger    logger.Logger
}

// NewSimulator cria uma nova instância do Simulator
func NewSimulator(scheduler PresenceScheduler, model presence.DurationModel, clk clock.Clock, log logger.Logger) *Simulator {
	return &Simulator{
		scheduler: scheduler,
		model:     model,
		clock:     clk,
		logger:    log.WithComponent("presence-simulation"),
	}
}

// Duration resolve a duração da digitação: explícita (limitada ao modelo) ou calculada
func (s *Simulator) Duration(text string, opts message.PresenceOptions) time.Duration {
	if opts.TypingDuration > 0 {
		return s.model.Clamp(time.Duration(opts.TypingDuration) * time.Millisecond)
	}
	return s.model.Compute(text, presence.Hints{
		MessageType: opts.MessageType,
		Complexity:  opts.Complexity,
		Urgency:     opts.Urgency,
	})
}

// Run sinaliza a presença e aguarda a duração e o atraso antes de liberar o envio.
// Um erro de presença interrompe o envio sem agendar timer.
func (s *Simulator) Run(ctx context.Context, conversationID string, kind presence.Kind, text string, opts message.PresenceOptions) (*message.Timing, error) {
	start := s.clock.Now()
	timing := &message.Timing{}

	if opts.TypingEnabled() {
		d := s.Duration(text, opts)
		if err := s.scheduler.Begin(ctx, conversationID, kind, d); err != nil {
			return nil, err
		}
		if err := s.wait(ctx, d); err != nil {
			return nil, err
		}
		timing.PresenceSimulated = true
		timing.TypingDuration = d.Milliseconds()
	}

	if delay := clampDelay(opts.MessageDelay); delay > 0 {
		if err := s.wait(ctx, delay); err != nil {
			return nil, err
		}
		timing.MessageDelay = delay.Milliseconds()
	}

	timing.TotalTime = s.clock.Since(start).Milliseconds()

	s.logger.WithFields(map[string]interface{}{
		"conversationId": conversationID,
		"kind":           kind,
		"typingMs":       timing.TypingDuration,
		"delayMs":        timing.MessageDelay,
	}).Debug().Msg("Presence simulated")

	return timing, nil
}

func (s *Simulator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}

func clampDelay(ms int) time.Duration {
	d := time.Duration(ms) * time.Millisecond
	if d < 0 {
		return 0
	}
	if d > MaxMessageDelay {
		return MaxMessageDelay
	}
	return d
}
