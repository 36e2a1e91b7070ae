// Package presence contém o caso de uso de presença manual.
package presence

import (
	"context"
	"time"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	wapresence "wabridge/internal/infra/whatsapp/presence"
	"wabridge/pkg/logger"
)

// Scheduler é o agendador de presença
type Scheduler interface {
	Begin(ctx context.Context, conversationID string, kind wapresence.Kind, duration time.Duration) error
	Clear(ctx context.Context, conversationID string) error
}

// RequestValidator valida requisições pelas tags `validate`
type RequestValidator interface {
	Struct(req interface{}) error
}

// SetPresenceUseCase define manualmente digitando/gravando/pausado numa conversa
type SetPresenceUseCase struct {
	gate      whatsapp.ReadinessGate
	scheduler Scheduler
	validator RequestValidator
	logger    logger.Logger
}

// NewSetPresenceUseCase cria uma nova instância do caso de uso
func NewSetPresenceUseCase(gate whatsapp.ReadinessGate, scheduler Scheduler, validator RequestValidator, log logger.Logger) *SetPresenceUseCase {
	return &SetPresenceUseCase{
		gate:      gate,
		scheduler: scheduler,
		validator: validator,
		logger:    log.WithComponent("set-presence-usecase"),
	}
}

// Execute aplica a presença. Com duração > 0 o indicador é limpo automaticamente.
func (uc *SetPresenceUseCase) Execute(ctx context.Context, req message.SetPresenceRequest) (*message.PresenceResponse, error) {
	if !uc.gate.IsReady() {
		return nil, session.ErrNotReady
	}
	if uc.validator != nil {
		if err := uc.validator.Struct(req); err != nil {
			return nil, err
		}
	}

	resp := &message.PresenceResponse{ConversationID: req.ConversationID, Kind: req.Kind}

	if req.Kind == "paused" {
		if err := uc.scheduler.Clear(ctx, req.ConversationID); err != nil {
			return nil, err
		}
		return resp, nil
	}

	kind, ok := wapresence.ParseKind(req.Kind)
	if !ok {
		return nil, message.NewValidationError("kind", "must be one of [typing recording paused]")
	}

	d := time.Duration(req.Duration) * time.Millisecond
	if err := uc.scheduler.Begin(ctx, req.ConversationID, kind, d); err != nil {
		uc.logger.WithError(err).WithField("conversationId", req.ConversationID).Warn().Msg("Failed to set presence")
		return nil, err
	}

	resp.Duration = d.Milliseconds()
	resp.AutoClear = d > 0
	return resp, nil
}
