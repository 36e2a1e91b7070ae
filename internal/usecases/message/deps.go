package message

import (
	"context"
	"errors"
	"fmt"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

// RequestValidator valida requisições pelas tags `validate`
type RequestValidator interface {
	Struct(req interface{}) error
}

// SendRecorder observa o resultado de cada envio (métricas)
type SendRecorder interface {
	ObserveSend(kind string, err error)
}

// Deps reúne as dependências comuns aos casos de uso de envio
type Deps struct {
	Gate      whatsapp.ReadinessGate
	Conn      whatsapp.Connection
	Simulator *Simulator
	Journal   message.Repository
	Validator RequestValidator
	Recorder  SendRecorder
	Logger    logger.Logger
}

// sender concentra o fluxo comum: prontidão, validação, envio e diário
type sender struct {
	Deps
	kind string
}

func newSender(deps Deps, kind string) sender {
	deps.Logger = deps.Logger.WithComponent("send-" + kind)
	return sender{Deps: deps, kind: kind}
}

// checkReady falha com ErrNotReady antes de qualquer efeito colateral
func (s sender) checkReady() error {
	if s.Gate == nil || !s.Gate.IsReady() {
		s.Logger.Warn().Msg("Send rejected: session not ready")
		return session.ErrNotReady
	}
	return nil
}

func (s sender) validate(req interface{}) error {
	if s.Validator == nil {
		return nil
	}
	if err := s.Validator.Struct(req); err != nil {
		s.Logger.WithError(err).Debug().Msg("Invalid request")
		return err
	}
	return nil
}

// finish registra o envio no diário e monta a resposta
func (s sender) finish(ctx context.Context, res *whatsapp.SendResult, text string, timing *message.Timing) *message.SendMessageResponse {
	if s.Journal != nil {
		if err := s.Journal.Save(ctx, message.NewOutboundRecord(res, s.kind, text)); err != nil {
			s.Logger.WithError(err).WithField("messageId", res.ID).Warn().Msg("Failed to journal outbound message")
		}
	}

	s.observe(nil)
	s.Logger.WithFields(map[string]interface{}{
		"conversationId": res.ConversationID,
		"messageId":      res.ID,
	}).Info().Msg("Message sent")

	return &message.SendMessageResponse{
		MessageID:      res.ID,
		ConversationID: res.ConversationID,
		Timestamp:      res.Timestamp,
		Status:         "sent",
		Timing:         timing,
	}
}

// sendError classifica o erro da conexão; erros conhecidos passam intactos
func (s sender) sendError(err error) error {
	s.observe(err)
	switch {
	case errors.Is(err, whatsapp.ErrConversationUnavailable),
		errors.Is(err, session.ErrNotConnected),
		errors.Is(err, session.ErrNotReady),
		errors.Is(err, message.ErrMediaFetchFailed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	s.Logger.WithError(err).Error().Msg("Send failed")
	return fmt.Errorf("%w: %w", message.ErrSendFailed, err)
}

func (s sender) observe(err error) {
	if s.Recorder != nil {
		s.Recorder.ObserveSend(s.kind, err)
	}
}

// lookup resolve a mensagem original no diário
func (s sender) lookup(ctx context.Context, id string) (*message.Record, error) {
	if s.Journal == nil {
		return nil, message.ErrMessageNotFound
	}
	rec, err := s.Journal.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, message.ErrMessageNotFound) {
			s.Logger.WithError(err).WithField("messageId", id).Error().Msg("Failed to read message journal")
		}
		return nil, err
	}
	return rec, nil
}
