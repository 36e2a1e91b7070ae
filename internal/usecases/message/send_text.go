package message

import (
	"context"

	"wabridge/internal/domain/message"
	"wabridge/internal/infra/whatsapp/presence"
)

// SendTextUseCase implementa o caso de uso para envio de mensagem de texto
type SendTextUseCase struct {
	sender
}

// NewSendTextUseCase cria uma nova instância do caso de uso
func NewSendTextUseCase(deps Deps) *SendTextUseCase {
	return &SendTextUseCase{sender: newSender(deps, "text")}
}

// Execute envia o texto, simulando digitação antes quando habilitado
func (uc *SendTextUseCase) Execute(ctx context.Context, req message.SendTextRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	uc.Logger.WithFields(map[string]interface{}{
		"conversationId": req.ConversationID,
		"length":         len(req.Text),
	}).Info().Msg("Sending text message")

	timing, err := uc.Simulator.Run(ctx, req.ConversationID, presence.KindTyping, req.Text, req.PresenceOptions)
	if err != nil {
		return nil, uc.sendError(err)
	}

	res, err := uc.Conn.SendText(ctx, req.ConversationID, req.Text)
	if err != nil {
		return nil, uc.sendError(err)
	}

	return uc.finish(ctx, res, req.Text, timing), nil
}
