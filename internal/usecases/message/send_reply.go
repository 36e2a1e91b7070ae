package message

import (
	"context"

	"wabridge/internal/domain/message"
	"wabridge/internal/infra/whatsapp/presence"
)

// SendReplyUseCase responde uma mensagem conhecida, citando-a
type SendReplyUseCase struct {
	sender
}

// NewSendReplyUseCase cria uma nova instância do caso de uso
func NewSendReplyUseCase(deps Deps) *SendReplyUseCase {
	return &SendReplyUseCase{sender: newSender(deps, "reply")}
}

// Execute resolve a mensagem original no diário e envia a resposta na mesma conversa
func (uc *SendReplyUseCase) Execute(ctx context.Context, req message.SendReplyRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	original, err := uc.lookup(ctx, req.MessageID)
	if err != nil {
		return nil, err
	}

	timing, err := uc.Simulator.Run(ctx, original.ConversationID, presence.KindTyping, req.Text, req.PresenceOptions)
	if err != nil {
		return nil, uc.sendError(err)
	}

	res, err := uc.Conn.SendReply(ctx, original.Ref(), req.Text)
	if err != nil {
		return nil, uc.sendError(err)
	}

	return uc.finish(ctx, res, req.Text, timing), nil
}
