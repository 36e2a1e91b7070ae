package message

import (
	"context"

	"wabridge/internal/domain/message"
)

// SendReactionUseCase reage a uma mensagem conhecida
type SendReactionUseCase struct {
	sender
}

// NewSendReactionUseCase cria uma nova instância do caso de uso
func NewSendReactionUseCase(deps Deps) *SendReactionUseCase {
	return &SendReactionUseCase{sender: newSender(deps, "reaction")}
}

// Execute envia a reação; emoji vazio ou "remove" remove a reação anterior
func (uc *SendReactionUseCase) Execute(ctx context.Context, req message.SendReactionRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	target, err := uc.lookup(ctx, req.MessageID)
	if err != nil {
		return nil, err
	}

	res, err := uc.Conn.SendReaction(ctx, target.Ref(), req.Emoji)
	if err != nil {
		return nil, uc.sendError(err)
	}

	return uc.finish(ctx, res, req.Emoji, nil), nil
}
