package message

import (
	"context"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
)

// SendContactUseCase envia um cartão de contato
type SendContactUseCase struct {
	sender
}

// NewSendContactUseCase cria uma nova instância do caso de uso
func NewSendContactUseCase(deps Deps) *SendContactUseCase {
	return &SendContactUseCase{sender: newSender(deps, "contact")}
}

// Execute envia o contato como vCard
func (uc *SendContactUseCase) Execute(ctx context.Context, req message.SendContactRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	res, err := uc.Conn.SendContact(ctx, req.ConversationID, whatsapp.Contact{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return nil, uc.sendError(err)
	}

	return uc.finish(ctx, res, req.Name, nil), nil
}
