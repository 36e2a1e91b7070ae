package message

import (
	"context"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
)

// SendLocationUseCase envia uma localização
type SendLocationUseCase struct {
	sender
}

// NewSendLocationUseCase cria uma nova instância do caso de uso
func NewSendLocationUseCase(deps Deps) *SendLocationUseCase {
	return &SendLocationUseCase{sender: newSender(deps, "location")}
}

// Execute envia a localização sem simulação de presença
func (uc *SendLocationUseCase) Execute(ctx context.Context, req message.SendLocationRequest) (*message.SendMessageResponse, error) {
	if err := uc.checkReady(); err != nil {
		return nil, err
	}
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	res, err := uc.Conn.SendLocation(ctx, req.ConversationID, whatsapp.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Name:      req.Name,
		Address:   req.Address,
	})
	if err != nil {
		return nil, uc.sendError(err)
	}

	return uc.finish(ctx, res, req.Name, nil), nil
}
