package whatsapp

import "errors"

var (
	// ErrConversationUnavailable indica que a conversa de destino não pode ser resolvida
	ErrConversationUnavailable = errors.New("conversation unavailable")

	// ErrInvalidJID indica que o JID é inválido
	ErrInvalidJID = errors.New("invalid jid")

	// ErrDeliveryTimeout indica que o webhook excedeu o tempo limite
	ErrDeliveryTimeout = errors.New("webhook delivery timeout")

	// ErrUnsupportedMedia indica um tipo de mídia não suportado
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
