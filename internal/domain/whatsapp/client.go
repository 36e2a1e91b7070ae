package whatsapp

import (
	"context"
	"time"
)

// PresenceState é o indicador de chat enviado ao WhatsApp
type PresenceState string

const (
	PresenceComposing PresenceState = "composing"
	PresenceRecording PresenceState = "recording"
	PresencePaused    PresenceState = "paused"
)

// MediaKind define os tipos de mídia suportados
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaSticker  MediaKind = "sticker"
)

// IsValid verifica se o tipo de mídia é conhecido
func (k MediaKind) IsValid() bool {
	switch k {
	case MediaImage, MediaDocument, MediaAudio, MediaVideo, MediaSticker:
		return true
	}
	return false
}

// SendResult é o retorno de um envio
type SendResult struct {
	ID             string
	ConversationID string
	Timestamp      time.Time
}

// MessageRef identifica uma mensagem existente (para resposta e reação)
type MessageRef struct {
	ID             string
	ConversationID string
	SenderID       string
	FromMe         bool
	Text           string
}

// Media é o conteúdo binário já resolvido de uma mídia
type Media struct {
	Kind     MediaKind
	Data     []byte
	MimeType string
	FileName string
	Caption  string
}

// Location é uma localização a enviar
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// Contact é um cartão de contato a enviar
type Contact struct {
	Name  string
	Phone string
}

// Connection é a conexão WhatsApp usada pelo gateway e pelo agendador de presença
type Connection interface {
	SendText(ctx context.Context, conversationID, text string) (*SendResult, error)
	SendReply(ctx context.Context, quoted MessageRef, text string) (*SendResult, error)
	SendReaction(ctx context.Context, target MessageRef, emoji string) (*SendResult, error)
	SendMedia(ctx context.Context, conversationID string, media Media) (*SendResult, error)
	SendLocation(ctx context.Context, conversationID string, location Location) (*SendResult, error)
	SendContact(ctx context.Context, conversationID string, contact Contact) (*SendResult, error)
	SendChatPresence(ctx context.Context, conversationID string, state PresenceState) error
}

// ReadinessGate informa se a sessão está pronta para envios
type ReadinessGate interface {
	IsReady() bool
}
