package whatsapp

import "time"

// EventType define os tipos de eventos encaminhados
type EventType string

const (
	EventMessage EventType = "message"
)

// MediaAttachment é a mídia recebida, embutida no webhook
type MediaAttachment struct {
	MimeType string `json:"mimetype"`
	FileName string `json:"filename,omitempty"`
	Data     string `json:"data"`
	Size     int    `json:"size"`
}

// WebhookPayload é o corpo enviado ao webhook para cada mensagem recebida
type WebhookPayload struct {
	Event       EventType        `json:"event"`
	MessageID   string           `json:"message_id"`
	From        string           `json:"from"`
	Chat        string           `json:"chat"`
	PushName    string           `json:"push_name,omitempty"`
	Body        string           `json:"body"`
	Type        string           `json:"type"`
	Timestamp   time.Time        `json:"timestamp"`
	IsGroup     bool             `json:"is_group"`
	HasMedia    bool             `json:"has_media"`
	Media       *MediaAttachment `json:"media,omitempty"`
	MediaError  string           `json:"media_error,omitempty"`
	QuotedID    string           `json:"quoted_message_id,omitempty"`
	TimeoutMs   int64            `json:"timeout_ms"`
	ForwardedAt time.Time        `json:"forwarded_at"`
}
