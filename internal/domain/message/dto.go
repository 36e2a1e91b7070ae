package message

import "time"

// PresenceOptions controla a simulação de digitação antes de um envio.
// Durações em milissegundos.
type PresenceOptions struct {
	EnableTyping   *bool  `json:"enable_typing,omitempty"`
	TypingDuration int    `json:"typing_duration,omitempty" validate:"gte=0,lte=60000"`
	MessageDelay   int    `json:"message_delay,omitempty" validate:"gte=0,lte=60000"`
	MessageType    string `json:"message_type,omitempty" validate:"max=64"`
	Complexity     string `json:"complexity,omitempty" validate:"omitempty,oneof=low medium high"`
	Urgency        string `json:"urgency,omitempty" validate:"omitempty,oneof=low normal high"`
}

// TypingEnabled retorna se a simulação está ligada (padrão: ligada)
func (o PresenceOptions) TypingEnabled() bool {
	return o.EnableTyping == nil || *o.EnableTyping
}

// SendTextRequest representa a requisição para envio de mensagem de texto
type SendTextRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Text           string `json:"text" validate:"required,max=65536"`
	PresenceOptions
}

// SendReplyRequest representa a requisição para responder uma mensagem
type SendReplyRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	Text      string `json:"text" validate:"required,max=65536"`
	PresenceOptions
}

// SendReactionRequest representa a requisição para reagir a uma mensagem.
// Emoji vazio ou "remove" remove a reação.
type SendReactionRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	Emoji     string `json:"emoji" validate:"max=32"`
}

// SendMediaRequest representa a requisição para envio de mídia.
// Exatamente uma origem é usada: Upload, Data (base64 ou data URL) ou URL.
type SendMediaRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Kind           string `json:"type" validate:"required,oneof=image document audio video sticker"`
	URL            string `json:"url,omitempty" validate:"omitempty,url"`
	Data           string `json:"data,omitempty"`
	Caption        string `json:"caption,omitempty" validate:"max=4096"`
	FileName       string `json:"filename,omitempty" validate:"max=255"`
	MimeType       string `json:"mimetype,omitempty" validate:"max=128"`
	PresenceOptions

	// Upload direto via multipart; não vem do JSON
	Upload []byte `json:"-" validate:"-"`
}

// SendLocationRequest representa a requisição para envio de localização
type SendLocationRequest struct {
	ConversationID string  `json:"conversation_id" validate:"required"`
	Latitude       float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude      float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Name           string  `json:"name,omitempty" validate:"max=256"`
	Address        string  `json:"address,omitempty" validate:"max=512"`
}

// SendContactRequest representa a requisição para envio de contato
type SendContactRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Name           string `json:"name" validate:"required,max=256"`
	Phone          string `json:"phone" validate:"required,max=32"`
}

// SetPresenceRequest representa a requisição para definir presença
type SetPresenceRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Kind           string `json:"kind" validate:"required,oneof=typing recording paused"`
	Duration       int    `json:"duration" validate:"gte=0,lte=60000"`
}

// Timing descreve o tempo gasto na simulação de presença (ms)
type Timing struct {
	PresenceSimulated bool  `json:"presence_simulated"`
	TypingDuration    int64 `json:"typing_duration"`
	MessageDelay      int64 `json:"message_delay"`
	TotalTime         int64 `json:"total_time"`
}

// MediaInfo descreve a mídia enviada
type MediaInfo struct {
	Kind     string `json:"type"`
	MimeType string `json:"mimetype"`
	FileName string `json:"filename,omitempty"`
	Size     int    `json:"size"`
}

// SendMessageResponse representa a resposta de envio de mensagem
type SendMessageResponse struct {
	MessageID      string     `json:"message_id"`
	ConversationID string     `json:"conversation_id"`
	Timestamp      time.Time  `json:"timestamp"`
	Status         string     `json:"status"`
	Timing         *Timing    `json:"timing,omitempty"`
	Media          *MediaInfo `json:"media,omitempty"`
}

// PresenceResponse representa a resposta de definição de presença
type PresenceResponse struct {
	ConversationID string `json:"conversation_id"`
	Kind           string `json:"kind"`
	Duration       int64  `json:"duration"`
	AutoClear      bool   `json:"auto_clear"`
}
