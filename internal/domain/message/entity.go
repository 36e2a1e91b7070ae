package message

import (
	"time"

	"github.com/uptrace/bun"

	"wabridge/internal/domain/whatsapp"
)

// Direction indica se a mensagem entrou ou saiu pela ponte
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Record é uma entrada do diário de mensagens, usado para localizar
// a conversa de uma mensagem em respostas e reações
type Record struct {
	bun.BaseModel `bun:"table:bridge_messages,alias:m"`

	ID             string    `bun:"id,pk,type:varchar(128)" json:"id"`
	ConversationID string    `bun:"conversation_id,type:varchar(128),notnull" json:"conversationId"`
	SenderID       string    `bun:"sender_id,type:varchar(128)" json:"senderId,omitempty"`
	FromMe         bool      `bun:"from_me,notnull,default:false" json:"fromMe"`
	Direction      Direction `bun:"direction,type:varchar(16),notnull" json:"direction"`
	Kind           string    `bun:"kind,type:varchar(32),notnull" json:"kind"`
	Text           string    `bun:"text,type:text" json:"text,omitempty"`
	CreatedAt      time.Time `bun:"created_at,type:timestamptz,notnull" json:"createdAt"`
}

// Ref converte o registro para a referência usada pela conexão
func (r *Record) Ref() whatsapp.MessageRef {
	return whatsapp.MessageRef{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		FromMe:         r.FromMe,
		Text:           r.Text,
	}
}

// NewOutboundRecord cria o registro de uma mensagem enviada pela ponte
func NewOutboundRecord(res *whatsapp.SendResult, kind, text string) *Record {
	return &Record{
		ID:             res.ID,
		ConversationID: res.ConversationID,
		FromMe:         true,
		Direction:      DirectionOutbound,
		Kind:           kind,
		Text:           text,
		CreatedAt:      res.Timestamp,
	}
}
