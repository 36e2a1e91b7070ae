package whatsapp

import (
	"context"

	"wabridge/internal/domain/session"
)

// EventSink recebe as mensagens encaminhadas (webhook, broker)
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, payload *WebhookPayload) error
}

// LifecyclePublisher publica transições do ciclo de vida da sessão
type LifecyclePublisher interface {
	PublishChange(ctx context.Context, change session.Change) error
}

// SecurityService define operações de assinatura e comparação de segredos
type SecurityService interface {
	// GenerateSignature gera uma assinatura HMAC-SHA256 para o webhook
	GenerateSignature(data []byte, secret string) string

	// ValidateSignature valida uma assinatura de webhook
	ValidateSignature(data []byte, signature, secret string) bool

	// SecretsEqual compara dois segredos em tempo constante
	SecretsEqual(given, expected string) bool
}
