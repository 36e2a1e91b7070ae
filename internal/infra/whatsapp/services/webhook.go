package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

const (
	MinWebhookTimeout     = 10 * time.Second
	MaxWebhookTimeout     = 30 * time.Second
	DefaultWebhookTimeout = 15 * time.Second

	HeaderWebhookSecret    = "X-Webhook-Secret"
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookEvent     = "X-Webhook-Event"
	HeaderDeliveryID       = "X-Webhook-Delivery"
)

// WebhookConfig representa a configuração do webhook de saída
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// ClampWebhookTimeout limita o timeout ao intervalo [10s, 30s]; zero usa o padrão
func ClampWebhookTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultWebhookTimeout
	case d < MinWebhookTimeout:
		return MinWebhookTimeout
	case d > MaxWebhookTimeout:
		return MaxWebhookTimeout
	}
	return d
}

// WebhookForwarder entrega cada mensagem recebida ao webhook com uma única tentativa
type WebhookForwarder struct {
	config     WebhookConfig
	security   whatsapp.SecurityService
	httpClient *http.Client
	logger     logger.Logger
}

// NewWebhookForwarder cria uma nova instância do WebhookForwarder
func NewWebhookForwarder(config WebhookConfig, security whatsapp.SecurityService, log logger.Logger) *WebhookForwarder {
	config.Timeout = ClampWebhookTimeout(config.Timeout)
	return &WebhookForwarder{
		config:   config,
		security: security,
		// o timeout é aplicado por contexto em cada entrega
		httpClient: &http.Client{},
		logger:     log.WithComponent("webhook-forwarder"),
	}
}

var _ whatsapp.EventSink = (*WebhookForwarder)(nil)

// Name identifica o sink nos logs
func (wf *WebhookForwarder) Name() string {
	return "webhook"
}

// Timeout retorna o timeout efetivo de cada entrega
func (wf *WebhookForwarder) Timeout() time.Duration {
	return wf.config.Timeout
}

// Deliver envia o payload ao webhook. Não há nova tentativa: um prazo
// excedido retorna ErrDeliveryTimeout e a mensagem é descartada.
func (wf *WebhookForwarder) Deliver(ctx context.Context, payload *whatsapp.WebhookPayload) error {
	if wf.config.URL == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, wf.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wf.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	deliveryID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "wabridge-webhook/1.0")
	req.Header.Set(HeaderWebhookEvent, string(payload.Event))
	req.Header.Set(HeaderDeliveryID, deliveryID)
	if wf.config.Secret != "" {
		req.Header.Set(HeaderWebhookSecret, wf.config.Secret)
		req.Header.Set(HeaderWebhookSignature, wf.security.GenerateSignature(body, wf.config.Secret))
	}

	start := time.Now()
	resp, err := wf.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			wf.logger.WithFields(map[string]interface{}{
				"deliveryId": deliveryID,
				"messageId":  payload.MessageID,
				"timeout":    wf.config.Timeout.String(),
			}).Warn().Msg("Webhook delivery timed out, message dropped")
			return fmt.Errorf("%w: %v", whatsapp.ErrDeliveryTimeout, err)
		}
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-success status: %d", resp.StatusCode)
	}

	wf.logger.WithFields(map[string]interface{}{
		"deliveryId": deliveryID,
		"messageId":  payload.MessageID,
		"status":     resp.StatusCode,
		"ms":         time.Since(start).Milliseconds(),
	}).Debug().Msg("Webhook delivered")

	return nil
}
