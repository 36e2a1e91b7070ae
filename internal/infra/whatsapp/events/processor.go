// Package events transforma mensagens recebidas do WhatsApp em payloads de webhook.
package events

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

// Downloader baixa o anexo de uma mensagem recebida
type Downloader interface {
	Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)
}

// Recorder observa o resultado do processamento (métricas)
type Recorder interface {
	ObserveInbound(outcome string)
}

// ProcessorConfig contém os limites do processamento de mensagens recebidas
type ProcessorConfig struct {
	// MediaMaxBytes limita o tamanho da mídia embutida no webhook; 0 desativa
	MediaMaxBytes int64
	// DeliveryTimeout é anunciado no payload como timeout_ms
	DeliveryTimeout time.Duration
	DownloadTimeout time.Duration
}

// Processor recebe events.Message e encaminha para os sinks
type Processor struct {
	cfg        ProcessorConfig
	journal    message.Repository
	downloader Downloader
	sinks      []whatsapp.EventSink
	recorder   Recorder
	clock      clock.Clock
	logger     logger.Logger

	wg sync.WaitGroup
}

// NewProcessor cria uma nova instância do Processor
func NewProcessor(
	cfg ProcessorConfig,
	journal message.Repository,
	downloader Downloader,
	clk clock.Clock,
	log logger.Logger,
	sinks ...whatsapp.EventSink,
) *Processor {
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	return &Processor{
		cfg:        cfg,
		journal:    journal,
		downloader: downloader,
		sinks:      sinks,
		clock:      clk,
		logger:     log.WithComponent("inbound-processor"),
	}
}

// SetRecorder registra o observador de métricas
func (p *Processor) SetRecorder(r Recorder) {
	p.recorder = r
}

// HandleMessage processa a mensagem em background
func (p *Processor) HandleMessage(evt *events.Message) {
	if evt == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Process(context.Background(), evt)
	}()
}

// Wait aguarda o fim dos processamentos em andamento
func (p *Processor) Wait() {
	p.wg.Wait()
}

// Process filtra, registra e encaminha uma mensagem. Retorna o payload
// entregue aos sinks ou nil quando a mensagem foi descartada.
func (p *Processor) Process(ctx context.Context, evt *events.Message) *whatsapp.WebhookPayload {
	info := evt.Info

	if info.Chat == types.StatusBroadcastJID || info.Chat.Server == types.BroadcastServer {
		p.observe("ignored_broadcast")
		return nil
	}

	content := MapContent(evt.Message)

	p.journalMessage(ctx, info, content)

	if info.IsFromMe {
		p.observe("ignored_self")
		return nil
	}

	payload := &whatsapp.WebhookPayload{
		Event:     whatsapp.EventMessage,
		MessageID: info.ID,
		From:      info.Sender.String(),
		Chat:      info.Chat.String(),
		PushName:  info.PushName,
		Body:      content.Body,
		Type:      content.Type,
		Timestamp: info.Timestamp,
		IsGroup:   info.IsGroup,
		HasMedia:  content.HasMedia(),
		QuotedID:  content.QuotedID,
		TimeoutMs: p.cfg.DeliveryTimeout.Milliseconds(),
	}

	if content.HasMedia() {
		media, err := p.downloadMedia(ctx, content)
		if err != nil {
			payload.MediaError = err.Error()
			p.logger.WithError(err).WithField("messageId", info.ID).Warn().Msg("Inbound media not attached")
		} else {
			payload.Media = media
		}
	}

	payload.ForwardedAt = p.clock.Now()
	p.deliver(ctx, payload)
	p.observe("forwarded")
	return payload
}

func (p *Processor) journalMessage(ctx context.Context, info types.MessageInfo, content Content) {
	if p.journal == nil {
		return
	}

	record := &message.Record{
		ID:             info.ID,
		ConversationID: info.Chat.String(),
		SenderID:       info.Sender.String(),
		FromMe:         info.IsFromMe,
		Direction:      message.DirectionInbound,
		Kind:           content.Type,
		Text:           content.Body,
		CreatedAt:      info.Timestamp,
	}
	if err := p.journal.Save(ctx, record); err != nil {
		p.logger.WithError(err).WithField("messageId", info.ID).Warn().Msg("Failed to journal inbound message")
	}
}

func (p *Processor) downloadMedia(ctx context.Context, content Content) (*whatsapp.MediaAttachment, error) {
	if p.downloader == nil || p.cfg.MediaMaxBytes <= 0 {
		return nil, fmt.Errorf("media download disabled")
	}
	if content.Size > uint64(p.cfg.MediaMaxBytes) {
		return nil, fmt.Errorf("media too large: %d bytes (max %d)", content.Size, p.cfg.MediaMaxBytes)
	}

	dctx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()

	data, err := p.downloader.Download(dctx, content.Media)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	if int64(len(data)) > p.cfg.MediaMaxBytes {
		return nil, fmt.Errorf("media too large: %d bytes (max %d)", len(data), p.cfg.MediaMaxBytes)
	}

	return &whatsapp.MediaAttachment{
		MimeType: content.MimeType,
		FileName: content.FileName,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
	}, nil
}

// deliver entrega o payload a cada sink em paralelo; cada sink controla o próprio timeout
func (p *Processor) deliver(ctx context.Context, payload *whatsapp.WebhookPayload) {
	var wg sync.WaitGroup
	for _, sink := range p.sinks {
		wg.Add(1)
		go func(sink whatsapp.EventSink) {
			defer wg.Done()
			if err := sink.Deliver(ctx, payload); err != nil {
				p.logger.WithError(err).WithFields(map[string]interface{}{
					"sink":      sink.Name(),
					"messageId": payload.MessageID,
				}).Error().Msg("Failed to deliver inbound message")
				return
			}
			p.logger.WithFields(map[string]interface{}{
				"sink":      sink.Name(),
				"messageId": payload.MessageID,
				"type":      payload.Type,
			}).Debug().Msg("Inbound message delivered")
		}(sink)
	}
	wg.Wait()
}

func (p *Processor) observe(outcome string) {
	if p.recorder != nil {
		p.recorder.ObserveInbound(outcome)
	}
}
