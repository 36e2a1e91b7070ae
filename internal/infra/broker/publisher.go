// Package broker espelha mensagens recebidas e transições de sessão num exchange AMQP.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

const (
	KeyInboundMessage = "message.inbound"
	keySessionPrefix  = "session."
)

// Envelope é o corpo publicado no exchange
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// channel é o subconjunto de *amqp.Channel usado na publicação
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publica no exchange topic configurado
type Publisher struct {
	conn        *amqp.Connection
	openChannel func() (channel, error)
	exchange    string
	timeout     time.Duration
	logger      logger.Logger
}

// NewPublisher conecta ao broker e declara o exchange topic
func NewPublisher(url, exchange string, timeout time.Duration, log logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open broker channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(func() (channel, error) { return conn.Channel() }, exchange, timeout, log)
	p.conn = conn
	return p, nil
}

func newPublisher(open func() (channel, error), exchange string, timeout time.Duration, log logger.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		openChannel: open,
		exchange:    exchange,
		timeout:     timeout,
		logger:      log.WithComponent("broker-publisher"),
	}
}

var (
	_ whatsapp.EventSink          = (*Publisher)(nil)
	_ whatsapp.LifecyclePublisher = (*Publisher)(nil)
)

// Name identifica o sink nos logs
func (p *Publisher) Name() string {
	return "amqp"
}

// Deliver publica uma mensagem recebida
func (p *Publisher) Deliver(ctx context.Context, payload *whatsapp.WebhookPayload) error {
	return p.publish(ctx, KeyInboundMessage, payload.MessageID, Envelope{
		ID:         uuid.NewString(),
		Type:       KeyInboundMessage,
		OccurredAt: payload.Timestamp,
		Data:       payload,
	})
}

// PublishChange publica uma transição do ciclo de vida
func (p *Publisher) PublishChange(ctx context.Context, change session.Change) error {
	key := keySessionPrefix + string(change.To)
	return p.publish(ctx, key, "", Envelope{
		ID:         uuid.NewString(),
		Type:       key,
		OccurredAt: change.At,
		Data:       change,
	})
}

// OnChange publica a transição em background; usado como listener do controlador
func (p *Publisher) OnChange(change session.Change) {
	go func() {
		if err := p.PublishChange(context.Background(), change); err != nil {
			p.logger.WithError(err).WithField("event", change.Event).Warn().Msg("Failed to publish session change")
		}
	}()
}

func (p *Publisher) publish(ctx context.Context, key, correlationID string, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("failed to open broker channel: %w", err)
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if correlationID == "" {
		correlationID = env.ID
	}
	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.ID,
		CorrelationId: correlationID,
		Timestamp:     time.Now(),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"key":      key,
		"exchange": p.exchange,
	}).Debug().Msg("Published")
	return nil
}

// Close encerra a conexão com o broker
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
