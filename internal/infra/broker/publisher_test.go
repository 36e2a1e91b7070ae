package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/logger"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	out    []published
	err    error
	closed int
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.out = append(c.out, published{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func newTestPublisher(ch *fakeChannel) *Publisher {
	return newPublisher(func() (channel, error) { return ch, nil }, "wabridge", time.Second, logger.SetupForTesting())
}

func TestDeliverInbound(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)

	payload := &whatsapp.WebhookPayload{Event: whatsapp.EventMessage, MessageID: "M1", Body: "oi"}
	if err := p.Deliver(context.Background(), payload); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if len(ch.out) != 1 || ch.closed != 1 {
		t.Fatalf("published %d, closed %d, want 1/1", len(ch.out), ch.closed)
	}
	got := ch.out[0]
	if got.exchange != "wabridge" || got.key != KeyInboundMessage || got.msg.CorrelationId != "M1" {
		t.Fatalf("published = %+v", got)
	}

	var env struct {
		Type string                  `json:"type"`
		Data whatsapp.WebhookPayload `json:"data"`
	}
	if err := json.Unmarshal(got.msg.Body, &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Type != KeyInboundMessage || env.Data.Body != "oi" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestPublishChangeRoutingKey(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)

	change := session.Change{Event: session.EventReady, From: session.StateAuthenticating, To: session.StateReady}
	if err := p.PublishChange(context.Background(), change); err != nil {
		t.Fatalf("PublishChange() error = %v", err)
	}
	if ch.out[0].key != "session.ready" {
		t.Fatalf("key = %q, want session.ready", ch.out[0].key)
	}
}

func TestPublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newTestPublisher(ch)

	if err := p.Deliver(context.Background(), &whatsapp.WebhookPayload{MessageID: "M2"}); err == nil {
		t.Fatalf("Deliver() error = nil, want error")
	}
	if ch.closed != 1 {
		t.Fatalf("channel not closed after failed publish")
	}
}
