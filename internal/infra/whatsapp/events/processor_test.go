package events

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"wabridge/internal/domain/message"
	"wabridge/internal/domain/whatsapp"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

type fakeSink struct {
	mu       sync.Mutex
	payloads []*whatsapp.WebhookPayload
	err      error
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Deliver(_ context.Context, payload *whatsapp.WebhookPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

type fakeJournal struct {
	mu      sync.Mutex
	records map[string]*message.Record
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{records: make(map[string]*message.Record)}
}

func (j *fakeJournal) Save(_ context.Context, r *message.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records[r.ID] = r
	return nil
}

func (j *fakeJournal) GetByID(_ context.Context, id string) (*message.Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	r, ok := j.records[id]
	if !ok {
		return nil, message.ErrMessageNotFound
	}
	return r, nil
}

func (j *fakeJournal) DeleteOlderThan(context.Context, time.Time) (int, error) { return 0, nil }

type fakeDownloader struct {
	data []byte
	err  error
}

func (d *fakeDownloader) Download(context.Context, whatsmeow.DownloadableMessage) ([]byte, error) {
	return d.data, d.err
}

func newTestProcessor(dl Downloader, sinks ...whatsapp.EventSink) (*Processor, *fakeJournal) {
	journal := newFakeJournal()
	cfg := ProcessorConfig{MediaMaxBytes: 1024, DeliveryTimeout: 15 * time.Second}
	p := NewProcessor(cfg, journal, dl, clock.NewFake(time.Unix(1700000000, 0)), logger.SetupForTesting(), sinks...)
	return p, journal
}

func textEvent(id string, chat, sender types.JID, fromMe bool, text string) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:     chat,
				Sender:   sender,
				IsFromMe: fromMe,
				IsGroup:  chat.Server == types.GroupServer,
			},
			ID:        id,
			PushName:  "Maria",
			Timestamp: time.Unix(1700000000, 0),
		},
		Message: &waE2E.Message{Conversation: proto.String(text)},
	}
}

var (
	alice = types.NewJID("5511988887777", types.DefaultUserServer)
	group = types.NewJID("120363025246125486", types.GroupServer)
)

func TestProcessForwardsText(t *testing.T) {
	sink := &fakeSink{}
	p, journal := newTestProcessor(nil, sink)

	payload := p.Process(context.Background(), textEvent("MSG1", alice, alice, false, "oi"))
	if payload == nil {
		t.Fatalf("Process() = nil, want payload")
	}
	if payload.Body != "oi" || payload.Type != TypeText || payload.From != alice.String() {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.TimeoutMs != 15000 {
		t.Fatalf("TimeoutMs = %d, want 15000", payload.TimeoutMs)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d payloads, want 1", sink.count())
	}
	if _, err := journal.GetByID(context.Background(), "MSG1"); err != nil {
		t.Fatalf("message not journaled: %v", err)
	}
}

func TestProcessIgnoresStatusBroadcast(t *testing.T) {
	sink := &fakeSink{}
	p, journal := newTestProcessor(nil, sink)

	if payload := p.Process(context.Background(), textEvent("S1", types.StatusBroadcastJID, alice, false, "story")); payload != nil {
		t.Fatalf("Process() = %+v, want nil", payload)
	}
	if sink.count() != 0 {
		t.Fatalf("status broadcast was forwarded")
	}
	if _, err := journal.GetByID(context.Background(), "S1"); !errors.Is(err, message.ErrMessageNotFound) {
		t.Fatalf("status broadcast was journaled")
	}
}

func TestProcessIgnoresSelfAuthored(t *testing.T) {
	sink := &fakeSink{}
	p, journal := newTestProcessor(nil, sink)

	if payload := p.Process(context.Background(), textEvent("ME1", alice, alice, true, "hello")); payload != nil {
		t.Fatalf("Process() = %+v, want nil", payload)
	}
	if sink.count() != 0 {
		t.Fatalf("self-authored message was forwarded")
	}
	// continua no diário para permitir resposta e reação
	rec, err := journal.GetByID(context.Background(), "ME1")
	if err != nil || !rec.FromMe {
		t.Fatalf("journal = %+v, %v", rec, err)
	}
}

func TestProcessGroupAndQuoted(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newTestProcessor(nil, sink)

	evt := textEvent("G1", group, alice, false, "")
	evt.Message = &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
		Text:        proto.String("concordo"),
		ContextInfo: &waE2E.ContextInfo{StanzaID: proto.String("ORIG")},
	}}

	payload := p.Process(context.Background(), evt)
	if !payload.IsGroup || payload.QuotedID != "ORIG" || payload.Body != "concordo" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestProcessInlinesMedia(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newTestProcessor(&fakeDownloader{data: []byte("jpegdata")}, sink)

	evt := textEvent("IMG1", alice, alice, false, "")
	evt.Message = &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
		Caption:    proto.String("foto"),
		Mimetype:   proto.String("image/jpeg"),
		FileLength: proto.Uint64(8),
	}}

	payload := p.Process(context.Background(), evt)
	if !payload.HasMedia || payload.Media == nil {
		t.Fatalf("payload = %+v, want inline media", payload)
	}
	if payload.Media.Data != base64.StdEncoding.EncodeToString([]byte("jpegdata")) {
		t.Fatalf("media data = %q", payload.Media.Data)
	}
	if payload.Body != "foto" || payload.Type != TypeImage {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestProcessMediaTooLarge(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newTestProcessor(&fakeDownloader{data: []byte("x")}, sink)

	evt := textEvent("DOC1", alice, alice, false, "")
	evt.Message = &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
		FileName:   proto.String("big.pdf"),
		Mimetype:   proto.String("application/pdf"),
		FileLength: proto.Uint64(4096),
	}}

	payload := p.Process(context.Background(), evt)
	if payload.Media != nil || payload.MediaError == "" || !payload.HasMedia {
		t.Fatalf("payload = %+v, want media error", payload)
	}
	if sink.count() != 1 {
		t.Fatalf("message with oversized media must still be forwarded")
	}
}

func TestHandleMessageIsAsync(t *testing.T) {
	sink := &fakeSink{err: errors.New("boom")}
	p, _ := newTestProcessor(nil, sink)

	p.HandleMessage(textEvent("A1", alice, alice, false, "oi"))
	p.Wait()

	if sink.count() != 1 {
		t.Fatalf("sink received %d payloads, want 1", sink.count())
	}
}

func TestMapContentReaction(t *testing.T) {
	c := MapContent(&waE2E.Message{ReactionMessage: &waE2E.ReactionMessage{
		Text: proto.String("👍"),
	}})
	if c.Type != TypeReaction || c.Body != "👍" || c.HasMedia() {
		t.Fatalf("MapContent = %+v", c)
	}
	if MapContent(nil).Type != TypeUnknown {
		t.Fatalf("nil message must map to unknown")
	}
}
