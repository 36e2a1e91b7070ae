package stream

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

func TestHubStreamsSnapshotAndChanges(t *testing.T) {
	hub := NewHub(func() session.Snapshot {
		return session.Snapshot{State: session.StateAwaitingChallenge}
	}, logger.SetupForTesting())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type string           `json:"type"`
		Data session.Snapshot `json:"data"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if first.Type != TypeSnapshot || first.Data.State != session.StateAwaitingChallenge {
		t.Fatalf("first message = %+v", first)
	}

	// o cliente é registrado antes do snapshot, mas Dial retorna antes disso
	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.OnChange(session.Change{Event: session.EventReady, From: session.StateAuthenticating, To: session.StateReady})

	var next struct {
		Type string         `json:"type"`
		Data session.Change `json:"data"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if next.Type != TypeChange || next.Data.To != session.StateReady {
		t.Fatalf("change message = %+v", next)
	}
}

func TestHubDeliversChangeRacingSnapshot(t *testing.T) {
	var (
		hub  *Hub
		once sync.Once
	)
	// a transição acontece enquanto o snapshot é montado
	hub = NewHub(func() session.Snapshot {
		once.Do(func() {
			hub.OnChange(session.Change{Event: session.EventReady, From: session.StateAuthenticating, To: session.StateReady})
		})
		return session.Snapshot{State: session.StateAuthenticating}
	}, logger.SetupForTesting())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if first.Type != TypeSnapshot {
		t.Fatalf("first type = %q, want snapshot", first.Type)
	}

	var next struct {
		Type string         `json:"type"`
		Data session.Change `json:"data"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("change lost: %v", err)
	}
	if next.Type != TypeChange || next.Data.To != session.StateReady {
		t.Fatalf("change message = %+v", next)
	}
}
