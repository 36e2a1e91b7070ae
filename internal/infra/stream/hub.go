// Package stream transmite as transições da sessão para clientes websocket.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	clientBuffer = 32
)

// Tipos de mensagem enviados ao cliente
const (
	TypeSnapshot = "snapshot"
	TypeChange   = "change"
)

// Message é o envelope enviado em cada frame
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type client struct {
	send chan Message
}

// Hub mantém os clientes conectados e distribui as transições
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	snapshot func() session.Snapshot
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewHub cria um hub; snapshot fornece o estado inicial enviado a cada cliente
func NewHub(snapshot func() session.Snapshot, log logger.Logger) *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// a rota já exige API key
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log.WithComponent("session-stream"),
	}
}

// OnChange distribui a transição; clientes com fila cheia perdem o evento
func (h *Hub) OnChange(change session.Change) {
	msg := Message{Type: TypeChange, Data: change}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn().Msg("Stream client too slow, change dropped")
		}
	}
}

// Clients retorna o número de clientes conectados
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP faz o upgrade e mantém a conexão até o cliente sair
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug().Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// registra antes de ler o snapshot para não perder transições no intervalo
	c := &client{send: make(chan Message, clientBuffer)}
	h.register(c)
	defer h.unregister(c)

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Type: TypeSnapshot, Data: h.snapshot()}); err != nil {
		return
	}

	done := make(chan struct{})
	go h.readLoop(conn, done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop só consome frames de controle; fecha done quando o cliente sai
func (h *Hub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.WithField("clients", n).Debug().Msg("Stream client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.WithField("clients", n).Debug().Msg("Stream client disconnected")
}
