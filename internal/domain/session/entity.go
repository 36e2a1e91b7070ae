package session

import "time"

// State representa o estado do ciclo de vida da sessão WhatsApp
type State string

const (
	StateInitializing      State = "initializing"
	StateAwaitingChallenge State = "awaiting_challenge"
	StateAuthenticating    State = "authenticating"
	StateReady             State = "ready"
	StateDisconnected      State = "disconnected"
	StateReconnecting      State = "reconnecting"
	StateFailed            State = "failed"
)

// Challenge é o artefato de pareamento (QR) pendente
type Challenge struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Snapshot é uma cópia imutável do estado da sessão.
// Ready implica Authenticated; Challenge só existe enquanto Authenticated é falso.
type Snapshot struct {
	State                State      `json:"state"`
	Authenticated        bool       `json:"authenticated"`
	Ready                bool       `json:"ready"`
	Challenge            *Challenge `json:"challenge,omitempty"`
	AuthAttempts         int        `json:"authAttempts"`
	MaxAuthAttempts      int        `json:"maxAuthAttempts"`
	Escalations          int        `json:"escalations"`
	ReconnectPending     bool       `json:"reconnectPending"`
	ResetPending         bool       `json:"resetPending"`
	LastDisconnectReason string     `json:"lastDisconnectReason,omitempty"`
	LastError            string     `json:"lastError,omitempty"`
	Since                time.Time  `json:"since"`
}

// HasChallenge indica se há um QR aguardando leitura
func (s Snapshot) HasChallenge() bool {
	return s.Challenge != nil
}

// Change descreve uma transição observada pelo controlador
type Change struct {
	Event     EventKind `json:"event"`
	From      State     `json:"from"`
	To        State     `json:"to"`
	Escalated bool      `json:"escalated,omitempty"`
	Snapshot  Snapshot  `json:"snapshot"`
	At        time.Time `json:"at"`
}
