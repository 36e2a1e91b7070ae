package session

// EventKind identifica os eventos vindos da camada de conexão
type EventKind string

const (
	EventChallenge     EventKind = "qr"
	EventAuthenticated EventKind = "authenticated"
	EventAuthFailure   EventKind = "auth_failure"
	EventReady         EventKind = "ready"
	EventDisconnected  EventKind = "disconnected"

	// Eventos internos do controlador
	EventReconnecting EventKind = "reconnecting"
	EventReset        EventKind = "reset"
)

// Event é um evento de ciclo de vida. Code só é usado por EventChallenge,
// Reason por EventAuthFailure e EventDisconnected.
type Event struct {
	Kind   EventKind
	Code   string
	Reason string
}

// ChallengeIssued cria o evento de novo QR
func ChallengeIssued(code string) Event {
	return Event{Kind: EventChallenge, Code: code}
}

// Authenticated cria o evento de autenticação bem sucedida
func Authenticated() Event {
	return Event{Kind: EventAuthenticated}
}

// AuthFailed cria o evento de falha de autenticação
func AuthFailed(reason string) Event {
	return Event{Kind: EventAuthFailure, Reason: reason}
}

// Ready cria o evento de sessão pronta
func Ready() Event {
	return Event{Kind: EventReady}
}

// Disconnected cria o evento de desconexão
func Disconnected(reason string) Event {
	return Event{Kind: EventDisconnected, Reason: reason}
}
