package session

import "context"

// Connector estabelece a conexão subjacente
type Connector interface {
	// Connect inicia a conexão; sem sessão persistida emite desafios (QR)
	Connect(ctx context.Context) error

	// Reconnect derruba e refaz a conexão
	Reconnect(ctx context.Context) error
}

// Store guarda as credenciais persistidas da sessão
type Store interface {
	// Reset apaga os dados persistidos, forçando um novo pareamento
	Reset(ctx context.Context) error
}

// Restarter reinicia o processo (ou a conexão) após um reset destrutivo
type Restarter interface {
	Restart(reason string)
}

// RestarterFunc adapta funções para Restarter
type RestarterFunc func(reason string)

func (f RestarterFunc) Restart(reason string) {
	f(reason)
}

// PresenceCanceller cancela todos os timers de presença pendentes
type PresenceCanceller interface {
	CancelAll() int
}
