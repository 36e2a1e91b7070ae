package session

import (
	"context"
	"time"

	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

// StatusSource fornece o estado do ciclo de vida
type StatusSource interface {
	Snapshot() session.Snapshot
	Uptime() time.Duration
}

// PresenceCounter informa quantas conversas têm presença ativa
type PresenceCounter interface {
	ActiveCount() int
}

// StatusResponse representa a resposta do status
type StatusResponse struct {
	State            session.State `json:"state"`
	Ready            bool          `json:"ready"`
	Authenticated    bool          `json:"authenticated"`
	HasQRCode        bool          `json:"has_qr_code"`
	AuthAttempts     int           `json:"auth_attempts"`
	MaxAuthAttempts  int           `json:"max_auth_attempts"`
	Escalations      int           `json:"escalations"`
	ReconnectPending bool          `json:"reconnect_pending"`
	ActivePresences  int           `json:"active_presences"`
	UptimeSeconds    int64         `json:"uptime_seconds"`
	LastDisconnect   string        `json:"last_disconnect_reason,omitempty"`
	LastError        string        `json:"last_error,omitempty"`
	Since            time.Time     `json:"since"`
}

// GetStatusUseCase implementa o caso de uso para obter o status da sessão
type GetStatusUseCase struct {
	source   StatusSource
	presence PresenceCounter
	logger   logger.Logger
}

// NewGetStatusUseCase cria uma nova instância do caso de uso
func NewGetStatusUseCase(source StatusSource, presence PresenceCounter, logger logger.Logger) *GetStatusUseCase {
	return &GetStatusUseCase{
		source:   source,
		presence: presence,
		logger:   logger.WithComponent("get-status-usecase"),
	}
}

// Execute monta o status atual; nunca falha
func (uc *GetStatusUseCase) Execute(_ context.Context) *StatusResponse {
	snap := uc.source.Snapshot()

	resp := &StatusResponse{
		State:            snap.State,
		Ready:            snap.Ready,
		Authenticated:    snap.Authenticated,
		HasQRCode:        snap.HasChallenge(),
		AuthAttempts:     snap.AuthAttempts,
		MaxAuthAttempts:  snap.MaxAuthAttempts,
		Escalations:      snap.Escalations,
		ReconnectPending: snap.ReconnectPending,
		UptimeSeconds:    int64(uc.source.Uptime().Seconds()),
		LastDisconnect:   snap.LastDisconnectReason,
		LastError:        snap.LastError,
		Since:            snap.Since,
	}
	if uc.presence != nil {
		resp.ActivePresences = uc.presence.ActiveCount()
	}

	uc.logger.WithField("state", snap.State).Debug().Msg("Session status requested")
	return resp
}
