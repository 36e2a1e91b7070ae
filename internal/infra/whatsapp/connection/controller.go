// Package connection controla o ciclo de vida da sessão WhatsApp.
package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wabridge/internal/domain/session"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

// ControllerConfig define limites e atrasos do controlador
type ControllerConfig struct {
	MaxAuthAttempts  int
	ResetDelay       time.Duration
	ReconnectDelay   time.Duration
	ReconnectTimeout time.Duration
	ResetTimeout     time.Duration
}

// DefaultControllerConfig retorna a configuração padrão
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		MaxAuthAttempts:  5,
		ResetDelay:       5 * time.Second,
		ReconnectDelay:   10 * time.Second,
		ReconnectTimeout: 60 * time.Second,
		ResetTimeout:     30 * time.Second,
	}
}

// Controller é a máquina de estados da sessão. Todas as mutações passam
// por Handle, sob o mesmo mutex; listeners são chamados fora do lock.
type Controller struct {
	cfg       ControllerConfig
	connector session.Connector
	store     session.Store
	restarter session.Restarter
	presence  session.PresenceCanceller
	clock     clock.Clock
	logger    logger.Logger

	mu             sync.Mutex
	snap           session.Snapshot
	reconnectTimer clock.Timer
	reconnectGen   uint64
	resetTimer     clock.Timer
	startedAt      time.Time

	listenersMu sync.RWMutex
	listeners   []func(session.Change)

	events chan session.Event
}

// NewController cria o controlador no estado Initializing
func NewController(
	cfg ControllerConfig,
	connector session.Connector,
	store session.Store,
	restarter session.Restarter,
	presence session.PresenceCanceller,
	clk clock.Clock,
	log logger.Logger,
) *Controller {
	if cfg.MaxAuthAttempts <= 0 {
		cfg.MaxAuthAttempts = DefaultControllerConfig().MaxAuthAttempts
	}
	now := clk.Now()
	return &Controller{
		cfg:       cfg,
		connector: connector,
		store:     store,
		restarter: restarter,
		presence:  presence,
		clock:     clk,
		logger:    log.WithComponent("session-controller"),
		snap: session.Snapshot{
			State:           session.StateInitializing,
			MaxAuthAttempts: cfg.MaxAuthAttempts,
			Since:           now,
		},
		startedAt: now,
		events:    make(chan session.Event, 64),
	}
}

// Subscribe registra um listener de transições
func (c *Controller) Subscribe(fn func(session.Change)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Dispatch enfileira um evento para o loop Run, preservando a ordem de chegada
func (c *Controller) Dispatch(evt session.Event) {
	c.events <- evt
}

// Run consome os eventos enfileirados até ctx ser cancelado
func (c *Controller) Run(ctx context.Context) {
	c.logger.Info().Msg("Session controller started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Session controller stopped")
			return
		case evt := <-c.events:
			c.Handle(evt)
		}
	}
}

// Handle aplica um evento de forma síncrona
func (c *Controller) Handle(evt session.Event) {
	var (
		change      *session.Change
		cancelTimer bool
	)

	c.mu.Lock()
	from := c.snap.State
	escalated := false

	switch evt.Kind {
	case session.EventChallenge:
		escalated = c.onChallengeLocked(evt)
	case session.EventAuthenticated:
		c.onAuthenticatedLocked()
	case session.EventAuthFailure:
		c.onAuthFailureLocked(evt)
	case session.EventReady:
		c.onReadyLocked()
		cancelTimer = true
	case session.EventDisconnected:
		c.onDisconnectedLocked(evt)
		cancelTimer = true
	default:
		c.mu.Unlock()
		c.logger.WithField("event", evt.Kind).Warn().Msg("Unknown session event ignored")
		return
	}

	if c.snap.State != from {
		c.snap.Since = c.clock.Now()
	}
	change = &session.Change{
		Event:     evt.Kind,
		From:      from,
		To:        c.snap.State,
		Escalated: escalated,
		Snapshot:  c.snapshotLocked(),
		At:        c.clock.Now(),
	}
	c.mu.Unlock()

	if cancelTimer && c.presence != nil {
		c.presence.CancelAll()
	}

	c.logger.WithFields(map[string]interface{}{
		"event":        evt.Kind,
		"from":         from,
		"to":           change.To,
		"authAttempts": change.Snapshot.AuthAttempts,
	}).Info().Msg("Session state changed")

	c.notify(*change)
}

func (c *Controller) onChallengeLocked(evt session.Event) bool {
	c.snap.AuthAttempts++
	c.snap.Authenticated = false
	c.snap.Ready = false
	c.snap.Challenge = &session.Challenge{Code: evt.Code, IssuedAt: c.clock.Now()}
	if c.snap.State != session.StateFailed {
		c.snap.State = session.StateAwaitingChallenge
	}

	if c.snap.AuthAttempts < c.cfg.MaxAuthAttempts {
		return false
	}

	c.snap.Escalations++
	c.logger.WithFields(map[string]interface{}{
		"authAttempts":    c.snap.AuthAttempts,
		"maxAuthAttempts": c.cfg.MaxAuthAttempts,
	}).Error().Msg("Authentication attempts limit reached, pairing needs attention")
	return true
}

func (c *Controller) onAuthenticatedLocked() {
	c.snap.Challenge = nil
	c.snap.AuthAttempts = 0
	c.snap.Authenticated = true
	c.snap.LastError = ""
	if c.snap.State != session.StateReady {
		c.snap.State = session.StateAuthenticating
	}
}

func (c *Controller) onAuthFailureLocked(evt session.Event) {
	c.snap.Authenticated = false
	c.snap.Ready = false
	c.snap.LastError = evt.Reason

	if c.snap.AuthAttempts < c.cfg.MaxAuthAttempts {
		if c.snap.State != session.StateFailed {
			c.snap.State = session.StateAwaitingChallenge
		}
		return
	}

	c.snap.State = session.StateFailed
	c.snap.Challenge = nil
	c.snap.LastError = fmt.Errorf("%w: %s", session.ErrAuthExhausted, evt.Reason).Error()
	c.stopReconnectLocked()

	if c.resetTimer != nil {
		return
	}
	reason := c.snap.LastError
	c.resetTimer = c.clock.AfterFunc(c.cfg.ResetDelay, func() { c.resetSession(reason) })
	c.snap.ResetPending = true

	c.logger.WithFields(map[string]interface{}{
		"authAttempts": c.snap.AuthAttempts,
		"resetDelayMs": c.cfg.ResetDelay.Milliseconds(),
	}).Error().Msg("Authentication exhausted, session reset scheduled")
}

func (c *Controller) onReadyLocked() {
	c.snap.Authenticated = true
	c.snap.Ready = true
	c.snap.Challenge = nil
	c.snap.AuthAttempts = 0
	c.snap.LastError = ""
	c.snap.State = session.StateReady
	c.stopReconnectLocked()
}

func (c *Controller) onDisconnectedLocked(evt session.Event) {
	c.snap.Authenticated = false
	c.snap.Ready = false
	c.snap.Challenge = nil
	c.snap.LastDisconnectReason = evt.Reason

	if c.snap.State == session.StateFailed {
		return
	}
	c.snap.State = session.StateDisconnected
	c.scheduleReconnectLocked()
}

func (c *Controller) scheduleReconnectLocked() {
	c.stopReconnectLocked()
	c.reconnectGen++
	gen := c.reconnectGen
	c.reconnectTimer = c.clock.AfterFunc(c.cfg.ReconnectDelay, func() { c.reconnect(gen) })
	c.snap.ReconnectPending = true
}

func (c *Controller) stopReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.reconnectGen++
	c.snap.ReconnectPending = false
}

// reconnect roda no disparo do timer de reconexão
func (c *Controller) reconnect(gen uint64) {
	c.mu.Lock()
	if gen != c.reconnectGen || c.snap.State == session.StateFailed {
		c.mu.Unlock()
		return
	}
	from := c.snap.State
	c.reconnectTimer = nil
	c.snap.ReconnectPending = false
	c.snap.State = session.StateReconnecting
	c.snap.Since = c.clock.Now()
	change := session.Change{
		Event:    session.EventReconnecting,
		From:     from,
		To:       session.StateReconnecting,
		Snapshot: c.snapshotLocked(),
		At:       c.clock.Now(),
	}
	c.mu.Unlock()

	c.logger.Info().Msg("Reconnecting session")
	c.notify(change)

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ReconnectTimeout)
	defer cancel()

	if err := c.connector.Reconnect(ctx); err != nil {
		c.logger.WithError(err).Warn().Msg("Reconnect failed, retrying later")

		c.mu.Lock()
		if c.snap.State == session.StateReconnecting {
			c.snap.LastError = session.NewLifecycleError("reconnect", err).Error()
			c.scheduleReconnectLocked()
		}
		c.mu.Unlock()
	}
}

// resetSession apaga os dados persistidos e reinicia o processo
func (c *Controller) resetSession(reason string) {
	c.logger.WithField("reason", reason).Warn().Msg("Resetting session data")

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ResetTimeout)
	defer cancel()

	if err := c.store.Reset(ctx); err != nil {
		c.logger.WithError(err).Error().Msg("Failed to reset session data")
	}

	c.mu.Lock()
	c.resetTimer = nil
	c.snap.ResetPending = false
	change := session.Change{
		Event:    session.EventReset,
		From:     c.snap.State,
		To:       c.snap.State,
		Snapshot: c.snapshotLocked(),
		At:       c.clock.Now(),
	}
	c.mu.Unlock()

	c.notify(change)
	c.restarter.Restart(reason)
}

// Stop cancela os timers pendentes do controlador
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopReconnectLocked()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
		c.snap.ResetPending = false
	}
}

// Snapshot retorna uma cópia do estado atual
func (c *Controller) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsReady implementa whatsapp.ReadinessGate
func (c *Controller) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Ready
}

// Uptime retorna há quanto tempo o controlador existe
func (c *Controller) Uptime() time.Duration {
	return c.clock.Since(c.startedAt)
}

func (c *Controller) snapshotLocked() session.Snapshot {
	s := c.snap
	if c.snap.Challenge != nil {
		ch := *c.snap.Challenge
		s.Challenge = &ch
	}
	return s
}

func (c *Controller) notify(change session.Change) {
	c.listenersMu.RLock()
	listeners := make([]func(session.Change), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(change)
	}
}
