package connection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"wabridge/internal/domain/session"
	"wabridge/pkg/logger"
)

// Drivers aceitos para o store de sessão do whatsmeow
const (
	StoreSQLite   = "sqlite3"
	StorePostgres = "postgres"
)

// EventDispatcher recebe os eventos de ciclo de vida traduzidos
type EventDispatcher interface {
	Dispatch(evt session.Event)
}

// MessageHandler recebe as mensagens que chegam
type MessageHandler interface {
	HandleMessage(evt *events.Message)
}

// ManagerConfig define onde a sessão é persistida
type ManagerConfig struct {
	SessionDir  string
	StoreDriver string
	StoreDSN    string
}

// Manager liga o cliente whatsmeow ao controlador de sessão.
// Implementa session.Connector e session.Store.
type Manager struct {
	cfg       ManagerConfig
	ctx       context.Context
	container *sqlstore.Container
	client    *whatsmeow.Client
	handlerID uint32
	mutex     sync.RWMutex

	dispatcher EventDispatcher
	inbound    MessageHandler

	logger logger.Logger
	waLog  waLog.Logger
}

// NewManager abre o store de sessão e cria o cliente do primeiro device.
// ctx controla o tempo de vida dos canais de QR.
func NewManager(ctx context.Context, cfg ManagerConfig, log logger.Logger) (*Manager, error) {
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreSQLite
	}

	m := &Manager{
		cfg:    cfg,
		ctx:    ctx,
		logger: log.WithComponent("connection-manager"),
		waLog:  logger.NewWhatsAppLoggerAdapter(log.WithComponent("whatsmeow")),
	}

	dsn, err := m.storeDSN()
	if err != nil {
		return nil, err
	}

	container, err := sqlstore.New(ctx, cfg.StoreDriver, dsn, m.waLog.Sub("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	m.container = container

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	m.client = m.newClient(deviceStore)

	m.logger.WithFields(map[string]interface{}{
		"driver":     cfg.StoreDriver,
		"paired":     deviceStore.ID != nil,
		"sessionDir": cfg.SessionDir,
	}).Info().Msg("Session store opened")

	return m, nil
}

func (m *Manager) storeDSN() (string, error) {
	switch m.cfg.StoreDriver {
	case StoreSQLite:
		if m.cfg.SessionDir == "" {
			return "", fmt.Errorf("session dir is required for the %s store", StoreSQLite)
		}
		if err := os.MkdirAll(m.cfg.SessionDir, 0o700); err != nil {
			return "", fmt.Errorf("failed to create session dir: %w", err)
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(m.cfg.SessionDir, "session.db")), nil
	case StorePostgres:
		if m.cfg.StoreDSN == "" {
			return "", fmt.Errorf("store DSN is required for the %s store", StorePostgres)
		}
		return m.cfg.StoreDSN, nil
	default:
		return "", fmt.Errorf("unsupported session store driver %q", m.cfg.StoreDriver)
	}
}

func (m *Manager) newClient(deviceStore *store.Device) *whatsmeow.Client {
	client := whatsmeow.NewClient(deviceStore, m.waLog.Sub("client"))
	// reconexão é responsabilidade do Controller
	client.EnableAutoReconnect = false
	m.handlerID = client.AddEventHandler(m.handleEvent)
	return client
}

// Bind conecta o Manager ao controlador e ao processador de mensagens
func (m *Manager) Bind(dispatcher EventDispatcher, inbound MessageHandler) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.dispatcher = dispatcher
	m.inbound = inbound
}

// Client retorna o cliente whatsmeow atual
func (m *Manager) Client() *whatsmeow.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.client
}

// IsConnected verifica se o websocket está conectado
func (m *Manager) IsConnected() bool {
	client := m.Client()
	return client != nil && client.IsConnected()
}

// Connect conecta ao WhatsApp; sem device pareado inicia o fluxo de QR
func (m *Manager) Connect(ctx context.Context) error {
	client := m.Client()
	if client.IsConnected() {
		m.logger.Debug().Msg("Client already connected")
		return nil
	}

	if client.Store.ID == nil {
		m.logger.Info().Msg("Connecting new session - QR authentication required")

		qrChan, err := client.GetQRChannel(m.ctx)
		if err != nil {
			return session.NewLifecycleError("connect", fmt.Errorf("failed to get QR channel: %w", err))
		}
		go m.processQREvents(qrChan)
	} else {
		m.logger.WithField("jid", client.Store.ID.String()).Info().Msg("Connecting existing authenticated session")
	}

	if err := client.Connect(); err != nil {
		return session.NewLifecycleError("connect", err)
	}
	return nil
}

// Reconnect derruba a conexão e conecta novamente. Se o device foi
// removido (logout) um novo device é criado para um pareamento limpo.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mutex.Lock()
	m.client.Disconnect()
	if m.client.Store.ID == nil {
		m.client.RemoveEventHandler(m.handlerID)
		m.client = m.newClient(m.container.NewDevice())
		m.logger.Info().Msg("Device store recreated for new pairing")
	}
	m.mutex.Unlock()

	return m.Connect(ctx)
}

// Reset apaga os dados de sessão persistidos
func (m *Manager) Reset(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.client.Disconnect()

	if m.client.Store.ID != nil {
		if err := m.client.Store.Delete(ctx); err != nil {
			return session.NewLifecycleError("reset", err)
		}
	}

	if m.cfg.StoreDriver == StoreSQLite {
		if err := m.container.Close(); err != nil {
			m.logger.WithError(err).Warn().Msg("Failed to close session store")
		}
		if err := os.RemoveAll(m.cfg.SessionDir); err != nil {
			return session.NewLifecycleError("reset", err)
		}
	}

	m.logger.Warn().Msg("Session data deleted")
	return nil
}

// Logout desloga o device e segue o caminho de desconexão
func (m *Manager) Logout(ctx context.Context) error {
	client := m.Client()
	if client.Store.ID == nil {
		return session.ErrNotConnected
	}
	if err := client.Logout(ctx); err != nil {
		return session.NewLifecycleError("logout", err)
	}
	m.dispatch(session.Disconnected("logout"))
	return nil
}

// Close desconecta e fecha o store
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.client != nil {
		m.client.Disconnect()
	}
	if err := m.container.Close(); err != nil {
		m.logger.WithError(err).Warn().Msg("Failed to close session store")
	}
	m.logger.Info().Msg("Connection manager closed")
}

// processQREvents traduz os eventos do canal de QR
func (m *Manager) processQREvents(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			m.dispatch(session.ChallengeIssued(evt.Code))
		case "success":
			m.logger.Info().Msg("QR code authentication successful")
		case "timeout":
			m.logger.Warn().Msg("QR code expired")
			m.dispatch(session.AuthFailed("qr timeout"))
			// whatsmeow desconecta após o timeout sem emitir Disconnected
			m.dispatch(session.Disconnected("qr timeout"))
		case "error":
			m.logger.WithError(evt.Error).Error().Msg("QR code error")
			m.dispatch(session.AuthFailed(fmt.Sprintf("qr error: %v", evt.Error)))
		default:
			m.logger.WithField("event", evt.Event).Warn().Msg("QR pairing failed")
			m.dispatch(session.AuthFailed(evt.Event))
		}
	}
}

// handleEvent traduz os eventos do whatsmeow
func (m *Manager) handleEvent(rawEvt interface{}) {
	switch evt := rawEvt.(type) {
	case *events.PairSuccess:
		m.logger.WithField("jid", evt.ID.String()).Info().Msg("Device paired")
		m.dispatch(session.Authenticated())
	case *events.PairError:
		m.dispatch(session.AuthFailed(fmt.Sprintf("pair error: %v", evt.Error)))
	case *events.Connected:
		m.dispatch(session.Authenticated())
		m.dispatch(session.Ready())
	case *events.Disconnected:
		m.dispatch(session.Disconnected("connection lost"))
	case *events.StreamReplaced:
		m.dispatch(session.Disconnected("stream replaced"))
	case *events.LoggedOut:
		m.dispatch(session.Disconnected(fmt.Sprintf("logged out: %v", evt.Reason)))
	case *events.ConnectFailure:
		m.dispatch(session.Disconnected(fmt.Sprintf("connect failure: %v", evt.Reason)))
	case *events.TemporaryBan:
		m.dispatch(session.Disconnected(fmt.Sprintf("temporary ban: %v", evt.Code)))
	case *events.Message:
		m.mutex.RLock()
		inbound := m.inbound
		m.mutex.RUnlock()
		if inbound != nil {
			inbound.HandleMessage(evt)
		}
	}
}

func (m *Manager) dispatch(evt session.Event) {
	m.mutex.RLock()
	dispatcher := m.dispatcher
	m.mutex.RUnlock()

	if dispatcher == nil {
		m.logger.WithField("event", evt.Kind).Warn().Msg("Session event dropped, no dispatcher bound")
		return
	}
	dispatcher.Dispatch(evt)
}
