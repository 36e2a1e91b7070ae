package app

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"wabridge/internal/app/config"
	"wabridge/internal/domain/message"
	"wabridge/internal/domain/session"
	"wabridge/internal/domain/whatsapp"
	"wabridge/internal/http/handlers"
	"wabridge/internal/http/router"
	"wabridge/internal/infra/broker"
	"wabridge/internal/infra/database"
	"wabridge/internal/infra/media"
	"wabridge/internal/infra/metrics"
	"wabridge/internal/infra/stream"
	"wabridge/internal/infra/whatsapp/connection"
	"wabridge/internal/infra/whatsapp/core"
	"wabridge/internal/infra/whatsapp/events"
	"wabridge/internal/infra/whatsapp/presence"
	"wabridge/internal/infra/whatsapp/services"
	messageUseCases "wabridge/internal/usecases/message"
	presenceUseCases "wabridge/internal/usecases/presence"
	sessionUseCases "wabridge/internal/usecases/session"
	"wabridge/pkg/clock"
	"wabridge/pkg/logger"
)

// retentionInterval é o intervalo entre limpezas do journal
const retentionInterval = time.Hour

// Container gerencia todas as dependências da aplicação
type Container struct {
	Config *config.Config
	Clock  clock.Clock

	// Database (nil sem DATABASE_URL)
	DB      *bun.DB
	Journal message.Repository

	// WhatsApp
	Manager    *connection.Manager
	Controller *connection.Controller
	Client     *core.Client
	Scheduler  *presence.Scheduler
	QRCodes    *connection.QRCodeManager
	Processor  *events.Processor

	// Integrações
	Security  whatsapp.SecurityService
	Webhook   *services.WebhookForwarder
	Publisher *broker.Publisher
	Metrics   *metrics.Metrics
	Hub       *stream.Hub

	// Handlers
	SessionHandler  *handlers.SessionHandler
	HealthHandler   *handlers.HealthHandler
	MessageHandler  *handlers.MessageHandler
	PresenceHandler *handlers.PresenceHandler

	Router *router.Router

	Logger logger.Logger
}

// NewContainer cria um novo container de dependências. restarter é chamado
// após o reset destrutivo da sessão.
func NewContainer(ctx context.Context, cfg *config.Config, restarter session.Restarter, log logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Clock:  clock.Real(),
		Logger: log.WithComponent("di-container"),
	}

	if err := c.initStorage(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initWhatsApp(ctx, restarter, log); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initIntegrations(log); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers(log)

	c.Router = router.New(cfg, log, c.Security, c.Metrics,
		c.SessionHandler, c.HealthHandler, c.MessageHandler, c.PresenceHandler)

	c.Logger.Info().Msg("Container initialized successfully")
	return c, nil
}

// initStorage abre o journal de mensagens: postgres quando configurado,
// senão memória com TTL
func (c *Container) initStorage(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.Journal = database.NewMemoryRepository(c.Config.Database.Retention)
		c.Logger.Info().Msg("Using in-memory message journal")
		return nil
	}

	db, err := database.NewDatabase(ctx, c.Config.Database.URL, c.Config.Database.Debug, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Journal = database.NewMessageRepository(db)
	return nil
}

// initWhatsApp monta conexão, agendador de presença e controlador de sessão
func (c *Container) initWhatsApp(ctx context.Context, restarter session.Restarter, log logger.Logger) error {
	cfg := c.Config

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewMetrics(cfg.Metrics.Namespace, nil)
	}

	manager, err := connection.NewManager(ctx, connection.ManagerConfig{
		SessionDir:  cfg.Session.Dir,
		StoreDriver: cfg.Session.StoreDriver,
		StoreDSN:    cfg.Session.StoreDSN,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize connection manager: %w", err)
	}
	c.Manager = manager
	c.Client = core.NewClient(manager, log)

	opts := []presence.Option{presence.WithClearTimeout(cfg.Presence.ClearTimeout)}
	if c.Metrics != nil {
		opts = append(opts, presence.WithRecorder(c.Metrics))
	}
	c.Scheduler = presence.NewScheduler(c.Client, c.Clock, log, opts...)

	c.Controller = connection.NewController(connection.ControllerConfig{
		MaxAuthAttempts:  cfg.Session.MaxAuthAttempts,
		ResetDelay:       cfg.Session.ResetDelay,
		ReconnectDelay:   cfg.Session.ReconnectDelay,
		ReconnectTimeout: cfg.Session.ReconnectTimeout,
		ResetTimeout:     connection.DefaultControllerConfig().ResetTimeout,
	}, manager, manager, restarter, c.Scheduler, c.Clock, log)

	c.QRCodes = connection.NewQRCodeManager(cfg.Session.QRTerminal, log)
	c.Controller.Subscribe(c.QRCodes.OnChange)
	if c.Metrics != nil {
		c.Controller.Subscribe(c.Metrics.OnChange)
	}
	c.Hub = stream.NewHub(c.Controller.Snapshot, log)
	c.Controller.Subscribe(c.Hub.OnChange)

	return nil
}

// initIntegrations monta os destinos das mensagens recebidas
func (c *Container) initIntegrations(log logger.Logger) error {
	cfg := c.Config

	c.Security = services.NewSecurityService(log)
	c.Webhook = services.NewWebhookForwarder(services.WebhookConfig{
		URL:     cfg.Webhook.URL,
		Secret:  cfg.Webhook.Secret,
		Timeout: cfg.Webhook.Timeout,
	}, c.Security, log)
	if cfg.Webhook.URL == "" {
		c.Logger.Warn().Msg("WEBHOOK_URL not set, inbound messages will not be forwarded")
	}

	sinks := []whatsapp.EventSink{c.Webhook}
	if cfg.Broker.URL != "" {
		publisher, err := broker.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.Timeout, log)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		c.Publisher = publisher
		sinks = append(sinks, publisher)
		c.Controller.Subscribe(publisher.OnChange)
	}

	c.Processor = events.NewProcessor(events.ProcessorConfig{
		MediaMaxBytes:   cfg.Webhook.MediaMaxBytes,
		DeliveryTimeout: c.Webhook.Timeout(),
	}, c.Journal, c.Client, c.Clock, log, sinks...)
	if c.Metrics != nil {
		c.Processor.SetRecorder(c.Metrics)
	}

	c.Manager.Bind(c.Controller, c.Processor)
	return nil
}

// initHandlers inicializa os casos de uso e os handlers
func (c *Container) initHandlers(log logger.Logger) {
	cfg := c.Config
	validator := services.NewValidator()

	model := presence.DefaultDurationModel()
	model.Min = cfg.Presence.MinTyping
	model.Max = cfg.Presence.MaxTyping

	deps := messageUseCases.Deps{
		Gate:      c.Controller,
		Conn:      c.Client,
		Simulator: messageUseCases.NewSimulator(c.Scheduler, model, c.Clock, log),
		Journal:   c.Journal,
		Validator: validator,
		Logger:    log,
	}
	if c.Metrics != nil {
		deps.Recorder = c.Metrics
	}

	c.MessageHandler = handlers.NewMessageHandler(
		messageUseCases.NewSendTextUseCase(deps),
		messageUseCases.NewSendReplyUseCase(deps),
		messageUseCases.NewSendReactionUseCase(deps),
		messageUseCases.NewSendMediaUseCase(deps,
			media.NewFetcher(cfg.Media.MaxBytes, cfg.Media.FetchTimeout, log),
			media.NewStickerConverter(log)),
		messageUseCases.NewSendLocationUseCase(deps),
		messageUseCases.NewSendContactUseCase(deps),
		log,
	)

	c.PresenceHandler = handlers.NewPresenceHandler(
		presenceUseCases.NewSetPresenceUseCase(c.Controller, c.Scheduler, validator, log),
		log,
	)

	c.SessionHandler = handlers.NewSessionHandler(
		sessionUseCases.NewGetStatusUseCase(c.Controller, c.Scheduler, log),
		sessionUseCases.NewGetQRCodeUseCase(c.QRCodes, log),
		sessionUseCases.NewLogoutUseCase(c.Manager, log),
		c.Hub,
		log,
	)

	c.HealthHandler = handlers.NewHealthHandler()
}

// Start inicia o loop do controlador, a limpeza do journal e a primeira conexão
func (c *Container) Start(ctx context.Context) {
	go c.Controller.Run(ctx)
	go database.RunRetention(ctx, c.Journal, c.Config.Database.Retention, retentionInterval, c.Logger)

	if err := c.Manager.Connect(ctx); err != nil {
		c.Logger.WithError(err).Error().Msg("Initial connection failed")
		c.Controller.Dispatch(session.Disconnected(fmt.Sprintf("initial connect: %v", err)))
	}
}

// Close libera as dependências na ordem inversa da criação
func (c *Container) Close() {
	if c.Controller != nil {
		c.Controller.Stop()
	}
	if c.Scheduler != nil {
		c.Scheduler.CancelAll()
	}
	if c.Processor != nil {
		c.Processor.Wait()
	}
	if c.Manager != nil {
		c.Manager.Close()
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.WithError(err).Warn().Msg("Failed to close broker publisher")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.WithError(err).Warn().Msg("Failed to close database")
		}
	}
}
