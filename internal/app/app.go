package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/freelance-jobs/internal/config"
	"github.com/ignatzorin/freelance-jobs/internal/db"
	"github.com/ignatzorin/freelance-jobs/internal/http/router"
	"github.com/ignatzorin/freelance-jobs/internal/infrastructure/persistence"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/outbox"
	"github.com/ignatzorin/freelance-jobs/internal/seed"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/storage"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/conversation"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/invitation"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/job"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/proposal"
	"github.com/ignatzorin/freelance-jobs/internal/ws"
)

const (
	cacheEvictInterval = time.Minute
	shutdownTimeout    = 10 * time.Second
)

// App: собранный граф зависимостей сервиса.
type App struct {
	cfg     *config.Config
	db      *sqlx.DB
	metrics *metrics.Collector

	jobs          *persistence.JobRepositoryAdapter
	proposals     *persistence.ProposalRepositoryAdapter
	invitations   *persistence.InvitationRepositoryAdapter
	users         *persistence.UserRepositoryAdapter
	notifications *persistence.NotificationRepositoryAdapter
	conversations *persistence.ConversationRepositoryAdapter
	messages      *persistence.MessageRepositoryAdapter
	outboxRepo    *persistence.OutboxRepositoryAdapter
	tx            *persistence.TxManager

	publisher *outbox.Publisher
	cache     *service.CacheService
	tokens    *service.TokenManager
}

// New подключается к базе и собирает репозитории и общие сервисы.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(registry)

	outboxRepo := persistence.NewOutboxRepositoryAdapter(conn)
	return &App{
		cfg:           cfg,
		db:            conn,
		metrics:       m,
		jobs:          persistence.NewJobRepositoryAdapter(conn),
		proposals:     persistence.NewProposalRepositoryAdapter(conn),
		invitations:   persistence.NewInvitationRepositoryAdapter(conn),
		users:         persistence.NewUserRepositoryAdapter(conn),
		notifications: persistence.NewNotificationRepositoryAdapter(conn),
		conversations: persistence.NewConversationRepositoryAdapter(conn),
		messages:      persistence.NewMessageRepositoryAdapter(conn),
		outboxRepo:    outboxRepo,
		tx:            persistence.NewTxManager(conn),
		publisher:     outbox.NewPublisher(outboxRepo, m),
		cache:         service.NewCacheService(),
		tokens:        service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL),
	}, nil
}

func (a *App) Close() {
	if err := a.db.Close(); err != nil {
		logger.Log.WithError(err).Warn("app: ошибка закрытия базы")
	}
}

// Migrate применяет миграции из MIGRATIONS_PATH.
func (a *App) Migrate(ctx context.Context) ([]string, error) {
	return db.RunMigrations(ctx, a.db, a.cfg.MigrationsPath)
}

// Serve поднимает HTTP API, хаб вебсокетов, диспетчер outbox и очистку кэша.
// Возвращается после отмены ctx или первой фатальной ошибки.
func (a *App) Serve(ctx context.Context) error {
	hub := ws.NewHub(a.metrics)
	var pusher service.Pusher = hub
	var bridge *ws.RedisBridge
	if a.cfg.RedisAddr != "" {
		rdb := ws.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword)
		defer rdb.Close()
		bridge = ws.NewRedisBridge(rdb, hub)
		pusher = bridge
		logger.Log.WithField("addr", a.cfg.RedisAddr).Info("app: push через redis pub/sub")
	}

	notifications := service.NewNotificationService(a.notifications, pusher)
	chat := service.NewChatService(a.conversations, a.messages, pusher)
	dispatcher := a.newDispatcher(notifications, chat)

	attachments, err := storage.NewAttachmentStorage(a.cfg.AttachmentsPath, a.cfg.MaxUploadSizeMB)
	if err != nil {
		return fmt.Errorf("app: не удалось подготовить хранилище вложений: %w", err)
	}

	engine := router.SetupRouter(a.cfg, a.handlers(hub, pusher, notifications, attachments), a.tokens)
	server := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.cache.Run(gctx, cacheEvictInterval)
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	if bridge != nil {
		g.Go(func() error {
			return bridge.Run(gctx)
		})
	}
	g.Go(func() error {
		logger.Log.WithField("port", a.cfg.HTTPPort).Info("app: HTTP сервер запущен")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: сервер завершился с ошибкой: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Dispatch запускает только диспетчер outbox. Push в вебсокеты идёт через
// redis, если он настроен, иначе уведомления только сохраняются.
func (a *App) Dispatch(ctx context.Context) error {
	var pusher service.Pusher
	if a.cfg.RedisAddr != "" {
		rdb := ws.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword)
		defer rdb.Close()
		pusher = ws.NewRedisBridge(rdb, nil)
	}

	dispatcher := a.newDispatcher(
		service.NewNotificationService(a.notifications, pusher),
		service.NewChatService(a.conversations, a.messages, pusher),
	)
	return dispatcher.Run(ctx)
}

// Seed загружает фикстуры через те же сценарии, что и API.
func (a *App) Seed(ctx context.Context, fixtures *seed.Fixtures) (*seed.Report, error) {
	seeder := seed.NewSeeder(
		a.users,
		job.NewCreateJobUseCase(a.jobs, a.users, a.tx, a.publisher, a.cache, a.metrics),
		proposal.NewSubmitProposalUseCase(a.proposals, a.jobs, a.tx, a.publisher, a.cache, a.metrics),
	)
	return seeder.Apply(ctx, fixtures)
}

func (a *App) newDispatcher(notifications *service.NotificationService, chat *service.ChatService) *outbox.Dispatcher {
	dispatcher := outbox.NewDispatcher(a.outboxRepo, outbox.Config{
		PollInterval: a.cfg.Outbox.PollInterval,
		BatchSize:    a.cfg.Outbox.BatchSize,
		MaxAttempts:  a.cfg.Outbox.MaxAttempts,
		RetryBase:    a.cfg.Outbox.RetryBase,
	}, a.metrics)
	outbox.RegisterDefaults(dispatcher, notifications, chat, a.users)
	return dispatcher
}

func (a *App) handlers(hub *ws.Hub, pusher service.Pusher, notifications *service.NotificationService, attachments *storage.AttachmentStorage) router.Handlers {
	return router.Handlers{
		Health: handler.NewHealthHandler(a.db),
		Auth:   handler.NewAuthHandler(service.NewAuthService(a.users, a.tokens)),
		Jobs: handler.NewJobHandler(handler.JobUseCases{
			Create:   job.NewCreateJobUseCase(a.jobs, a.users, a.tx, a.publisher, a.cache, a.metrics),
			Update:   job.NewUpdateJobUseCase(a.jobs, a.tx, a.cache),
			Delete:   job.NewDeleteJobUseCase(a.jobs, a.tx, a.cache),
			Get:      job.NewGetJobUseCase(a.jobs),
			List:     job.NewListJobsUseCase(a.jobs),
			ByClient: job.NewGetClientJobsUseCase(a.jobs),
			Featured: job.NewGetFeaturedJobsUseCase(a.jobs, a.cache),
			Stats:    job.NewGetJobStatsUseCase(a.jobs, a.cache),
			Overview: job.NewGetJobOverviewUseCase(a.jobs, a.proposals, a.invitations),
			Complete: job.NewCompleteJobUseCase(a.jobs, a.tx, a.publisher, a.cache, a.metrics),
			Cancel:   job.NewCancelJobUseCase(a.jobs, a.tx, a.publisher, a.cache, a.metrics),
		}),
		Proposals: handler.NewProposalHandler(
			proposal.NewSubmitProposalUseCase(a.proposals, a.jobs, a.tx, a.publisher, a.cache, a.metrics),
			proposal.NewAcceptProposalUseCase(a.proposals, a.jobs, a.tx, a.publisher, a.cache, a.metrics),
			proposal.NewRejectProposalUseCase(a.proposals, a.jobs, a.tx, a.publisher),
			proposal.NewListJobProposalsUseCase(a.proposals, a.jobs),
			proposal.NewListFreelancerProposalsUseCase(a.proposals),
		),
		Invitations: handler.NewInvitationHandler(
			invitation.NewSendInvitationsUseCase(a.jobs, a.users, a.invitations, a.tx, a.publisher, a.cfg.InvitationTTL, a.metrics),
			invitation.NewUpdateInvitationStatusUseCase(a.invitations, a.tx, a.publisher),
			invitation.NewGetJobInvitationsUseCase(a.jobs, a.invitations),
			invitation.NewGetFreelancerInvitationsUseCase(a.invitations),
			invitation.NewSuggestFreelancersUseCase(a.jobs, a.users, a.cache),
		),
		Notifications: handler.NewNotificationHandler(notifications),
		Conversations: handler.NewConversationHandler(
			conversation.NewListMyConversationsUseCase(a.conversations),
			conversation.NewSendMessageUseCase(a.conversations, a.messages, pusher),
			conversation.NewListMessagesUseCase(a.conversations, a.messages),
		),
		Attachments: handler.NewAttachmentHandler(attachments),
		WS:          handler.NewWSHandler(hub, a.tokens),
		Metrics:     a.metrics.Handler(),
	}
}
