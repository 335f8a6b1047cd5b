package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"opsdesk/database"
	"opsdesk/entities/auth"
	"opsdesk/entities/budgets"
	"opsdesk/entities/chat"
	"opsdesk/entities/leads"
	"opsdesk/entities/tasks"
	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/middlewares"
	"opsdesk/notifications"
	"opsdesk/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

const (
	SHUTDOWN_TIMEOUT      = 15 * time.Second
	READ_HEADER_TIMEOUT   = 10 * time.Second
	MEMORY_QUEUE_SIZE     = 256
	RATE_LIMIT_WINDOW     = time.Minute
	NOTIFICATION_WORKER_N = 1
)

// app holds the process-wide connections.
type app struct {
	cfg    *utils.Config
	logger *slog.Logger
	mongo  *mongo.Client
	db     *mongo.Database
	mysql  *sql.DB
	redis  *redis.Client
	rabbit *notifications.RabbitMQ
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := utils.NewLogger(cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	if cfg.IsProduction() {
		logger.Warn("[ATENÇÃO] Rodando em ambiente de PRODUÇÃO!")
	} else {
		logger.Info("ambiente atual", "env", cfg.Env)
	}

	client, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		mongo:  client,
		db:     database.GetDB(client, cfg),
	}, nil
}

// connectOptional opens the optional backing services. Each one is skipped
// when its URI is not configured.
func (a *app) connectOptional(ctx context.Context) error {
	var err error
	if a.mysql, err = database.OpenMySQL(ctx, a.cfg.MySQLURI); err != nil {
		return err
	}
	if a.redis, err = database.OpenRedis(ctx, a.cfg.RedisURI); err != nil {
		return err
	}
	if a.cfg.AMQPURI != "" {
		if a.rabbit, err = notifications.NewRabbitMQ(a.cfg.AMQPURI, a.logger); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() {
	if a.rabbit != nil {
		a.rabbit.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.mysql != nil {
		a.mysql.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), database.MONGO_TIMEOUT)
	defer cancel()
	a.mongo.Disconnect(ctx)
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if err := database.EnsureIndexes(ctx, a.db); err != nil {
		return err
	}
	created, err := auth.SeedAdmin(ctx, users.NewMongoStore(a.db), a.cfg.AdminEmail, a.cfg.AdminPassword, a.logger)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", a.cfg.AdminEmail)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.connectOptional(ctx); err != nil {
		return err
	}

	setupCtx, cancel := context.WithTimeout(ctx, database.MONGO_TIMEOUT)
	defer cancel()
	if err := database.EnsureIndexes(setupCtx, a.db); err != nil {
		return err
	}

	userStore := users.NewMongoStore(a.db)
	if _, err := auth.SeedAdmin(setupCtx, userStore, a.cfg.AdminEmail, a.cfg.AdminPassword, a.logger); err != nil {
		a.logger.Error("could not seed admin account", "error", err)
	}

	var (
		queue  notifications.Queue
		worker notifications.Worker
	)
	if a.rabbit != nil {
		queue, worker = a.rabbit, a.rabbit
	} else {
		mq := notifications.NewMemoryQueue(MEMORY_QUEUE_SIZE, a.logger)
		queue, worker = mq, mq
	}

	var sender notifications.Sender = notifications.NewLogSender(a.logger)
	if a.cfg.Mail.Enabled() {
		sender = notifications.NewEmailSender(a.cfg.Mail)
	}
	dispatcher := notifications.NewDispatcher(queue, sender, a.logger.With("component", "notifications"))

	var limiter middlewares.Limiter = middlewares.NewLocalLimiter(a.cfg.RateLimitPerMin)
	if a.redis != nil {
		limiter = middlewares.NewRedisLimiter(a.redis, a.cfg.RateLimitPerMin, RATE_LIMIT_WINDOW)
	}

	var legacy budgets.LegacyLedger
	if a.mysql != nil {
		legacy = budgets.NewMySQLLedger(a.mysql)
	}

	proxies, err := middlewares.ParseTrustedProxies(a.cfg.TrustedProxies)
	if err != nil {
		return err
	}

	signer := identity.NewTokenSigner(a.cfg.JWTSecret, a.cfg.JWTTTL)

	handler := newRouter(routerDeps{
		cfg:      a.cfg,
		logger:   a.logger,
		verifier: signer,
		limiter:  limiter,
		proxies:  proxies,
		auth:     auth.NewHandler(userStore, signer, a.logger),
		users:    users.NewHandler(userStore, a.logger),
		leads: leads.NewHandler(
			leads.NewMongoLeadStore(a.db),
			leads.NewMongoStageStore(a.db),
			userStore,
			dispatcher,
			a.logger,
		),
		tasks:   tasks.NewHandler(tasks.NewMongoStore(a.db), userStore, a.logger),
		budgets: budgets.NewHandler(budgets.NewMongoStore(a.db), legacy, userStore, a.logger),
		chat:    chat.NewRelay(chat.NewMongoStore(a.db), userStore, signer, a.cfg.CORSOrigins, a.logger),
		ready: func(ctx context.Context) error {
			return a.mongo.Ping(ctx, nil)
		},
	})

	srv := &http.Server{
		Addr:              a.cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: READ_HEADER_TIMEOUT,
	}

	g, gctx := errgroup.WithContext(ctx)

	for range NOTIFICATION_WORKER_N {
		g.Go(func() error {
			return worker.Run(gctx, dispatcher.Handle)
		})
	}

	g.Go(func() error {
		a.logger.Info("Servidor iniciado", "addr", srv.Addr, "at", time.Now().Format(time.DateTime))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
