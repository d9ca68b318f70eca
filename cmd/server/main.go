package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "council-vote/docs"
	"council-vote/internal/config"
	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/domain/operator"
	api "council-vote/internal/http"
	"council-vote/internal/mailer"
	"council-vote/internal/metrics"
	"council-vote/internal/platform/clock"
	"council-vote/internal/platform/database"
	jwtpkg "council-vote/internal/platform/jwt"
	"council-vote/internal/platform/logger"
	redisclient "council-vote/internal/platform/redis"
	"council-vote/internal/repository/postgres"
	"council-vote/internal/worker"
)

// @title           Council Vote API
// @version         1.0
// @description     Closed-ballot motion voting with automatic completion and results notification
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "council-vote: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	api.SetLogger(log)

	db, err := database.NewPostgres(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("database migrations applied")
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	sender, err := newSender(cfg, rdb, log)
	if err != nil {
		return err
	}

	clk := clock.System{}
	motionRepo := postgres.NewMotionRepo(db)
	ballotRepo := postgres.NewBallotRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)

	motionSvc := motion.NewService(motionRepo, clk)
	ballotSvc := ballot.NewService(ballotRepo, motionRepo, clk, cfg.Auth.SigningSecret, log.Named("ballot"))
	notificationSvc := notification.NewService(notificationRepo, clk, log.Named("notification"))
	operatorSvc := operator.NewService(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash)
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, administrator login is disabled")
	}

	sweeper := worker.NewSweeper(motionRepo, clk, log.Named("sweeper"))
	delivery := worker.NewDelivery(notificationRepo, motionRepo, ballotRepo, sender, worker.DeliveryConfig{
		Enabled:              cfg.Notify.Enabled,
		PropertyManagerName:  cfg.Notify.PropertyManagerName,
		PropertyManagerEmail: cfg.Notify.PropertyManagerEmail,
		BaseURL:              cfg.Notify.BaseURL,
		Timeout:              cfg.Worker.DeliveryTimeout,
		MaxAttempts:          cfg.Notify.MaxAttempts,
	}, clk, log.Named("delivery"))

	if n, err := notificationSvc.Backfill(ctx); err != nil {
		log.Warn("notification backfill failed", zap.Error(err))
	} else if n > 0 {
		log.Info("enqueued notifications for previously closed motions", zap.Int("count", n))
	}

	var lease worker.Lease = worker.NewLocalLease()
	if rdb != nil {
		lease = worker.NewRedisLease(rdb, "council-vote:lease:", log.Named("lease"))
	}
	runner := worker.NewRunner(lease, cfg.Worker.LeaseTTL, log.Named("runner"))

	router := api.NewRouter(api.Deps{
		Motions:           motionSvc,
		Ballots:           ballotSvc,
		Notifications:     notificationSvc,
		Operators:         operatorSvc,
		Sweeper:           sweeper,
		Delivery:          delivery,
		Mailer:            sender,
		JWT:               jwtpkg.NewManager(cfg.Auth.JWTSecret, ""),
		TokenTTL:          cfg.Auth.TokenTTL,
		BaseURL:           cfg.Notify.BaseURL,
		DB:                db,
		Redis:             redisPinger(rdb),
		VoteRatePerMinute: cfg.Server.VoteRatePerMinute,
		VoteBurst:         cfg.Server.VoteBurst,
		DeliveryBatchSize: cfg.Worker.DeliveryBatchSize,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		runner.Run(ctx,
			worker.Task{
				Name:     "sweep",
				Interval: cfg.Worker.SweepInterval,
				Run: func(ctx context.Context) error {
					_, err := sweeper.SweepOnce(ctx)
					return err
				},
			},
			worker.Task{
				Name:     "deliver",
				Interval: cfg.Worker.DeliveryInterval,
				Run: func(ctx context.Context) error {
					_, err := delivery.ProcessDueOnce(ctx, cfg.Worker.DeliveryBatchSize)
					return err
				},
			},
		)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	<-workerDone
	log.Info("server stopped")
	return nil
}

// newSender picks the mail transport named by MAIL_TRANSPORT.
func newSender(cfg *config.Config, rdb *goredis.Client, log *zap.Logger) (notification.Sender, error) {
	switch cfg.Mail.Transport {
	case "smtp":
		if cfg.Mail.SMTPHost == "" {
			return nil, errors.New("MAIL_TRANSPORT=smtp requires SMTP_HOST")
		}
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPass,
			FromName: cfg.Mail.FromName,
			FromAddr: cfg.Mail.FromAddress,
		}), nil
	case "queue":
		if rdb == nil {
			return nil, errors.New("MAIL_TRANSPORT=queue requires REDIS_ADDR")
		}
		return mailer.NewQueueSender(rdb, cfg.Mail.QueueKey, log.Named("mail-queue")), nil
	default:
		return mailer.NewLogSender(log.Named("mail")), nil
	}
}

type redisReadiness struct{ client *goredis.Client }

func (p redisReadiness) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func redisPinger(rdb *goredis.Client) api.Pinger {
	if rdb == nil {
		return nil
	}
	return redisReadiness{client: rdb}
}
