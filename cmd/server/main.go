// Command server runs the LSMS backend: the student-record REST API,
// lecturer account directory, and the OTP login flow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/landmark-lsms/lsms-backend/config"
	"github.com/landmark-lsms/lsms-backend/internal/domain/admin"
	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/mail"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/persistence/blobfile"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/persistence/postgres"
	redisstore "github.com/landmark-lsms/lsms-backend/internal/infrastructure/persistence/redis"
	httpiface "github.com/landmark-lsms/lsms-backend/internal/interface/http"
	"github.com/landmark-lsms/lsms-backend/pkg/clock"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		AddCaller: cfg.App.Environment != config.EnvProduction,
	})

	log.Info("starting lsms-backend",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("storage_driver", cfg.Storage.Driver),
		logger.String("otp_store", cfg.Storage.OTPStore),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────────
	// Persistence
	// ─────────────────────────────────────────────────────────────────────────
	var (
		recordRepo   record.Repository
		lecturerRepo lecturer.Repository
		adminRepo    admin.Repository
		canonical    admin.CanonicalReader
		otpStore     otp.ChallengeStore
	)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.Host = cfg.Postgres.Host
		pgCfg.Port = cfg.Postgres.Port
		pgCfg.Database = cfg.Postgres.Database
		pgCfg.User = cfg.Postgres.User
		pgCfg.Password = cfg.Postgres.Password
		pgCfg.SSLMode = cfg.Postgres.SSLMode
		pgCfg.MaxConns = int32(cfg.Postgres.MaxConns)

		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer conn.Close()

		if err := conn.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}

		store := postgres.NewStore(conn, log)
		recordRepo, lecturerRepo, adminRepo, canonical = store, store, store, store
		otpStore = store

	default:
		store, err := blobfile.New(cfg.Storage.DataDir, log)
		if err != nil {
			return fmt.Errorf("blob store: %w", err)
		}
		recordRepo, lecturerRepo, adminRepo, canonical = store, store, store, store
		otpStore = store
	}

	if cfg.Storage.OTPStore == config.OTPStoreRedis {
		rCfg := redisstore.DefaultConfig()
		rCfg.Host = cfg.Redis.Host
		rCfg.Port = cfg.Redis.Port
		rCfg.Password = cfg.Redis.Password
		rCfg.DB = cfg.Redis.DB

		client, err := redisstore.NewClient(ctx, rCfg)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()

		otpStore = redisstore.NewChallengeStore(client, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Mail
	// ─────────────────────────────────────────────────────────────────────────
	var dispatcher mail.Dispatcher = mail.Noop{}
	if cfg.Mail.Enabled {
		mCfg := mail.DefaultConfig()
		mCfg.Host = cfg.Mail.Host
		mCfg.Port = cfg.Mail.Port
		mCfg.Username = cfg.Mail.Username
		mCfg.Password = cfg.Mail.Password
		mCfg.From = cfg.Mail.From
		mCfg.FromName = cfg.Mail.FromName
		dispatcher = mail.NewSMTP(mCfg, log)
	} else {
		log.Warn("mail dispatch disabled, outbound messages are dropped")
	}
	notifier := mail.NewNotifier(dispatcher, cfg.HTTP.LandingURL)

	// ─────────────────────────────────────────────────────────────────────────
	// Domain services
	// ─────────────────────────────────────────────────────────────────────────
	roster := record.NewRoster(recordRepo, log)
	crossCheck := record.NewCrossCheck(recordRepo)
	directory := lecturer.NewDirectory(lecturerRepo, notifier, log)
	adminSvc := admin.NewService(adminRepo, canonical, log)
	otpMgr := otp.NewManager(otpStore, directory, notifier, clock.System(), log).
		WithTTL(cfg.OTP.TTL)

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	srvCfg := httpiface.DefaultConfig()
	srvCfg.Host = cfg.HTTP.Host
	srvCfg.Port = cfg.HTTP.Port
	srvCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	srvCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	srvCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	srvCfg.EnableCORS = cfg.HTTP.EnableCORS
	srvCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins

	srv := httpiface.NewServer(srvCfg, httpiface.Dependencies{
		Roster:     roster,
		CrossCheck: crossCheck,
		Directory:  directory,
		Admin:      adminSvc,
		OTP:        otpMgr,
		Approvals:  notifier,
		Logger:     log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
