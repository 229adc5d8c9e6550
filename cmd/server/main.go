package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/JayaSurya08-dev/Nimbus/internal/cache"
	"github.com/JayaSurya08-dev/Nimbus/internal/config"
	"github.com/JayaSurya08-dev/Nimbus/internal/es"
	"github.com/JayaSurya08-dev/Nimbus/internal/google"
	"github.com/JayaSurya08-dev/Nimbus/internal/handlers"
	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	"github.com/JayaSurya08-dev/Nimbus/internal/mailer"
	"github.com/JayaSurya08-dev/Nimbus/internal/mykafka"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
	"github.com/JayaSurya08-dev/Nimbus/internal/service"
	"github.com/JayaSurya08-dev/Nimbus/internal/service/search"
	"github.com/JayaSurya08-dev/Nimbus/internal/storage"
	httpserver "github.com/JayaSurya08-dev/Nimbus/internal/transport/http"
)

const janitorInterval = time.Hour

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	bg := logging.IntoContext(ctx, logger)

	db, err := config.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("db_close_error", "error", err)
			}
		}
	}()

	store, err := storage.NewS3(ctx, storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	var mail service.Mailer = &mailer.LogMailer{From: cfg.MailFrom, Log: logger}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		logger.Warn("smtp_unconfigured", "reason", "SMTP_HOST is empty, reset links are only logged")
	}

	var verifier service.GoogleVerifier
	if cfg.GoogleClientID != "" {
		v, err := google.NewVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			return fmt.Errorf("init google verifier: %w", err)
		}
		verifier = v
	} else {
		logger.Warn("google_login_disabled", "reason", "GOOGLE_CLIENT_ID is empty")
	}

	var producer service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka_close_error", "error", err)
			}
		}()
		producer = prod
	}

	var index service.FileIndex
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			return fmt.Errorf("init elasticsearch: %w", err)
		}
		idx := search.NewIndex(client, cfg.ESIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure search index: %w", err)
		}
		index = idx
	}

	tokens := service.NewTokenService(repo.NewTokenRepo(db), cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	resets := cache.NewMemory(cfg.ResetTokenTTL)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); resets.Start(ctx) }()
	go func() { defer wg.Done(); tokens.RunJanitor(bg, janitorInterval) }()

	deps := &httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{Auth: &service.AuthService{
			Users:         repo.NewUserRepo(db),
			Tokens:        tokens,
			Resets:        resets,
			Mailer:        mail,
			Google:        verifier,
			Producer:      producer,
			ResetURLBase:  cfg.ResetURLBase,
			ResetTokenTTL: cfg.ResetTokenTTL,
		}},
		FileHandler: &handlers.FileHandler{Files: &service.FileService{
			Files:        repo.NewFileRepo(db),
			Store:        store,
			Index:        index,
			Producer:     producer,
			PublicBucket: cfg.S3PublicBucket,
			SignedURLTTL: cfg.SignedURLTTL,
		}},
		Tokens: tokens,
	}
	e := httpserver.New(deps, httpserver.Options{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		CSRF:        cfg.CSRFEnabled,
		BodyLimit:   "100M",
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	stop()
	wg.Wait()
	logger.Info("shutdown_complete")
	return nil
}
