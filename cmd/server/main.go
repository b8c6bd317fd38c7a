package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-access-control/backend/internal/audit"
	auditrepo "campus-access-control/backend/internal/audit/repository"
	authsvc "campus-access-control/backend/internal/auth/service"
	"campus-access-control/backend/internal/config"
	"campus-access-control/backend/internal/db"
	directoryrepo "campus-access-control/backend/internal/directory/repository"
	guardrepo "campus-access-control/backend/internal/guard/repository"
	"campus-access-control/backend/internal/httpapi"
	presencerepo "campus-access-control/backend/internal/presence/repository"
	presencesvc "campus-access-control/backend/internal/presence/service"
	"campus-access-control/backend/internal/security"
	sessionrepo "campus-access-control/backend/internal/session/repository"
	sessionsvc "campus-access-control/backend/internal/session/service"
	"campus-access-control/backend/internal/telemetry"
	telemetryotel "campus-access-control/backend/internal/telemetry/otel"
	"campus-access-control/backend/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "campus-access-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	// Access events go to Kafka when brokers are configured, otherwise to
	// OTel Logs so the feed is never silently dropped.
	var emitter telemetry.EventEmitter
	if brokers := cfg.AccessKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.AccessKafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		if kp != nil {
			defer kp.Close()
			emitter = kp
		}
	}
	if emitter == nil {
		emitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	sessions := sessionrepo.NewPostgresRepository(database)
	presence := presencerepo.NewPostgresRepository(database)
	directory := directoryrepo.NewPostgresRepository(database)
	guards := guardrepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)

	registry := sessionsvc.NewRegistry(sessions)
	ledger := presencesvc.NewLedger(presence, directory)
	auth := authsvc.NewAuthService(guards, hasher, tokens)
	auditLogger := audit.NewLogger(audits, httpapi.ClientIP)

	sweeper := sessionsvc.NewSweeper(sessions, sessionsvc.SweeperConfig{
		StaleAfter: cfg.StaleAfter(),
		Interval:   cfg.SweepInterval(),
	}, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:           logger,
		Addr:             cfg.HTTPAddr,
		Auth:             auth,
		Registry:         registry,
		Ledger:           ledger,
		Directory:        directory,
		Tokens:           tokens,
		AuditLog:         auditLogger,
		AuditRepo:        audits,
		Emitter:          emitter,
		DB:               database,
		OverdueThreshold: cfg.Overdue(),
	})

	go func() {
		logger.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Println("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}

	// Let in-flight async emits drain before tearing down exporters.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Printf("otel shutdown: %v", err)
	}
	logger.Println("HTTP server stopped")
}
