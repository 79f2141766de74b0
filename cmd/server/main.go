// Command server runs the claim processing core. main only wires
// dependencies from configuration; all behavior lives under internal/.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"sinistra/internal/archive"
	"sinistra/internal/audit"
	"sinistra/internal/authz"
	claimshandler "sinistra/internal/claims/handler"
	claimsmetrics "sinistra/internal/claims/metrics"
	claimsservice "sinistra/internal/claims/service"
	claimsstore "sinistra/internal/claims/store"
	"sinistra/internal/contracts"
	contractcache "sinistra/internal/contracts/cache"
	"sinistra/internal/documents"
	httpapi "sinistra/internal/http"
	"sinistra/internal/notify"
	"sinistra/internal/platform/blob"
	"sinistra/internal/platform/config"
	"sinistra/internal/platform/httpserver"
	"sinistra/internal/platform/kafka"
	"sinistra/internal/platform/logger"
	"sinistra/internal/platform/redis"
	quittancehandler "sinistra/internal/quittance/handler"
	quittancemetrics "sinistra/internal/quittance/metrics"
	quittanceservice "sinistra/internal/quittance/service"
	quittancestore "sinistra/internal/quittance/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		claimStore     claimsstore.Store
		quittanceStore quittancestore.Store
		documentStore  documents.Store
		auditStore     audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		claimStore = claimsstore.NewPostgres(db)
		quittanceStore = quittancestore.NewPostgres(db)
		documentStore = documents.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("postgres persistence enabled")
	} else {
		claimStore = claimsstore.NewInMemory()
		quittanceStore = quittancestore.NewInMemory()
		documentStore = documents.NewInMemory()
		auditStore = audit.NewInMemory()
		log.Warn("running with in-memory stores, data is lost on restart")
	}

	var contractStore contracts.Store = contracts.NewInMemory()
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		contractStore = contractcache.New(contractStore, client, config.ContractViewTTL)
		log.Info("contract view cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.KafkaBrokers != "" {
		client, err := kafka.Connect(ctx, cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		kafkaNotifier := notify.NewKafka(client, cfg.KafkaTopic, log)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		log.Info("stakeholder notifications enabled", slog.String("topic", cfg.KafkaTopic))
	}

	blobs, err := blob.NewFilesystem(cfg.BlobRoot)
	if err != nil {
		return err
	}

	auditInbox := make(chan audit.Event, cfg.AuditQueueSize)
	auditor := audit.NewPublisher(auditStore, audit.WithInbox(auditInbox))
	auditWorker := audit.NewWorker(auditStore, auditInbox)
	archiveJobs := make(chan archive.Job, cfg.ArchiveQueueSize)
	guard := archive.NewGuard(claimStore, archiveJobs, log)
	archiveWorker := archive.NewWorker(claimStore,
		archive.NewJSONArtifact(claimStore, quittanceStore, blobs), archiveJobs, log)

	quittanceService := quittanceservice.New(quittanceStore, claimStore, notifier,
		auditor, quittancemetrics.New(), log)
	claimsService := claimsservice.New(claimStore, contractStore, quittanceService,
		guard, notifier, auditor, claimsmetrics.New(), log)
	documentService := documents.NewService(documentStore, claimStore, blobs, auditor, log)

	jwtService := authz.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httpapi.NewRouter(httpapi.Handlers{
		Claims:     claimshandler.New(claimsService, auditor, log),
		Quittances: quittancehandler.New(quittanceService, log),
		Documents:  documents.NewHandler(documentService, log),
	}, jwtService, log)

	srv := httpserver.New(cfg.Addr, router)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := archiveWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
