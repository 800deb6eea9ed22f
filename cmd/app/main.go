// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/account"
	"medstaff-dashboard/internal/infra/api"
	"medstaff-dashboard/internal/infra/api/apiv1"
	pg "medstaff-dashboard/internal/infra/db/postgres"
	httpapi "medstaff-dashboard/internal/infra/http"
	"medstaff-dashboard/internal/infra/i18n"
	"medstaff-dashboard/internal/infra/logging"
	"medstaff-dashboard/internal/infra/metrics"
	"medstaff-dashboard/internal/infra/persistence"
	red "medstaff-dashboard/internal/infra/redis"
	"medstaff-dashboard/internal/infra/sched"
	"medstaff-dashboard/internal/infra/security"
	"medstaff-dashboard/internal/infra/worker"
	"medstaff-dashboard/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (in-memory storage allowed)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Secrets.AWSSecretName != "" {
		sm, err := config.NewSecretsManagerClient(ctx)
		if err != nil {
			log.Fatalf("secrets manager: %v", err)
		}
		if err := config.ApplySecrets(ctx, cfg, sm); err != nil {
			log.Fatalf("secrets: %v", err)
		}
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Storage ----
	var (
		kv       repository.KeyValueStore
		purger   sched.Purger
		refCache repository.ReferenceCache
		auditLog repository.SubmissionLogRepository
		locker   *red.RedisLocker
		limiter  api.Limiter
		pool     *pgxpool.Pool
	)

	if cfg.Storage.Driver == config.StorageRedis {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		kv = red.NewKVStore(redisClient)
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
		refCache = red.NewReferenceCache(redisClient, cfg.Reference.TTL, cfg.Reference.MaxItems)
	}

	// Postgres backs the audit log whenever a URL is configured, and the snapshots
	// when it is the selected driver.
	if cfg.Database.URL != "" {
		pool, err = pg.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		auditLog = pg.NewSubmissionLogRepo(pool)
		if cfg.Storage.Driver == config.StoragePostgres {
			pgKV := pg.NewKVStore(pool)
			kv, purger = pgKV, pgKV
		}
	}

	if cfg.Storage.Driver == config.StorageMemory {
		memKV := persistence.NewMemoryKV()
		kv, purger = memKV, memKV
	}

	// ---- Snapshots ----
	var snapOpts []persistence.Option
	enc, err := security.NewOptional(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}
	if enc != nil {
		snapOpts = append(snapOpts, persistence.WithEncrypter(enc))
	} else {
		logger.Warn().Msg("security.encryption_key not set; snapshots are stored as plaintext")
	}
	snapshots := persistence.NewSnapshotStore(kv, logger, snapOpts...)

	// ---- Adapters ----
	accountClient := account.NewClient(cfg.Account, logger)
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.KYC.DefaultLanguage)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Use cases ----
	auditPool := worker.NewPool(cfg.KYC.AuditWorkers, logger)
	auditPool.Start(context.Background())

	auditUC := usecase.NewAuditUseCase(auditLog, auditPool, logger)
	refUC := usecase.NewReferenceUseCase(accountClient, refCache, logger)

	kycOpts := []usecase.KYCOption{
		usecase.WithRecorder(auditUC),
		usecase.WithReviewHook(func(ctx context.Context, userID string) {
			logging.With(ctx, logger).Info().Str("user_id", userID).Msg("kyc ready for review")
		}),
	}
	if locker != nil {
		kycOpts = append(kycOpts, usecase.WithSubmitGate(locker))
	}
	kycUC := usecase.NewKYCUseCase(accountClient, accountClient, snapshots, usecase.KYCConfig{
		RemoteTimeout:  cfg.KYC.RemoteTimeout,
		SessionIdleTTL: cfg.KYC.SessionIdleTTL,
		GateTTL:        cfg.KYC.SubmitLockTTL,
	}, logger, kycOpts...)

	// ---- HTTP ----
	errs := apiv1.NewErrorWriter(tr, logger)
	apiServer := apiv1.NewServer(apiv1.ServerDeps{
		KYC:              kycUC,
		Reference:        refUC,
		Audit:            auditUC,
		Translator:       tr,
		ReviewPath:       cfg.Server.ReviewPath,
		SubmitMiddleware: api.RateLimit(limiter, "kyc_submit", cfg.RateLimit.Submissions, cfg.RateLimit.Window, errs.Write, logger),
		Logger:           logger,
	})
	router := api.NewRouter(api.RouterDeps{
		API:            apiServer,
		Auth:           api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Metrics:        promhttp.Handler(),
		HandlerTimeout: cfg.KYC.RemoteTimeout + 5*time.Second,
		Logger:         logger,
	})
	server := httpapi.NewServer(cfg.Server, router, logger)

	// ---- Background jobs ----
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error {
		return sched.NewSessionReaper(cfg.KYC.ReapInterval, kycUC, logger).Run(gctx)
	})
	if purger != nil {
		g.Go(func() error {
			return sched.NewExpiryWorker(cfg.Janitor.Interval, purger, logger).Run(gctx)
		})
	}
	if pool != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				pg.ReportPoolStats(pool)
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
				}
			}
		})
	}

	logger.Info().
		Str("version", version).
		Str("storage", cfg.Storage.Driver).
		Bool("audit_log", auditLog != nil).
		Msg("medstaff dashboard started")

	// ---- Graceful shutdown ----
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("service stopped with error")
		kycUC.Shutdown()
		auditPool.Stop()
		os.Exit(1)
	}
	logger.Info().Msg("shutdown requested")
	kycUC.Shutdown()
	auditPool.Stop()
}
