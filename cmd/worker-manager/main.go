// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"readiness-workers/internal/api"
	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/aws"
	"readiness-workers/internal/common/camunda"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/database"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"

	ar "readiness-workers/internal/workers/readiness/assess-readiness"
	irr "readiness-workers/internal/workers/readiness/index-readiness-report"
	nrr "readiness-workers/internal/workers/readiness/notify-readiness-report"
	srr "readiness-workers/internal/workers/readiness/store-readiness-report"
)

// Dependencies get this retry budget at startup.
var startupRetry = camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.NewStructured(logger.Options{Level: "info", Format: "json"})
		bootLog.Error("config load failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	log := logger.NewStructured(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker manager stopped with error", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	log.Info("worker manager stopped", nil)
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Tracing.ServiceName,
		TracingEnabled: cfg.Tracing.Enabled,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Warn("observability degraded", map[string]interface{}{"error": err})
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(sctx)
	}()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := camunda.Retry(ctx, startupRetry, log, "postgres connection", pg.Ping); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info("postgres connected", nil)

	// --- Elasticsearch ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := camunda.Retry(ctx, startupRetry, log, "elasticsearch connection", es.Ping); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	if err := es.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index, database.ReportIndexMapping); err != nil {
		return err
	}
	log.Info("elasticsearch connected", map[string]interface{}{"index": cfg.Database.Elasticsearch.Index})

	checks := map[string]api.HealthCheck{
		"zeebe":         zeebe.HealthCheck,
		"postgres":      pg.Ping,
		"elasticsearch": es.Ping,
	}

	// --- Redis (assessment cache) ---
	var cache assessment.Cache
	if cfg.Scoring.CacheEnabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		if err := camunda.Retry(ctx, startupRetry, log, "redis connection", rdb.Ping); err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		cache = assessment.NewRedisCache(rdb.Client)
		checks["redis"] = rdb.Ping
		log.Info("redis connected", nil)
	}

	// --- Assessment service ---
	svc, err := assessment.Build(cfg.Scoring.PolicyFile, cfg.Scoring.ScheduleVersion, cache, obs, log, assessment.Options{
		Strict:   cfg.Scoring.Strict,
		CacheTTL: time.Duration(cfg.Scoring.CacheTTL) * time.Second,
	})
	if err != nil {
		return err
	}
	log.Info("assessment service ready", map[string]interface{}{
		"schedule":   svc.Schedule().Version,
		"policyFile": cfg.Scoring.PolicyFile,
		"strict":     cfg.Scoring.Strict,
		"cache":      cache != nil,
	})

	// --- Workers ---
	zc := zeebe.Zeebe()
	var workers []worker.JobWorker
	start := func(taskType string, handler camunda.HandlerFunc) {
		if jw := camunda.StartWorker(zc, taskType, config.GetWorkerConfig(cfg, taskType), handler, log); jw != nil {
			workers = append(workers, jw)
		}
	}

	assess := ar.NewHandler(ar.LoadConfig(config.GetWorkerConfig(cfg, ar.TaskType)), svc, obs, log)
	start(ar.TaskType, assess.Handle)

	store := srr.NewHandler(srr.LoadConfig(config.GetWorkerConfig(cfg, srr.TaskType)), pg.DB, obs, log)
	start(srr.TaskType, store.Handle)

	index := irr.NewHandler(irr.LoadConfig(config.GetWorkerConfig(cfg, irr.TaskType), cfg.Database.Elasticsearch), es.Client, obs, log)
	start(irr.TaskType, index.Handle)

	// AWS credentials are only resolved when notifications run.
	if config.IsWorkerEnabled(cfg, nrr.TaskType) {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.Region)
		if err != nil {
			return err
		}
		notifyCfg, rejected := nrr.LoadConfig(config.GetWorkerConfig(cfg, nrr.TaskType), cfg.Notifications)
		if len(rejected) > 0 {
			log.Warn("ignoring malformed notification recipients", map[string]interface{}{"recipients": rejected})
		}
		notify := nrr.NewHandler(notifyCfg, aws.NewSESClient(awsCfg), aws.NewSNSClient(awsCfg), obs, log)
		start(nrr.TaskType, notify.Handle)
	}

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- HTTP API ---
	server := api.NewServer(svc, api.Options{
		Version:      cfg.App.Version,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Checks:       checks,
	}, log).HTTPServer(cfg.HTTP)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful shutdown ---
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping workers", nil)
	case err := <-serverErr:
		log.Error("http server failed", map[string]interface{}{"error": err})
	}

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(sctx)
}
