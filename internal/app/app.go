package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/service/placement"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

// Run собирает зависимости по конфигурации и держит сервис до отмены
// контекста: хранилище, сервис оформления, опциональный Kafka-ингресс
// и HTTP-сервер с метриками и health-чеками.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	var placer placement.Placer
	placementLogger := logger.WithField("layer", "placement")
	if kafkaProducer != nil {
		placer = placement.NewServiceWithKafka(deps.customers, deps.catalog, deps.orders, kafkaProducer, placementLogger)
	} else {
		placer = placement.NewService(deps.customers, deps.catalog, deps.orders, placementLogger)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.store.Ping(checkCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	consumer, _ := initPlacementConsumer(cfg, placer, kafkaProducer, logger)
	if consumer != nil {
		if err := consumer.Start(ctx); err != nil {
			shutdownHTTP(metricsSrv, logger)
			closeKafka(kafkaProducer, logger)
			return err
		}
	}

	<-ctx.Done()
	logger.Info("получен сигнал остановки, завершаем работу")
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop kafka consumer")
		}
	}
	shutdownHTTP(metricsSrv, logger)
	closeKafka(kafkaProducer, logger)
	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus
// вместе с health-эндпоинтами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
