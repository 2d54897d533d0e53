package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/app"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

const (
	envMetricsAddr         = "CHECKOUT_METRICS_ADDR"
	envStorageDriver       = "CHECKOUT_STORAGE_DRIVER"
	envPostgresDSN         = "CHECKOUT_POSTGRES_DSN"
	envPostgresAutoMigrate = "CHECKOUT_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "CHECKOUT_KAFKA_BROKERS"
	envKafkaGroupID        = "CHECKOUT_KAFKA_GROUP_ID"
	envKafkaMaxRetries     = "CHECKOUT_KAFKA_MAX_RETRIES"
	envSeedDemoData        = "CHECKOUT_SEED_DEMO_DATA"
)

// envLookup абстрагирует os.LookupEnv для тестируемости.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных
// окружения. Непригодные значения не прерывают запуск: параметр остаётся
// со значением по умолчанию, а предупреждение возвращается вызывающему.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envPostgresDSN); ok && strings.TrimSpace(v) != "" {
		cfg.PostgresDSN = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}
	if v, ok := lookup(envKafkaGroupID); ok && strings.TrimSpace(v) != "" {
		cfg.KafkaGroupID = strings.TrimSpace(v)
	}
	if v, ok := lookup(envKafkaMaxRetries); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envKafkaMaxRetries, err))
		} else {
			cfg.KafkaMaxRetries = parsed
		}
	}
	if v, ok := lookup(envSeedDemoData); ok {
		if parsed, err := parseBool(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envSeedDemoData, err))
		} else {
			cfg.SeedDemoData = parsed
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value: %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, constraint string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value: %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d rejected: %s", value, constraint)
	}
	return value, nil
}

func main() {
	setupLogger()
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":      version.String(),
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
		"kafka":        cfg.KafkaBrokers != "",
	}).Info("запускаем checkout-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("checkout-service остановлен")
}
