package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

// runtimeDependencies содержит хранилища, выбранные по конфигурации.
type runtimeDependencies struct {
	customers domain.CustomerLookup
	catalog   domain.ProductCatalog
	orders    domain.OrderStore

	// store не nil только для postgres; используется для health-чека
	// и закрытия подключения при остановке.
	store *postgres.Store
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return initMemoryDependencies(cfg, logger), nil
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initMemoryDependencies(cfg Config, logger *log.Entry) *runtimeDependencies {
	customers := memory.NewCustomerRepository()
	catalog := memory.NewProductCatalog()
	orders := memory.NewOrderRepository()

	if cfg.SeedDemoData {
		customers.Seed(
			domain.Customer{ID: "demo-customer-1", Name: "Alice", Email: "alice@example.com"},
			domain.Customer{ID: "demo-customer-2", Name: "Bob", Email: "bob@example.com"},
		)
		catalog.Seed(
			domain.Product{ID: "demo-product-1", SKU: "DEMO-1", PriceMinor: 1000, Quantity: 100},
			domain.Product{ID: "demo-product-2", SKU: "DEMO-2", PriceMinor: 2500, Quantity: 50},
			domain.Product{ID: "demo-product-3", SKU: "DEMO-3", PriceMinor: 499, Quantity: 10},
		)
		logger.Info("in-memory хранилище заполнено демо-данными")
	}

	return &runtimeDependencies{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
	}
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres storage driver requires PostgresDSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("миграции postgres применены")
	}

	return &runtimeDependencies{
		customers: postgres.NewCustomerRepository(store),
		catalog:   postgres.NewProductCatalog(store),
		orders:    postgres.NewOrderRepository(store),
		store:     store,
	}, nil
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
