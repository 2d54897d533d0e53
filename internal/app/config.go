package app

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// MetricsAddr — адрес HTTP-сервера с /metrics и health-эндпоинтами.
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пустая строка
	// отключает Kafka целиком (и события, и приём запросов).
	KafkaBrokers    string
	KafkaGroupID    string
	KafkaMaxRetries int

	// SeedDemoData заполняет in-memory хранилище демонстрационными
	// покупателями и товарами. Для postgres игнорируется.
	SeedDemoData bool
}

// DefaultConfig возвращает конфигурацию для локального запуска:
// in-memory хранилище с демо-данными и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaGroupID:        "checkout-service",
		KafkaMaxRetries:     3,
		SeedDemoData:        true,
	}
}
