// Мигратор схемы оформления заказов. Применяет и откатывает встроенные
// в бинарь SQL-миграции и показывает текущую версию схемы:
//
//	migrate -direction=up
//	migrate -direction=down -steps=1
//	migrate -direction=status
//
// DSN берётся из флага -dsn либо из CHECKOUT_POSTGRES_DSN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

const runTimeout = 30 * time.Second

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: CHECKOUT_POSTGRES_DSN)")
	flag.Parse()

	dsn = resolveDSN(dsn)
	if dsn == "" {
		fail("CHECKOUT_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	report, err := execute(ctx, store, direction, steps)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(report)
}

// resolveDSN предпочитает явный флаг, иначе окружение.
func resolveDSN(flagDSN string) string {
	if dsn := strings.TrimSpace(flagDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(os.Getenv("CHECKOUT_POSTGRES_DSN"))
}

// execute выполняет команду мигратора и возвращает строку отчёта.
func execute(ctx context.Context, store *postgres.Store, direction string, steps int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate down failed: %w", err)
		}
	case "status":
		// Отчёт общий для всех команд.
	default:
		return "", fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("migration status failed: %w", err)
	}
	return fmt.Sprintf("checkout schema: version=%d applied=%d", version, count), nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
