package postgres

import (
	"context"
	"testing"
	"time"
)

func migrationState(t *testing.T, ctx context.Context, store *Store) (int64, int) {
	t.Helper()

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	return version, count
}

func checkoutTableExists(t *testing.T, ctx context.Context, store *Store, table string) bool {
	t.Helper()

	var exists bool
	err := store.DB().QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, table).Scan(&exists)
	if err != nil {
		t.Fatalf("check table %s: %v", table, err)
	}
	return exists
}

func TestMigrator_CheckoutSchemaRoundTrip(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// Сбрасываем схему в ноль, чтобы прогон не зависел от прошлых тестов.
	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}
	if version, count := migrationState(t, ctx, store); version != 0 || count != 0 {
		t.Fatalf("state after reset: version=%d count=%d, want 0/0", version, count)
	}
	if checkoutTableExists(t, ctx, store, "orders") {
		t.Fatal("orders table must be gone after full rollback")
	}

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	if version, count := migrationState(t, ctx, store); version != 1 || count != 1 {
		t.Fatalf("state after up: version=%d count=%d, want 1/1", version, count)
	}
	if !checkoutTableExists(t, ctx, store, "orders") {
		t.Fatal("orders table must exist after migrate up")
	}

	// Повторный up ничего не меняет.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("idempotent migrate up: %v", err)
	}
	if version, count := migrationState(t, ctx, store); version != 1 || count != 1 {
		t.Fatalf("state after idempotent up: version=%d count=%d, want 1/1", version, count)
	}

	// down без шагов откатывает ровно одну миграцию.
	if err := store.MigrateDown(ctx, 0); err != nil {
		t.Fatalf("migrate down default step: %v", err)
	}
	if version, count := migrationState(t, ctx, store); version != 0 || count != 0 {
		t.Fatalf("state after down: version=%d count=%d, want 0/0", version, count)
	}

	// down на пустом состоянии — no-op.
	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down on empty state: %v", err)
	}

	// Возвращаем схему для остальных интеграционных тестов.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up restore: %v", err)
	}
}

func TestMigrator_NilStoreAndBadDirection(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := nilStore.MigrateUp(ctx, 0); err == nil {
		t.Fatal("MigrateUp on nil store must fail")
	}
	if err := nilStore.MigrateDown(ctx, 1); err == nil {
		t.Fatal("MigrateDown on nil store must fail")
	}
	if _, _, err := nilStore.MigrationStatus(ctx); err == nil {
		t.Fatal("MigrationStatus on nil store must fail")
	}

	store := openRawPostgresStoreForIntegrationTest(t)
	if err := store.migrate(ctx, migrationDirection("sideways"), 0); err == nil {
		t.Fatal("unknown migration direction must be rejected")
	}
}
