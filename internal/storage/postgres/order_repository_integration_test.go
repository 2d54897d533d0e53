package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func buildOrderForIntegrationTest(customerID string) domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	items := []domain.LineItem{
		{ID: uuid.NewString(), ProductID: "product-1", Qty: 2, PriceMinor: 1000, CreatedAt: now},
		{ID: uuid.NewString(), ProductID: "product-2", Qty: 1, PriceMinor: 2500, CreatedAt: now.Add(time.Millisecond)},
	}
	return domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		AmountMinor: 4500,
		Items:       items,
		CreatedAt:   now,
	}
}

func TestOrderRepository_PostgresCreateAndGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	seedCustomerForIntegrationTest(t, store, domain.Customer{ID: "customer-1", Name: "Alice"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order := buildOrderForIntegrationTest("customer-1")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	loaded, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if loaded.CustomerID != "customer-1" || loaded.AmountMinor != 4500 {
		t.Fatalf("unexpected order: %+v", loaded)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
	if loaded.Items[0].ProductID != "product-1" || loaded.Items[0].PriceMinor != 1000 {
		t.Fatalf("unexpected first item: %+v", loaded.Items[0])
	}
	if errs := loaded.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("loaded order violates invariants: %v", errs)
	}
}

func TestOrderRepository_PostgresDuplicateCreate(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	seedCustomerForIntegrationTest(t, store, domain.Customer{ID: "customer-1", Name: "Alice"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order := buildOrderForIntegrationTest("customer-1")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := repo.Create(ctx, order); !errors.Is(err, domain.ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}
}

func TestOrderRepository_PostgresGetNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := repo.Get(ctx, uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_PostgresListByCustomer(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	seedCustomerForIntegrationTest(t, store, domain.Customer{ID: "customer-1", Name: "Alice"})
	seedCustomerForIntegrationTest(t, store, domain.Customer{ID: "customer-2", Name: "Bob"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Now().UTC().Truncate(time.Microsecond)
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		order := buildOrderForIntegrationTest("customer-1")
		order.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
		ids = append(ids, order.ID)
	}
	other := buildOrderForIntegrationTest("customer-2")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create other order: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, "customer-1", 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	// Свежие заказы первыми.
	if orders[0].ID != ids[2] || orders[2].ID != ids[0] {
		t.Fatalf("unexpected order of results: %+v", orders)
	}

	limited, err := repo.ListByCustomer(ctx, "customer-1", 2)
	if err != nil {
		t.Fatalf("list orders with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 orders with limit, got %d", len(limited))
	}
}
