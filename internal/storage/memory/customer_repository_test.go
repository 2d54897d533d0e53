package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestCustomerRepository_FindByID(t *testing.T) {
	repo := NewCustomerRepository()
	repo.Seed(domain.Customer{ID: "customer-1", Name: "Alice", Email: "alice@example.com"})

	customer, err := repo.FindByID(context.Background(), "customer-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if customer.Name != "Alice" {
		t.Fatalf("unexpected customer: %+v", customer)
	}

	if _, err := repo.FindByID(context.Background(), "ghost"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
