package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerLookup.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory справочник клиентов
// для локальной разработки и тестов.
func NewCustomerRepository() *customerRepositoryInMemory {
	return &customerRepositoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// FindByID возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// Seed наполняет справочник; предназначен для тестов и демо-запуска.
func (r *customerRepositoryInMemory) Seed(customers ...domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, customer := range customers {
		r.items[customer.ID] = customer
	}
}

var _ domain.CustomerLookup = (*customerRepositoryInMemory)(nil)
