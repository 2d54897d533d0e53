package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// productCatalogInMemory — in-memory реализация ProductCatalog.
// Один мьютекс на каталог делает пакетное списание атомарным: пока держим
// блокировку, никакое конкурентное оформление не видит промежуточных остатков.
type productCatalogInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductCatalog возвращает in-memory каталог для локальной разработки и тестов.
func NewProductCatalog() *productCatalogInMemory {
	return &productCatalogInMemory{
		items: make(map[string]domain.Product),
	}
}

// FindAllByID возвращает найденные товары; отсутствующие идентификаторы
// просто не попадают в результат.
func (c *productCatalogInMemory) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := c.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// ReserveStock атомарно списывает остатки по всему батчу или не списывает ничего.
// Сначала проверяем весь батч под блокировкой, затем применяем: при провале
// любой проверки карта остатков не меняется вовсе.
func (c *productCatalogInMemory) ReserveStock(_ context.Context, decrements []domain.StockDecrement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, decrement := range decrements {
		if errs := decrement.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid decrement for product %q: %v", decrement.ProductID, errs)
		}
		product, ok := c.items[decrement.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", decrement.ProductID, domain.ErrProductNotFound)
		}
		// Условное списание: остаток сверяется в момент записи, а не по
		// ранее прочитанному значению.
		if product.Quantity < decrement.Qty {
			return fmt.Errorf("product %s: %w", decrement.ProductID, domain.ErrStockConflict)
		}
	}

	now := time.Now().UTC()
	for _, decrement := range decrements {
		product := c.items[decrement.ProductID]
		product.Quantity -= decrement.Qty
		product.UpdatedAt = now
		c.items[decrement.ProductID] = product
	}

	return nil
}

// ReleaseStock возвращает ранее списанные остатки (компенсация).
func (c *productCatalogInMemory) ReleaseStock(_ context.Context, increments []domain.StockDecrement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, increment := range increments {
		if _, ok := c.items[increment.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", increment.ProductID, domain.ErrProductNotFound)
		}
	}

	now := time.Now().UTC()
	for _, increment := range increments {
		product := c.items[increment.ProductID]
		product.Quantity += increment.Qty
		product.UpdatedAt = now
		c.items[increment.ProductID] = product
	}

	return nil
}

// Quantity возвращает текущий остаток товара; удобно в тестах и health-проверках.
func (c *productCatalogInMemory) Quantity(id string) (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.items[id]
	if !ok {
		return 0, false
	}
	return product.Quantity, true
}

// Seed наполняет каталог; предназначен для тестов и демо-запуска.
func (c *productCatalogInMemory) Seed(products ...domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, product := range products {
		c.items[product.ID] = product
	}
}

var _ domain.ProductCatalog = (*productCatalogInMemory)(nil)
