package placement

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// validate выполняет фазу чистого чтения: проверяет существование клиента,
// выбирает все запрошенные товары одним групповым запросом и сверяет остатки
// с единым снимком каталога. Побочных эффектов нет.
func (s *service) validate(ctx context.Context, customerID string, requests []domain.LineItemRequest) (domain.Customer, map[string]domain.Product, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Customer{}, nil, fmt.Errorf("find customer %s: %w", customerID, err)
	}

	ids := uniqueProductIDs(requests)
	products, err := s.catalog.FindAllByID(ctx, ids)
	if err != nil {
		return domain.Customer{}, nil, fmt.Errorf("find products: %w", err)
	}

	snapshot := make(map[string]domain.Product, len(products))
	for _, product := range products {
		snapshot[product.ID] = product
	}

	// Групповая выборка молча пропускает отсутствующие идентификаторы,
	// поэтому сверяем каждый запрошенный id явно.
	for _, id := range ids {
		if _, ok := snapshot[id]; !ok {
			return domain.Customer{}, nil, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
		}
	}

	// Достаточность остатков проверяем по суммарному количеству на товар
	// и только против уже снятого снимка: повторное чтение между проверками
	// дало бы внутренне противоречивый результат. Суммы считаем в int64,
	// чтобы набор позиций не мог переполнить int32 и проскочить проверку
	// с обёрнутым значением.
	totals := make(map[string]int64, len(ids))
	for _, req := range requests {
		totals[req.ProductID] += int64(req.Qty)
	}
	for _, id := range ids {
		product := snapshot[id]
		if totals[id] > int64(product.Quantity) {
			return domain.Customer{}, nil, fmt.Errorf(
				"product %s: requested %d, available %d: %w",
				id, totals[id], product.Quantity, domain.ErrInsufficientStock,
			)
		}
	}

	return customer, snapshot, nil
}

// uniqueProductIDs возвращает идентификаторы товаров без дубликатов,
// сохраняя порядок первого вхождения.
func uniqueProductIDs(requests []domain.LineItemRequest) []string {
	seen := make(map[string]struct{}, len(requests))
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.ProductID]; ok {
			continue
		}
		seen[req.ProductID] = struct{}{}
		ids = append(ids, req.ProductID)
	}
	return ids
}
