package placement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// assembleLineItems собирает неизменяемые позиции заказа.
// Порядок позиций повторяет порядок запросов — он значим для чеков и выдачи.
// Цена каждой позиции берётся из снимка каталога, снятого валидацией,
// и позже не перечитывается.
func assembleLineItems(snapshot map[string]domain.Product, requests []domain.LineItemRequest) ([]domain.LineItem, error) {
	now := time.Now().UTC()
	items := make([]domain.LineItem, 0, len(requests))

	for _, req := range requests {
		product, ok := snapshot[req.ProductID]
		if !ok {
			// Валидация обязана была отсечь такой запрос.
			// Дисциплине вызывающего кода не доверяем.
			return nil, fmt.Errorf("product %s missing from catalog snapshot: %w", req.ProductID, domain.ErrInvariantViolation)
		}

		items = append(items, domain.LineItem{
			ID:         uuid.NewString(),
			ProductID:  product.ID,
			Qty:        req.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		})
	}

	return items, nil
}
