package domain

import (
	"math"
	"time"
)

// Product — товар каталога с конечным остатком.
// Ядро оформления читает цену и остаток и запрашивает списания;
// владельцем записи остаётся каталог.
type Product struct {
	ID string
	// SKU — внешний артикул товара.
	SKU string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Quantity — доступный остаток. Никогда не опускается ниже нуля.
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockDecrement — агрегированное списание остатка по одному товару.
// На одно оформление выпускается ровно одно списание на товар,
// даже если товар встречается в нескольких позициях запроса.
type StockDecrement struct {
	ProductID string
	Qty       int32
}

// Validate проверяет корректность списания перед отправкой в каталог.
func (d StockDecrement) Validate() []error {
	var errs []error

	if d.ProductID == "" {
		errs = append(errs, ErrItemProductRequired)
	}
	if d.Qty <= 0 {
		errs = append(errs, ErrItemQtyInvalid)
	}

	return errs
}

// AggregateDecrements сворачивает позиции запроса в списания по товарам:
// количество суммируется, порядок следования — по первому вхождению товара.
// Суммирование идёт в int64; итог, не помещающийся в int32, насыщается до
// MaxInt32 — заниженное из-за переполнения списание могло бы пройти проверку
// остатка, которую честная сумма не проходит.
func AggregateDecrements(requests []LineItemRequest) []StockDecrement {
	index := make(map[string]int, len(requests))
	ids := make([]string, 0, len(requests))
	totals := make([]int64, 0, len(requests))

	for _, req := range requests {
		if pos, ok := index[req.ProductID]; ok {
			totals[pos] += int64(req.Qty)
			continue
		}
		index[req.ProductID] = len(ids)
		ids = append(ids, req.ProductID)
		totals = append(totals, int64(req.Qty))
	}

	decrements := make([]StockDecrement, 0, len(ids))
	for i, id := range ids {
		qty := totals[i]
		if qty > math.MaxInt32 {
			qty = math.MaxInt32
		}
		decrements = append(decrements, StockDecrement{
			ProductID: id,
			Qty:       int32(qty),
		})
	}

	return decrements
}
