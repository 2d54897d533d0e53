package domain

import "time"

// LineItemRequest — входная позиция запроса на оформление заказа.
// Живёт только в рамках одного вызова PlaceOrder.
type LineItemRequest struct {
	// ProductID — идентификатор товара в каталоге.
	ProductID string
	// Qty — запрошенное количество единиц товара.
	Qty int32
}

// Validate проверяет корректность одной позиции запроса.
func (r LineItemRequest) Validate() []error {
	var errs []error

	if r.ProductID == "" {
		errs = append(errs, ErrItemProductRequired)
	}
	if r.Qty <= 0 {
		errs = append(errs, ErrItemQtyInvalid)
	}

	return errs
}

// ValidatePlacementRequest проверяет форму запроса на оформление целиком,
// до обращения к каким-либо внешним сервисам.
func ValidatePlacementRequest(customerID string, requests []LineItemRequest) []error {
	var errs []error

	if customerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(requests) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, req := range requests {
		errs = append(errs, req.Validate()...)
	}

	return errs
}

// LineItem представляет одну позицию заказа.
// После сборки позиция неизменяема: цена зафиксирована на момент валидации.
type LineItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — идентификатор товара, существовавшего на момент валидации.
	ProductID string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу, снятая со снимка каталога при валидации.
	PriceMinor int64
	// CreatedAt фиксирует момент сборки позиции.
	CreatedAt time.Time
}

// Order агрегирует результат успешного оформления.
// Создаётся ровно один раз и ядром оформления больше не изменяется.
type Order struct {
	ID          string
	CustomerID  string
	AmountMinor int64
	Items       []LineItem
	CreatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
