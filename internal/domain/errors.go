package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в запросе на оформление.
	ErrItemsRequired = errors.New("placement must contain at least one line item")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("line item product_id is required")
	// Ошибка при некорректном количестве товара в позиции (<= 0).
	ErrItemQtyInvalid = errors.New("line item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("line item price must be non-negative")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")

	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если запрошенный товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock — на момент валидации остатка товара не хватает на запрошенное количество.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockConflict — конкурентное оформление выкупило остаток между валидацией и резервированием.
	// В отличие от ErrInsufficientStock запрос безопасно повторить со свежими данными.
	ErrStockConflict = errors.New("stock reservation conflict")
	// ErrInvariantViolation сигнализирует о нарушении внутреннего инварианта конвейера:
	// сборка позиций увидела товар, которого нет в снимке каталога.
	// Это всегда баг вызывающего кода, а не пользовательская ошибка.
	ErrInvariantViolation = errors.New("placement invariant violation")
	// ErrOrderPersistence — запись заказа не удалась уже после успешного резервирования;
	// резерв при этом компенсируется.
	ErrOrderPersistence = errors.New("order persistence failed")

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists возвращается при попытке сохранить заказ с занятым ID.
	ErrOrderExists = errors.New("order already exists")
)

// IsRetryable сообщает, имеет ли смысл повторить оформление со свежими данными.
// Повторять безопасно только проигрыш гонки за остаток.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStockConflict)
}

// IsNotFound проверяет, относится ли ошибка к отсутствию клиента, товара или заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
