package domain

import "context"

// CustomerLookup описывает справочник клиентов, которым владеет внешний сервис.
type CustomerLookup interface {
	// FindByID возвращает клиента или ErrCustomerNotFound, если его нет.
	FindByID(ctx context.Context, id string) (Customer, error)
}

// ProductCatalog описывает каталог товаров и операции над остатками.
type ProductCatalog interface {
	// FindAllByID выполняет один групповой запрос по списку идентификаторов.
	// Отсутствующие товары просто не попадают в результат — вызывающая сторона
	// обязана сверить длины сама.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)

	// ReserveStock атомарно списывает остатки по всем позициям батча или не
	// списывает ничего. Каждое списание условное: применяется только если
	// текущий остаток не меньше запрошенного количества. Проигрыш гонки —
	// ErrStockConflict, отсутствие товара — ErrProductNotFound.
	ReserveStock(ctx context.Context, decrements []StockDecrement) error

	// ReleaseStock возвращает ранее списанные остатки (компенсация).
	ReleaseStock(ctx context.Context, increments []StockDecrement) error
}

// OrderStore описывает требования к хранилищу заказов.
type OrderStore interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderExists, если запись с таким ID уже есть.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
}
