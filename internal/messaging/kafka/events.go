package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События жизненного цикла оформления
	EventTypeOrderPlaced       EventType = "order.placed"
	EventTypePlacementRejected EventType = "placement.rejected"
	// EventTypeStockReleased публикуется при компенсирующем возврате остатка
	// после неудачной записи заказа.
	EventTypeStockReleased EventType = "stock.released"
)

// Topics для Kafka
const (
	// TopicPlacementRequests — входящие запросы на оформление заказов.
	TopicPlacementRequests = "checkout.placement.requests"
	// TopicOrderEvents — исходящие события оформления.
	TopicOrderEvents = "checkout.order.events"
	// TopicDeadLetterQueue — очередь для сообщений, которые не удалось обработать.
	TopicDeadLetterQueue = "checkout.dlq"
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// PlacementEvent представляет событие оформления заказа
type PlacementEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id,omitempty"`
	CustomerID  string                 `json:"customer_id"`
	AmountMinor int64                  `json:"amount_minor,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// PlaceOrderRequest — запрос на оформление заказа из топика placement requests
type PlaceOrderRequest struct {
	// RequestID нужен для сквозной трассировки запроса в логах и событиях.
	RequestID  string           `json:"request_id,omitempty"`
	CustomerID string           `json:"customer_id"`
	Items      []PlaceOrderItem `json:"items"`
}

// PlaceOrderItem — одна позиция входящего запроса
type PlaceOrderItem struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// NewPlacementEvent создает новое событие оформления
func NewPlacementEvent(eventType EventType, orderID, customerID string, metadata map[string]interface{}) *PlacementEvent {
	return &PlacementEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
