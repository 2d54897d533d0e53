package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// Placer описывает интерфейс оформления заказов.
type Placer interface {
	PlaceOrder(ctx context.Context, customerID string, requests []domain.LineItemRequest) (domain.Order, error)
}

// service реализует конвейер оформления: Validate → Assemble → Reserve → Write.
// Каждый шаг при ошибке обрывает оформление целиком; после неудачного шага
// не остаётся ни частичного заказа, ни чистого изменения остатков.
type service struct {
	customers     domain.CustomerLookup
	catalog       domain.ProductCatalog
	orders        domain.OrderStore
	logger        *log.Entry
	metrics       *metrics.PlacementMetrics
	kafkaProducer *kafka.Producer // опциональный Kafka producer для событий оформления
}

// NewService создаёт рабочий экземпляр сервиса оформления.
func NewService(
	customers domain.CustomerLookup,
	catalog domain.ProductCatalog,
	orders domain.OrderStore,
	logger *log.Entry,
) Placer {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    logger,
		metrics:   metrics.NewPlacementMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис оформления с Kafka producer для событий.
func NewServiceWithKafka(
	customers domain.CustomerLookup,
	catalog domain.ProductCatalog,
	orders domain.OrderStore,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) Placer {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &service{
		customers:     customers,
		catalog:       catalog,
		orders:        orders,
		logger:        logger,
		metrics:       metrics.NewPlacementMetrics(),
		kafkaProducer: kafkaProducer,
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerLookup,
	catalog domain.ProductCatalog,
	orders domain.OrderStore,
	logger *log.Entry,
) Placer {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    logger,
		metrics:   nil,
	}
}

// PlaceOrder оформляет заказ клиента по списку позиций.
// Возвращённый заказ содержит позиции с ценами, зафиксированными на момент
// валидации, и присвоенный идентификатор.
func (s *service) PlaceOrder(ctx context.Context, customerID string, requests []domain.LineItemRequest) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordPlacementStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordPlacementDuration(time.Since(start))
			s.metrics.RecordPlacementFinished()
		}
	}()

	if errs := domain.ValidatePlacementRequest(customerID, requests); len(errs) > 0 {
		s.recordRejection(metrics.RejectReasonInvalidRequest)
		return domain.Order{}, fmt.Errorf("validate placement request: %w", errors.Join(errs...))
	}

	stepStart := time.Now()
	customer, snapshot, err := s.validate(ctx, customerID, requests)
	if s.metrics != nil {
		s.metrics.RecordStepDuration(metrics.StepValidate, time.Since(stepStart))
	}
	if err != nil {
		s.rejectWithEvent(customerID, err)
		return domain.Order{}, err
	}

	items, err := assembleLineItems(snapshot, requests)
	if err != nil {
		// Валидация дала чистый проход, значит дыра в снимке — баг конвейера.
		// Такое не глотаем: логируем как фатальное и возвращаем наверх.
		s.logger.WithError(err).WithField("customer_id", customerID).Error("line item assembly violated pipeline invariant")
		s.recordRejection(metrics.RejectReasonInvariant)
		return domain.Order{}, err
	}

	decrements := domain.AggregateDecrements(requests)

	// Начиная с резервирования остатки могут быть уже списаны, поэтому
	// отвязываемся от отмены вызывающего контекста: начатое оформление всегда
	// доходит либо до записанного заказа, либо до полной компенсации.
	opCtx := context.WithoutCancel(ctx)

	stepStart = time.Now()
	err = s.catalog.ReserveStock(opCtx, decrements)
	if s.metrics != nil {
		s.metrics.RecordStepDuration(metrics.StepReserve, time.Since(stepStart))
	}
	if err != nil {
		if errors.Is(err, domain.ErrStockConflict) && s.metrics != nil {
			s.metrics.RecordStockConflict()
		}
		s.logger.WithError(err).WithField("customer_id", customerID).Warn("stock reservation failed")
		s.rejectWithEvent(customerID, err)
		return domain.Order{}, fmt.Errorf("reserve stock: %w", err)
	}

	order := buildOrder(customer, items)

	stepStart = time.Now()
	writeErr := s.orders.Create(opCtx, order)
	if s.metrics != nil {
		s.metrics.RecordStepDuration(metrics.StepWrite, time.Since(stepStart))
	}
	if writeErr != nil {
		// Резерв уже применён: возвращаем остатки, чтобы списание без заказа
		// не пережило неудачное оформление.
		s.compensate(opCtx, order, decrements)
		s.logger.WithError(writeErr).WithFields(log.Fields{
			"order_id":    order.ID,
			"customer_id": customerID,
		}).Error("order write failed after reservation, stock released")
		s.recordRejection(metrics.RejectReasonPersistence)
		s.publishEvent(kafka.EventTypePlacementRejected, "", customerID, map[string]interface{}{
			"reason": writeErr.Error(),
		})
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, writeErr)
	}

	if s.metrics != nil {
		s.metrics.RecordPlacementCommitted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"amount_minor": order.AmountMinor,
		"items":        len(order.Items),
	}).Info("order placed")

	s.publishEvent(kafka.EventTypeOrderPlaced, order.ID, order.CustomerID, map[string]interface{}{
		"amount_minor": order.AmountMinor,
		"items_count":  len(order.Items),
	})

	return order, nil
}

// buildOrder собирает итоговый заказ из клиента и готовых позиций.
func buildOrder(customer domain.Customer, items []domain.LineItem) domain.Order {
	var amount int64
	for _, item := range items {
		amount += int64(item.Qty) * item.PriceMinor
	}
	return domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		AmountMinor: amount,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}
}

// compensate возвращает списанные остатки после неудачной записи заказа.
func (s *service) compensate(ctx context.Context, order domain.Order, decrements []domain.StockDecrement) {
	if err := s.catalog.ReleaseStock(ctx, decrements); err != nil {
		// Компенсация не прошла — остатки придётся чинить руками,
		// поэтому уровень Error, а не Warn.
		s.logger.WithError(err).WithField("order_id", order.ID).Error("compensating stock release failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordCompensation()
	}
	s.publishEvent(kafka.EventTypeStockReleased, order.ID, order.CustomerID, map[string]interface{}{
		"decrements": len(decrements),
	})
}

// rejectWithEvent учитывает отказ в метриках и публикует событие отказа.
func (s *service) rejectWithEvent(customerID string, cause error) {
	s.recordRejection(rejectReason(cause))
	s.publishEvent(kafka.EventTypePlacementRejected, "", customerID, map[string]interface{}{
		"reason": cause.Error(),
	})
}

func (s *service) recordRejection(reason string) {
	if s.metrics != nil {
		s.metrics.RecordPlacementRejected(reason)
	}
}

// rejectReason переводит ошибку конвейера в метку причины для метрик.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		return metrics.RejectReasonCustomerNotFound
	case errors.Is(err, domain.ErrProductNotFound):
		return metrics.RejectReasonProductNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.RejectReasonInsufficientStock
	case errors.Is(err, domain.ErrStockConflict):
		return metrics.RejectReasonStockConflict
	case errors.Is(err, domain.ErrOrderPersistence):
		return metrics.RejectReasonPersistence
	case errors.Is(err, domain.ErrInvariantViolation):
		return metrics.RejectReasonInvariant
	default:
		return metrics.RejectReasonInvalidRequest
	}
}

// publishEvent публикует событие оформления в Kafka (если producer настроен).
func (s *service) publishEvent(eventType kafka.EventType, orderID, customerID string, metadata map[string]interface{}) {
	if s.kafkaProducer == nil {
		return
	}

	event := kafka.NewPlacementEvent(eventType, orderID, customerID, metadata)
	key := orderID
	if key == "" {
		key = customerID
	}
	if err := s.kafkaProducer.PublishEvent(kafka.TopicOrderEvents, key, event); err != nil {
		// Логируем, но оформление не прерываем — Kafka опциональна.
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   orderID,
		}).Warn("failed to publish placement event to kafka")
	}
}

var _ Placer = (*service)(nil)
