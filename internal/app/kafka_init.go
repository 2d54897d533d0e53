package app

import (
	"context"
	"errors"
	"strings"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/service/placement"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой или nil, err при ошибке подключения.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// initPlacementConsumer подписывается на топик входящих запросов и оформляет
// заказы через переданный Placer. Сообщения, исчерпавшие повторы, уходят в DLQ.
func initPlacementConsumer(
	cfg Config,
	placer placement.Placer,
	dlqProducer *kafka.Producer,
	logger *log.Entry,
) (*kafka.Consumer, error) {
	if cfg.KafkaBrokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(cfg.KafkaBrokers, ",")
	handler := newPlacementRequestHandler(placer, logger)

	consumer, err := kafka.NewConsumerWithDLQ(
		brokerList,
		cfg.KafkaGroupID,
		[]string{kafka.TopicPlacementRequests},
		handler,
		dlqProducer,
		cfg.KafkaMaxRetries,
	)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka consumer, continuing without request ingress")
		return nil, err
	}

	logger.WithFields(log.Fields{
		"brokers": brokerList,
		"group":   cfg.KafkaGroupID,
		"topic":   kafka.TopicPlacementRequests,
	}).Info("kafka consumer initialized")
	return consumer, nil
}

// newPlacementRequestHandler превращает сообщение Kafka в вызов оформления.
// Ошибки бизнес-валидации не ретраятся: повтор даст тот же отказ, событие
// об отказе уже опубликовано сервисом. Конфликт остатков и сбои записи
// возвращаются наружу и приводят к повторной доставке.
func newPlacementRequestHandler(placer placement.Placer, logger *log.Entry) kafka.MessageHandler {
	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		request, err := kafka.ParsePlaceOrderRequest(message)
		if err != nil {
			logger.WithError(err).WithField("offset", message.Offset).Warn("malformed placement request")
			return err
		}

		items := make([]domain.LineItemRequest, 0, len(request.Items))
		for _, item := range request.Items {
			items = append(items, domain.LineItemRequest{ProductID: item.ProductID, Qty: item.Qty})
		}

		order, err := placer.PlaceOrder(ctx, request.CustomerID, items)
		if err != nil {
			if domain.IsRetryable(err) || errors.Is(err, domain.ErrOrderPersistence) {
				return err
			}
			logger.WithError(err).WithFields(log.Fields{
				"request_id":  request.RequestID,
				"customer_id": request.CustomerID,
			}).Info("placement request rejected")
			return nil
		}

		logger.WithFields(log.Fields{
			"request_id": request.RequestID,
			"order_id":   order.ID,
		}).Info("placement request fulfilled")
		return nil
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
