package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики конвейера оформления заказов.
type PlacementMetrics struct {
	// Счётчики операций
	placementsStarted   prometheus.Counter
	placementsCommitted prometheus.Counter
	placementsRejected  *prometheus.CounterVec

	// Счётчики резервирования
	stockConflicts prometheus.Counter
	compensations  prometheus.Counter

	// Гистограммы времени выполнения
	placementDuration prometheus.Histogram
	stepDuration      *prometheus.HistogramVec

	// Gauge для оформлений в полёте
	activePlacements prometheus.Gauge
}

// Метки причин отказа для placementsRejected.
const (
	RejectReasonInvalidRequest    = "invalid_request"
	RejectReasonCustomerNotFound  = "customer_not_found"
	RejectReasonProductNotFound   = "product_not_found"
	RejectReasonInsufficientStock = "insufficient_stock"
	RejectReasonStockConflict     = "stock_conflict"
	RejectReasonPersistence       = "persistence"
	RejectReasonInvariant         = "invariant_violation"
)

// Имена шагов конвейера для stepDuration.
const (
	StepValidate = "validate"
	StepReserve  = "reserve"
	StepWrite    = "write"
)

// NewPlacementMetrics создаёт новый экземпляр метрик оформления.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		placementsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_placements_started_total",
			Help: "Total number of order placements started",
		}),
		placementsCommitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_placements_committed_total",
			Help: "Total number of order placements committed",
		}),
		placementsRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_placements_rejected_total",
			Help: "Total number of order placements rejected, by reason",
		}, []string{"reason"}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_stock_conflicts_total",
			Help: "Total number of reservation-time stock conflicts",
		}),
		compensations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_stock_compensations_total",
			Help: "Total number of compensating stock releases after failed order writes",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_placement_duration_seconds",
			Help:    "Duration of order placement pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "checkout_placement_step_duration_seconds",
			Help:    "Duration of individual placement steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "checkout_active_placements",
			Help: "Number of currently in-flight order placements",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPlacementStarted увеличивает счётчик запущенных оформлений.
func (m *PlacementMetrics) RecordPlacementStarted() {
	m.placementsStarted.Inc()
	m.activePlacements.Inc()
}

// RecordPlacementCommitted увеличивает счётчик успешно зафиксированных оформлений.
func (m *PlacementMetrics) RecordPlacementCommitted() {
	m.placementsCommitted.Inc()
}

// RecordPlacementRejected увеличивает счётчик отказов по указанной причине.
func (m *PlacementMetrics) RecordPlacementRejected(reason string) {
	m.placementsRejected.WithLabelValues(reason).Inc()
}

// RecordPlacementFinished уменьшает количество оформлений в полёте.
func (m *PlacementMetrics) RecordPlacementFinished() {
	m.activePlacements.Dec()
}

// RecordStockConflict увеличивает счётчик проигранных гонок за остаток.
func (m *PlacementMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordCompensation увеличивает счётчик компенсирующих возвратов остатка.
func (m *PlacementMetrics) RecordCompensation() {
	m.compensations.Inc()
}

// RecordPlacementDuration записывает время полного прохода конвейера.
func (m *PlacementMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага конвейера.
func (m *PlacementMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}
