package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewPlacementMetrics_WithIsolatedRegistry(t *testing.T) {
	metrics := newPlacementMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newPlacementMetricsWithRegisterer should not return nil")
	}

	if metrics.placementsStarted == nil {
		t.Error("placementsStarted counter should not be nil")
	}
	if metrics.placementsCommitted == nil {
		t.Error("placementsCommitted counter should not be nil")
	}
	if metrics.placementsRejected == nil {
		t.Error("placementsRejected counter vec should not be nil")
	}
	if metrics.stockConflicts == nil {
		t.Error("stockConflicts counter should not be nil")
	}
	if metrics.compensations == nil {
		t.Error("compensations counter should not be nil")
	}
	if metrics.placementDuration == nil {
		t.Error("placementDuration histogram should not be nil")
	}
	if metrics.stepDuration == nil {
		t.Error("stepDuration histogram vec should not be nil")
	}
	if metrics.activePlacements == nil {
		t.Error("activePlacements gauge should not be nil")
	}
}

func TestNewPlacementMetrics_DoubleRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newPlacementMetricsWithRegisterer(reg)
	second := newPlacementMetricsWithRegisterer(reg)

	if first.placementsStarted != second.placementsStarted {
		t.Error("expected placementsStarted collector to be reused on re-registration")
	}
	if first.activePlacements != second.activePlacements {
		t.Error("expected activePlacements collector to be reused on re-registration")
	}
}

func TestRecordPlacementStarted(t *testing.T) {
	// Изолированный registry, чтобы не конфликтовать с другими тестами.
	reg := prometheus.NewRegistry()

	started := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_placements_started_total",
		Help: "Test counter",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_placements",
		Help: "Test gauge",
	})

	reg.MustRegister(started, active)

	metrics := &PlacementMetrics{
		placementsStarted: started,
		activePlacements:  active,
	}

	metrics.RecordPlacementStarted()

	metric := &dto.Metric{}
	if err := started.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := active.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected active placements 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordPlacementRejected_ByReason(t *testing.T) {
	reg := prometheus.NewRegistry()

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_placements_rejected_total",
		Help: "Test counter vec",
	}, []string{"reason"})

	reg.MustRegister(rejected)

	metrics := &PlacementMetrics{placementsRejected: rejected}

	metrics.RecordPlacementRejected(RejectReasonInsufficientStock)
	metrics.RecordPlacementRejected(RejectReasonInsufficientStock)
	metrics.RecordPlacementRejected(RejectReasonStockConflict)

	metric := &dto.Metric{}
	if err := rejected.WithLabelValues(RejectReasonInsufficientStock).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected insufficient_stock counter 2.0, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := rejected.WithLabelValues(RejectReasonStockConflict).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected stock_conflict counter 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordPlacementDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_placement_duration_seconds",
		Help:    "Test histogram",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(duration)

	metrics := &PlacementMetrics{placementDuration: duration}
	metrics.RecordPlacementDuration(42 * time.Millisecond)

	metric := &dto.Metric{}
	if err := duration.Write(metric); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 observation, got %d", metric.Histogram.GetSampleCount())
	}
}
