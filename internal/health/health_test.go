package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// componentCheck — фиксированный результат проверки для тестов.
type componentCheck struct {
	check Check
}

func (c componentCheck) Check() Check { return c.check }

func healthyComponent(name string) componentCheck {
	return componentCheck{check: Check{Name: name, Status: StatusHealthy}}
}

func TestHandler_AllComponentsHealthy(t *testing.T) {
	handler := NewHandler("1.2.3")
	handler.RegisterChecker("postgres", healthyComponent("postgres"))
	handler.RegisterChecker("kafka", healthyComponent("kafka"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("overall status = %q, want %q", resp.Status, StatusHealthy)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("version = %q, want %q", resp.Version, "1.2.3")
	}
	if len(resp.Checks) != 2 {
		t.Errorf("checks count = %d, want 2", len(resp.Checks))
	}
	if _, ok := resp.Checks["postgres"]; !ok {
		t.Error("postgres check missing from response")
	}
}

func TestHandler_UnhealthyStorageTakesServiceDown(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("kafka", healthyComponent("kafka"))
	handler.RegisterChecker("postgres", componentCheck{check: Check{
		Name:    "postgres",
		Status:  StatusUnhealthy,
		Message: "dial tcp: connection refused",
	}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("overall status = %q, want %q", resp.Status, StatusUnhealthy)
	}
	if resp.Checks["postgres"].Message == "" {
		t.Error("unhealthy check should carry a message")
	}
}

func TestHandler_DegradedKeepsHTTP200(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("postgres", healthyComponent("postgres"))
	handler.RegisterChecker("kafka", componentCheck{check: Check{
		Name:   "kafka",
		Status: StatusDegraded,
	}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("overall status = %q, want %q", resp.Status, StatusDegraded)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("postgres", healthyComponent("postgres"))

	rec := httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}

	handler.RegisterChecker("postgres", componentCheck{check: Check{
		Name:   "postgres",
		Status: StatusUnhealthy,
	}})

	rec = httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code after storage failure = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestReadinessHandler_DegradedStaysReady(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("kafka", componentCheck{check: Check{
		Name:   "kafka",
		Status: StatusDegraded,
	}})

	rec := httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSimpleChecker(t *testing.T) {
	ok := NewSimpleChecker("postgres", func() error {
		time.Sleep(2 * time.Millisecond)
		return nil
	})

	check := ok.Check()
	if check.Status != StatusHealthy {
		t.Errorf("status = %q, want %q", check.Status, StatusHealthy)
	}
	if check.Name != "postgres" {
		t.Errorf("name = %q, want %q", check.Name, "postgres")
	}
	if check.DurationMs < 1 {
		t.Errorf("duration = %dms, want >= 1ms", check.DurationMs)
	}

	failing := NewSimpleChecker("kafka", func() error {
		return errors.New("broker unreachable")
	})

	check = failing.Check()
	if check.Status != StatusUnhealthy {
		t.Errorf("status = %q, want %q", check.Status, StatusUnhealthy)
	}
	if check.Message != "broker unreachable" {
		t.Errorf("message = %q, want %q", check.Message, "broker unreachable")
	}
}

func TestHandler_UptimeGrows(t *testing.T) {
	handler := NewHandler("test")
	handler.startTime = time.Now().Add(-90 * time.Second)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UptimeSeconds < 90 {
		t.Errorf("uptime = %ds, want >= 90s", resp.UptimeSeconds)
	}
}
