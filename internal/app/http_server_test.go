package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

func findFreePort(t *testing.T) int {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen for free port: %v", err)
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	srv := startMetricsServer(ctx, addr, logger, healthHandler)
	defer shutdownHTTP(srv, logger)

	// Даём время на запуск
	time.Sleep(100 * time.Millisecond)

	base := fmt.Sprintf("http://%s", addr)

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("failed to get /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for /metrics, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Error("/metrics should return non-empty response")
	}

	resp2, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("failed to get /healthz: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for /healthz, got %d", resp2.StatusCode)
	}

	resp3, err := http.Get(base + "/livez")
	if err != nil {
		t.Fatalf("failed to get /livez: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for /livez, got %d", resp3.StatusCode)
	}

	resp4, err := http.Get(base + "/readyz")
	if err != nil {
		t.Fatalf("failed to get /readyz: %v", err)
	}
	defer resp4.Body.Close()
	if resp4.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for /readyz, got %d", resp4.StatusCode)
	}
	readyBody, _ := io.ReadAll(resp4.Body)
	if !strings.Contains(string(readyBody), "ready") {
		t.Errorf("unexpected /readyz body: %s", readyBody)
	}
}

func TestShutdownHTTP_NilServer(t *testing.T) {
	// Не должно паниковать.
	shutdownHTTP(nil, log.WithField("test", "http"))
}
