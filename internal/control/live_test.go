package control

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/catalog/internal/infra/storage/postgres"
)

// TestGracefulShutdown_Live runs the full stack against CATALOG_PG_URL (and
// CATALOG_REDIS_URL when set), serves one request and stops.
func TestGracefulShutdown_Live(t *testing.T) {
	url := os.Getenv("CATALOG_PG_URL")
	if url == "" {
		t.Skip("Skipping live test. Set CATALOG_PG_URL to run.")
	}

	cfg := testConfig()
	cfg.Server.Port = 18089
	cfg.Database = postgres.Config{URL: url}
	cfg.Redis.URL = os.Getenv("CATALOG_REDIS_URL")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	req, _ := http.NewRequest("POST", fmt.Sprintf("http://localhost:%d/products", cfg.Server.Port),
		strings.NewReader(`{"name":"Live","price":1.25}`))
	req.Header.Set("x-api-key", cfg.Server.APIKey)

	var resp *http.Response
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err = http.DefaultClient.Do(req)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(100 * time.Millisecond)
		req.Body, _ = req.GetBody()
	}
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201, got %d", resp.StatusCode)
	}

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
