//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	brand := fmt.Sprintf("e2e-%d-%d", time.Now().Unix(), rand.Intn(100000))

	var created map[string]any
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{
		"name":          "Trail Runner",
		"category":      "Shoes",
		"brand":         brand,
		"price":         "89.90",
		"stockQuantity": 4,
	}, &created, 201)

	pid, _ := created["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing: %#v", created)
	}

	var got map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products/"+pid, nil, &got, 200)
	if got["name"] != "Trail Runner" {
		t.Fatalf("unexpected product: %#v", got)
	}

	var listed []map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products?brand="+brand, nil, &listed, 200)
	if len(listed) != 1 || listed[0]["id"] != pid {
		t.Fatalf("expected only %s for brand %s, got %#v", pid, brand, listed)
	}

	var updated map[string]any
	doJSON(t, http.MethodPut, baseURL+"/products/"+pid, map[string]any{"stockQuantity": 40}, &updated, 200)
	if updated["stockQuantity"] != float64(40) || updated["updatedAt"] == nil {
		t.Fatalf("update not applied: %#v", updated)
	}

	var stats map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products/stats", nil, &stats, 200)
	if n, _ := stats["totalProducts"].(float64); n < 1 {
		t.Fatalf("stats miss the new product: %#v", stats)
	}

	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{"name": " ", "price": -1}, nil, 400)

	doJSON(t, http.MethodDelete, baseURL+"/products/"+pid, nil, nil, 204)
	doJSON(t, http.MethodGet, baseURL+"/products/"+pid, nil, nil, 404)

	doJSON(t, http.MethodGet, baseURL+"/log/generate", nil, nil, 200)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{"name": "Volatile"}, &created, 201)
		pid, _ = created["id"].(string)

		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		// the catalog is held in memory only
		doJSON(t, http.MethodGet, baseURL+"/products/"+pid, nil, nil, 404)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("%s %s: missing X-Request-Id", method, url)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
