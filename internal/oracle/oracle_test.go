package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinvault/internal/models"

	"github.com/shopspring/decimal"
)

func newTestClient(baseURL string, ttl time.Duration) *Client {
	return NewClient(models.OracleConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		QuoteTTL:       ttl,
	})
}

func TestGetPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ids") != "bitcoin" || r.URL.Query().Get("vs_currencies") != "usd" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":50000.12}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	price, err := client.GetPrice(context.Background(), "Bitcoin")
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("50000.12")) {
		t.Errorf("Expected 50000.12, got %s", price.String())
	}
}

func TestGetPrice_CachesQuotes(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"bitcoin":{"usd":50000}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.GetPrice(ctx, "bitcoin"); err != nil {
			t.Fatalf("GetPrice failed: %v", err)
		}
	}
	if requests != 1 {
		t.Errorf("Expected 1 upstream request with caching, got %d", requests)
	}
}

func TestGetPrice_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.GetPrice(context.Background(), "bitcoin")
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", err)
	}
}

func TestGetPrice_MissingQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.GetPrice(context.Background(), "bitcoin")
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable for missing quote, got %v", err)
	}
}

func TestGetPrice_NonPositiveQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":0}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.GetPrice(context.Background(), "bitcoin")
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable for zero quote, got %v", err)
	}
}
