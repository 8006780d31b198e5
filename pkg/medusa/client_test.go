package medusa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/s4trading/storefront-backend/pkg/config"
)

func testConfig(baseURL string) config.MedusaConfig {
	return config.MedusaConfig{
		BaseURL:        baseURL,
		AdminAPIKey:    "admin-key",
		AdminAuthMode:  "auto",
		PublishableKey: "pk_test",
		RegionID:       "reg_uae",
		SalesChannelID: "sc_default",
		CountryCode:    "ae",
		RequestTimeout: 2 * time.Second,
	}
}

func TestListProducts_SendsPublishableKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-publishable-api-key"); got != "pk_test" {
			t.Errorf("missing publishable key header, got %q", got)
		}
		if got := r.URL.Query().Get("region_id"); got != "reg_uae" {
			t.Errorf("missing region_id, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{{"id": "prod_1", "title": "Wagyu Ribeye"}},
		})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || products[0].ID != "prod_1" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestFindCustomerByEmail_UnwrapsDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer admin-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "cus_1", "email": "chef@dune.ae"}},
		})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	customer, err := client.FindCustomerByEmail(context.Background(), "chef@dune.ae")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if customer == nil || customer.ID != "cus_1" {
		t.Fatalf("unexpected customer %+v", customer)
	}
}

func TestFindCustomerByEmail_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"customers": []any{}})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	customer, err := client.FindCustomerByEmail(context.Background(), "nobody@dune.ae")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if customer != nil {
		t.Fatalf("expected no customer, got %+v", customer)
	}
}

func TestAdminRequest_BasicFallbackOnRejectedBearer(t *testing.T) {
	var sawBasic bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "Basic admin-key" {
			sawBasic = true
			json.NewEncoder(w).Encode(map[string]any{
				"customers": []map[string]any{{"id": "cus_2"}},
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	customer, err := client.FindCustomerByEmail(context.Background(), "chef@dune.ae")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if !sawBasic {
		t.Fatal("expected basic auth fallback")
	}
	if customer == nil || customer.ID != "cus_2" {
		t.Fatalf("unexpected customer %+v", customer)
	}
}

func TestAdminRequest_FallbackSafeUnderConcurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			json.NewEncoder(w).Encode(map[string]any{
				"customers": []map[string]any{{"id": "cus_9"}},
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, lookupErr := client.FindCustomerByEmail(context.Background(), "chef@dune.ae"); lookupErr != nil {
				t.Errorf("find customer: %v", lookupErr)
			}
		}()
	}
	wg.Wait()

	if !client.basicFallback.Load() {
		t.Fatal("expected fallback to stick after rejected bearer auth")
	}
}

func TestCreateOrder_DraftFallback(t *testing.T) {
	var completed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/orders":
			w.WriteHeader(http.StatusBadRequest)
		case "/admin/draft-orders":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["region_id"] != "reg_uae" {
				t.Errorf("draft order missing region_id: %+v", body)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"draft_order": map[string]any{"id": "draft_1"},
			})
		case "/admin/draft-orders/draft_1/complete":
			completed = true
			json.NewEncoder(w).Encode(map[string]any{
				"order": map[string]any{"id": "order_1", "status": "completed"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.AdminAuthMode = "bearer"
	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), OrderInput{
		CustomerID: "cus_1",
		Items:      []OrderItem{{Title: "Wagyu Ribeye", Quantity: 2, UnitPrice: 24950}},
		Metadata:   map[string]any{"order_number": "RAM-20260301-0001"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !completed {
		t.Fatal("draft order was not completed")
	}
	if order.ID != "order_1" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCaptureOrder_RefetchesOrder(t *testing.T) {
	var captured bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/admin/orders/order_1/capture":
			captured = true
			json.NewEncoder(w).Encode(map[string]any{})
		case r.Method == http.MethodGet && r.URL.Path == "/admin/orders/order_1":
			json.NewEncoder(w).Encode(map[string]any{
				"order": map[string]any{"id": "order_1", "payment_status": "captured"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.AdminAuthMode = "bearer"
	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CaptureOrder(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("capture order: %v", err)
	}
	if !captured {
		t.Fatal("capture endpoint was not hit")
	}
	if order.PaymentStatus != "captured" {
		t.Fatalf("unexpected payment status %q", order.PaymentStatus)
	}
}
