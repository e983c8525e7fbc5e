package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/cache"
	"parfumpos/internal/cart"
	"parfumpos/internal/events"
	"parfumpos/internal/service"
	"parfumpos/internal/stock"
	"parfumpos/internal/store/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	repo := memory.NewSeeded()
	noopCache := cache.NewNoop()
	publisher := events.NewNoop()
	log := zap.NewNop()
	mutator := stock.NewMutator(repo, noopCache, publisher, log)
	svc := service.New(repo, mutator, cart.NewManager(3), noopCache, publisher, log, service.Options{
		DefaultCashier: "Caissier Principal",
		CacheTTL:       time.Minute,
	})
	return New(svc, "*", log).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out.Data
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCreateSaleEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", map[string]any{
		"items":          []map[string]any{{"variant": 1, "quantity": 2}},
		"payment_method": "cash",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["total_amount"] != "299.98" {
		t.Errorf("total = %v, want \"299.98\"", data["total_amount"])
	}
	if data["cashier_name"] != "Caissier Principal" {
		t.Errorf("cashier = %v, want default", data["cashier_name"])
	}

	// The decrement is visible through the catalog.
	rec = doJSON(t, handler, http.MethodGet, "/api/variants/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	variant := decodeData(t, rec)
	if variant["stock_qty"] != float64(22) {
		t.Errorf("stock = %v, want 22", variant["stock_qty"])
	}
}

func TestCreateSaleEmptyItemsBadRequest(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", map[string]any{
		"items":          []map[string]any{},
		"payment_method": "cash",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateSaleInsufficientStockConflict(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", map[string]any{
		"items":          []map[string]any{{"variant": 9, "quantity": 1}},
		"payment_method": "cash",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
}

func TestGetVariantNotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/variants/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSecondReturnConflict(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sales", map[string]any{
		"items":          []map[string]any{{"variant": 1, "quantity": 2}},
		"payment_method": "cash",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale status = %d, want 201", rec.Code)
	}
	sale := decodeData(t, rec)
	saleID := sale["id"].(float64)
	items := sale["items"].([]any)
	itemID := items[0].(map[string]any)["id"].(float64)

	returnBody := map[string]any{
		"sale":           saleID,
		"return_items":   []map[string]any{{"sale_item": itemID, "quantity": 1}},
		"operation_type": "refund",
		"reason":         "customer_request",
		"payment_method": "cash",
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/returns", returnBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first return status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	ret := decodeData(t, rec)
	if ret["difference"] != "149.99" {
		t.Errorf("difference = %v, want \"149.99\"", ret["difference"])
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/returns", returnBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second return status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
}

func TestListVariantsInStockFilter(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/variants?in_stock=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, v := range out.Data {
		if v["stock_qty"] == float64(0) {
			t.Errorf("variant %v listed with zero stock", v["id"])
		}
	}
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/carts", map[string]any{"label": "Ticket client"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cart status = %d, want 201", rec.Code)
	}
	if cartID := decodeData(t, rec)["id"].(float64); cartID != 2 {
		t.Fatalf("cart id = %v, want 2", cartID)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/carts/2/items", map[string]any{"variant": 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/carts/2/items/4", map[string]any{"quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("set quantity status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/carts/2/checkout", map[string]any{"payment_method": "card"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	sale := decodeData(t, rec)
	if sale["total_amount"] != "579.00" {
		t.Errorf("total = %v, want \"579.00\"", sale["total_amount"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/carts/2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cart after checkout status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q, want *", got)
	}
}
