package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/efreitasn/shareledger/internal/engine"
	"github.com/efreitasn/shareledger/internal/service"
	"github.com/efreitasn/shareledger/internal/store"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router http.Handler
}

func newTestEnv() *testEnv {
	companyStore := store.NewCompanyStore()
	subscriptionStore := store.NewSubscriptionStore()
	log := engine.NewEventLog()
	cache := service.NewSnapshotCache(time.Hour, log.Version)

	notifySvc := service.NewNotifyService(subscriptionStore, companyStore, 5*time.Second)
	companySvc := service.NewCompanyService(companyStore, nil)
	ledgerSvc := service.NewLedgerService(log, companyStore, nil, cache, notifySvc)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(companySvc, ledgerSvc, notifySvc, logger)

	return &testEnv{router: router}
}

// doJSON sends a JSON request and returns the recorder.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// doRaw sends a raw request with optional content-type override.
func (env *testEnv) doRaw(t *testing.T, method, path, contentType, rawBody string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(rawBody))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// registerCompany creates a company via the API and returns its ID.
func (env *testEnv) registerCompany(t *testing.T, name string) string {
	t.Helper()
	rr := env.doJSON(t, "POST", "/companies", map[string]any{"name": name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register company %s: expected 201, got %d: %s", name, rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	return resp["company_id"].(string)
}

// postTransaction appends a transaction via the API and fails on non-201.
func (env *testEnv) postTransaction(t *testing.T, path string, body map[string]any) map[string]any {
	t.Helper()
	rr := env.doJSON(t, "POST", path, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("post transaction: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	return resp
}

// --- Healthz ---

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected application/json, got %s", ct)
	}
}

// --- Company Endpoints ---

func TestCompany_Register_Success(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "POST", "/companies", map[string]any{"name": "Acme Corp"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["name"] != "Acme Corp" {
		t.Fatalf("expected name=Acme Corp, got %v", resp["name"])
	}
	if resp["company_id"] == "" {
		t.Fatal("expected company_id to be assigned")
	}
	createdAt, ok := resp["created_at"].(string)
	if !ok {
		t.Fatal("created_at should be a string")
	}
	if _, err := time.Parse(time.RFC3339, createdAt); err != nil {
		t.Fatalf("created_at not RFC 3339: %v", err)
	}
}

func TestCompany_Register_ValidationErrors(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty name", map[string]any{"name": ""}},
		{"whitespace name", map[string]any{"name": "   "}},
		{"name too long", map[string]any{"name": strings.Repeat("x", 256)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.doJSON(t, "POST", "/companies", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCompany_GetAndList(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme Corp")
	env.registerCompany(t, "Globex")

	rr := env.doJSON(t, "GET", "/companies/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["company_id"] != id {
		t.Fatalf("expected company_id=%s, got %v", id, resp["company_id"])
	}

	rr = env.doJSON(t, "GET", "/companies", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var listResp map[string]any
	decodeJSON(t, rr, &listResp)
	companies := listResp["companies"].([]any)
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}
}

func TestCompany_Get_NotFound(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/companies/nonexistent", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

// --- Transaction Endpoints ---

func TestTransaction_Buy_Success(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	resp := env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id,
		"trade_date": "2024-01-05",
		"quantity":   10,
		"price":      10.50,
	})

	if resp["kind"] != "BUY" {
		t.Fatalf("expected kind=BUY, got %v", resp["kind"])
	}
	if resp["trade_date"] != "2024-01-05" {
		t.Fatalf("expected trade_date=2024-01-05, got %v", resp["trade_date"])
	}
	if resp["quantity"] != 10.0 {
		t.Fatalf("expected quantity=10, got %v", resp["quantity"])
	}
	if resp["price"] != 10.5 {
		t.Fatalf("expected price=10.5, got %v", resp["price"])
	}
	if _, ok := resp["ratio"]; ok {
		t.Fatal("buy response should not include ratio")
	}
}

func TestTransaction_GenericEndpoint(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	resp := env.postTransaction(t, "/transactions", map[string]any{
		"kind":       "SPLIT",
		"company_id": id,
		"trade_date": "2024-01-05",
		"ratio":      2,
	})
	if resp["kind"] != "SPLIT" {
		t.Fatalf("expected kind=SPLIT, got %v", resp["kind"])
	}
	if resp["ratio"] != "2" {
		t.Fatalf("expected ratio=2, got %v", resp["ratio"])
	}

	rr := env.doJSON(t, "POST", "/transactions", map[string]any{
		"kind":       "LEND",
		"company_id": id,
		"trade_date": "2024-01-05",
		"quantity":   1,
		"price":      1.0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTransaction_KindMismatchOnDedicatedEndpoint(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	rr := env.doJSON(t, "POST", "/transactions/buy", map[string]any{
		"kind":       "SELL",
		"company_id": id,
		"trade_date": "2024-01-05",
		"quantity":   10,
		"price":      1.0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTransaction_ValidationErrors(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"missing trade_date", "/transactions/buy", map[string]any{
			"company_id": id, "quantity": 10, "price": 1.0,
		}},
		{"bad trade_date", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "05/01/2024", "quantity": 10, "price": 1.0,
		}},
		{"missing quantity", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "price": 1.0,
		}},
		{"zero quantity", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 0, "price": 1.0,
		}},
		{"missing price", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 10,
		}},
		{"negative price", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 10, "price": -1.0,
		}},
		{"price with 3 decimals", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 10, "price": 1.999,
		}},
		{"missing ratio", "/transactions/split", map[string]any{
			"company_id": id, "trade_date": "2024-01-05",
		}},
		{"zero ratio", "/transactions/split", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "ratio": 0,
		}},
		{"buy with ratio", "/transactions/buy", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 10, "price": 1.0, "ratio": 2.0,
		}},
		{"sell with ratio", "/transactions/sell", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "quantity": 10, "price": 1.0, "ratio": 2.0,
		}},
		{"split with quantity", "/transactions/split", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "ratio": 2.0, "quantity": 10,
		}},
		{"split with price", "/transactions/split", map[string]any{
			"company_id": id, "trade_date": "2024-01-05", "ratio": 2.0, "price": 1.0,
		}},
		{"generic buy with ratio", "/transactions", map[string]any{
			"kind": "BUY", "company_id": id, "trade_date": "2024-01-05", "quantity": 10, "price": 1.0, "ratio": 2.0,
		}},
		{"generic split with quantity and price", "/transactions", map[string]any{
			"kind": "SPLIT", "company_id": id, "trade_date": "2024-01-05", "ratio": 2.0, "quantity": 10, "price": 1.0,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.doJSON(t, "POST", tc.path, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}

	// None of the rejected requests may have reached the log.
	rr := env.doJSON(t, "GET", "/companies/"+id+"/transactions", nil)
	var list struct {
		Transactions []map[string]any `json:"transactions"`
	}
	decodeJSON(t, rr, &list)
	if len(list.Transactions) != 0 {
		t.Errorf("expected no recorded transactions, got %d", len(list.Transactions))
	}
}

func TestTransaction_UnknownCompany(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "POST", "/transactions/buy", map[string]any{
		"company_id": "ghost",
		"trade_date": "2024-01-05",
		"quantity":   10,
		"price":      1.0,
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTransaction_ListByCompany(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	// Appended out of chronological order; listing is chronological.
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-10", "quantity": 10, "price": 2.0,
	})
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-05", "quantity": 5, "price": 1.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/transactions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	txs := resp["transactions"].([]any)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	first := txs[0].(map[string]any)
	if first["trade_date"] != "2024-01-05" {
		t.Fatalf("expected chronological order, first dated %v", first["trade_date"])
	}
}

// --- Query Endpoints ---

func TestQuery_AverageCost(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 10, "price": 1.0,
	})
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-02", "quantity": 10, "price": 2.0,
	})
	env.postTransaction(t, "/transactions/sell", map[string]any{
		"company_id": id, "trade_date": "2024-01-03", "quantity": 15, "price": 3.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-31", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["average_price"] != 2.0 {
		t.Fatalf("expected average_price=2, got %v", resp["average_price"])
	}
	if resp["balance"] != "5" {
		t.Fatalf("expected balance=5, got %v", resp["balance"])
	}
	if resp["as_of"] != "2024-01-31" {
		t.Fatalf("expected as_of=2024-01-31, got %v", resp["as_of"])
	}
}

func TestQuery_AverageCost_RoundsToTwoPlaces(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	// 1 @ 1.00 + 2 @ 2.00 = 5.00 over 3 shares = 1.666..., presented as 1.67.
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 1, "price": 1.0,
	})
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-02", "quantity": 2, "price": 2.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-31", nil)
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["average_price"] != 1.67 {
		t.Fatalf("expected average_price=1.67, got %v", resp["average_price"])
	}
}

func TestQuery_AverageCost_MidHistory(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 10, "price": 1.0,
	})
	env.postTransaction(t, "/transactions/sell", map[string]any{
		"company_id": id, "trade_date": "2024-01-20", "quantity": 10, "price": 2.0,
	})

	// Query before the sell sees the full position.
	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-10", nil)
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["balance"] != "10" {
		t.Fatalf("expected balance=10 before sell, got %v", resp["balance"])
	}
}

func TestQuery_AverageCost_Oversell(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 5, "price": 1.0,
	})
	env.postTransaction(t, "/transactions/sell", map[string]any{
		"company_id": id, "trade_date": "2024-01-02", "quantity": 10, "price": 2.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-31", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["error"] != "insufficient_inventory" {
		t.Fatalf("expected error=insufficient_inventory, got %v", resp["error"])
	}
}

func TestQuery_AverageCost_NoTransactionsBeforeDate(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-02-01", "quantity": 5, "price": 1.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-01", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["error"] != "no_transactions" {
		t.Fatalf("expected error=no_transactions, got %v", resp["error"])
	}
}

func TestQuery_AverageCost_BadDate(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=31-01-2024", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestQuery_SplitReflectedInAverageCost(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 10, "price": 10.0,
	})
	env.postTransaction(t, "/transactions/split", map[string]any{
		"company_id": id, "trade_date": "2024-01-05", "ratio": 2,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/average-cost?date=2024-01-31", nil)
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["average_price"] != 5.0 {
		t.Fatalf("expected average_price=5 after 2-for-1 split, got %v", resp["average_price"])
	}
	if resp["balance"] != "20" {
		t.Fatalf("expected balance=20 after split, got %v", resp["balance"])
	}
}

func TestQuery_Lots(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-01", "quantity": 10, "price": 1.0,
	})
	env.postTransaction(t, "/transactions/buy", map[string]any{
		"company_id": id, "trade_date": "2024-01-02", "quantity": 10, "price": 2.0,
	})
	env.postTransaction(t, "/transactions/sell", map[string]any{
		"company_id": id, "trade_date": "2024-01-03", "quantity": 12, "price": 3.0,
	})

	rr := env.doJSON(t, "GET", "/companies/"+id+"/lots?date=2024-01-31", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	lots := resp["lots"].([]any)
	if len(lots) != 1 {
		t.Fatalf("expected 1 open lot, got %d", len(lots))
	}
	lot := lots[0].(map[string]any)
	if lot["remaining_quantity"] != "8" {
		t.Fatalf("expected remaining_quantity=8, got %v", lot["remaining_quantity"])
	}
	if lot["price"] != 2.0 {
		t.Fatalf("expected price=2, got %v", lot["price"])
	}
}

// --- Subscription Endpoints ---

func TestSubscription_SubscribeListDelete(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	body := map[string]any{
		"company_id": id,
		"url":        "https://example.com/hook",
	}
	rr := env.doJSON(t, "POST", "/subscriptions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var createResp map[string]any
	decodeJSON(t, rr, &createResp)
	subID := createResp["subscription_id"].(string)

	// Re-subscribing the same pair refreshes and returns 200.
	rr = env.doJSON(t, "POST", "/subscriptions", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on re-subscribe, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.doJSON(t, "GET", "/subscriptions?company_id="+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var listResp map[string]any
	decodeJSON(t, rr, &listResp)
	subs := listResp["subscriptions"].([]any)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}

	rr = env.doJSON(t, "DELETE", "/subscriptions/"+subID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.doJSON(t, "DELETE", "/subscriptions/"+subID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on double delete, got %d", rr.Code)
	}
}

func TestSubscription_RequiresHTTPS(t *testing.T) {
	env := newTestEnv()
	id := env.registerCompany(t, "Acme")

	rr := env.doJSON(t, "POST", "/subscriptions", map[string]any{
		"company_id": id,
		"url":        "http://example.com/hook",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSubscription_List_RequiresCompanyID(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/subscriptions", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// --- Content-Type Validation ---

func TestContentType_MissingOnPost(t *testing.T) {
	env := newTestEnv()
	rr := env.doRaw(t, "POST", "/companies", "", `{"name":"Acme"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing Content-Type, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestContentType_WrongOnPost(t *testing.T) {
	env := newTestEnv()
	rr := env.doRaw(t, "POST", "/companies", "text/plain", `{"name":"Acme"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong Content-Type, got %d: %s", rr.Code, rr.Body.String())
	}
}
