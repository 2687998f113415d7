package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/iwvelando/blind-quote/internal/app"
	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/store"
	"github.com/iwvelando/blind-quote/internal/view"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, withStore bool, maxBody int64) (http.Handler, *app.App) {
	t.Helper()
	conf := testutil.Configuration()
	opts := app.Options{ExportDir: t.TempDir()}
	if withStore {
		opts.StorePath = filepath.Join(t.TempDir(), "quotes.db")
	}
	a, err := app.New(&conf, zap.NewNop(), opts)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return NewHandler(a, zap.NewNop(), maxBody, "test"), a
}

func perform(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func postEvent(t *testing.T, h http.Handler, topic string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return perform(t, h, http.MethodPost, "/api/events", map[string]interface{}{"topic": topic, "payload": payload})
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) view.ViewModel {
	t.Helper()
	var vm view.ViewModel
	if err := json.Unmarshal(rr.Body.Bytes(), &vm); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	return vm
}

func TestHandleVersion(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)
	rr := perform(t, h, http.MethodGet, "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"version":"test"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestHandleEventUpdatesView(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)

	rr := postEvent(t, h, "ITEM_ADDED", map[string]string{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = postEvent(t, h, "ITEM_FIELD_CHANGED", map[string]interface{}{"index": 0, "field": "price", "value": "450"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	vm := decodeView(t, rr)
	if len(vm.Items) != 1 {
		t.Fatalf("items = %d, expected 1", len(vm.Items))
	}
	if got := strings.Join(vm.Products, ","); got != "rollerBlind,fabric" {
		t.Errorf("Products = %s, expected configured tab order", got)
	}
	if f, _ := vm.Field("summary.totalSum"); f.Value != "$450.00" {
		t.Errorf("totalSum field = %+v", f)
	}

	rr = perform(t, h, http.MethodGet, "/api/view", nil)
	if rr.Code != http.StatusOK || len(decodeView(t, rr).Items) != 1 {
		t.Errorf("GET /api/view = %d %s", rr.Code, rr.Body.String())
	}
}

func TestHandleEventErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		expected int
	}{
		{name: "malformed json", body: "{", expected: http.StatusBadRequest},
		{name: "unknown topic", body: map[string]interface{}{"topic": "ITEM_EXPLODED"}, expected: http.StatusBadRequest},
		{name: "internal topic", body: map[string]interface{}{"topic": "stateChanged"}, expected: http.StatusBadRequest},
		{name: "bad payload", body: map[string]interface{}{"topic": "F1_DISCOUNT_CHANGED", "payload": map[string]string{"percentage": "ten"}}, expected: http.StatusBadRequest},
		{name: "rejected mutation", body: map[string]interface{}{"topic": "F1_DISCOUNT_CHANGED", "payload": map[string]float64{"percentage": 150}}, expected: http.StatusUnprocessableEntity},
		{name: "bad index", body: map[string]interface{}{"topic": "ITEM_REMOVED", "payload": map[string]int{"index": 3}}, expected: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a := newTestHandler(t, false, 0)
			before := a.State.State()

			rr := perform(t, h, http.MethodPost, "/api/events", tt.body)
			if rr.Code != tt.expected {
				t.Fatalf("expected status %d, got %d: %s", tt.expected, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("expected error body, got %s", rr.Body.String())
			}
			if after := a.State.State(); after.QuoteData.Products[constants.ProductRollerBlind].Summary != before.QuoteData.Products[constants.ProductRollerBlind].Summary ||
				after.UI.Panels[constants.ProductRollerBlind].F1 != before.UI.Panels[constants.ProductRollerBlind].F1 {
				t.Error("failed request changed state")
			}
		})
	}
}

func TestHandleEventBodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, false, 64)
	rr := postEvent(t, h, "CUSTOMER_FIELD_CHANGED", map[string]string{"field": "address", "value": strings.Repeat("x", 200)})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleState(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)
	postEvent(t, h, "CUSTOMER_FIELD_CHANGED", map[string]string{"field": "name", "value": "Smith"})

	rr := perform(t, h, http.MethodGet, "/api/state", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var st quote.AppState
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if st.QuoteData.Customer.Name != "Smith" {
		t.Errorf("customer = %+v", st.QuoteData.Customer)
	}
}

func TestHandleExports(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)
	postEvent(t, h, "ITEM_ADDED", nil)
	postEvent(t, h, "ITEM_FIELD_CHANGED", map[string]interface{}{"index": 0, "field": "price", "value": "100"})

	rr := perform(t, h, http.MethodGet, "/api/export/csv?costs=true", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("csv export status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("csv Content-Type = %q", ct)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Grand Total,110.00") || !strings.Contains(body, "Net Profit") {
		t.Errorf("csv export body:\n%s", body)
	}

	rr = perform(t, h, http.MethodGet, "/api/export/xlsx", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("xlsx export status %d", rr.Code)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx export is not a zip archive")
	}
}

// missingF1Prices fails every supplier price lookup.
type missingF1Prices struct {
	*config.Manager
}

func (missingF1Prices) GetF1ComponentPrice(key string) (float64, error) {
	return 0, &quote.LookupError{Kind: "f1 price", Key: key}
}

func TestHandleExportFailureReturnsError(t *testing.T) {
	h, a := newTestHandler(t, false, 0)
	postEvent(t, h, "ITEM_ADDED", nil)

	a.Workflow.Close()
	calc := calculation.NewService(missingF1Prices{a.Prices}, zap.NewNop())
	a.Workflow = app.NewWorkflow(a.State, calc, nil, t.TempDir(), a.Bus, zap.NewNop())

	for _, path := range []string{"/api/export/csv", "/api/export/xlsx"} {
		rr := perform(t, h, http.MethodGet, path, nil)
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status %d, expected 500", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s Content-Type = %q, expected JSON error", path, ct)
		}
		if strings.Contains(rr.Body.String(), "Grand Total") {
			t.Errorf("GET %s returned a partial export: %s", path, rr.Body.String())
		}
	}
}

func TestHandleQuotes(t *testing.T) {
	h, a := newTestHandler(t, true, 0)
	postEvent(t, h, "CUSTOMER_FIELD_CHANGED", map[string]string{"field": "name", "value": "Smith"})
	postEvent(t, h, "ITEM_ADDED", nil)

	rr := perform(t, h, http.MethodPost, "/api/quotes", map[string]string{"name": "Smith lounge"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("save status %d: %s", rr.Code, rr.Body.String())
	}
	var rec store.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}

	rr = perform(t, h, http.MethodGet, "/api/quotes?q=smith", nil)
	var records []store.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Errorf("records = %+v", records)
	}

	postEvent(t, h, "USER_REQUESTED_RESET", nil)
	if n := len(a.State.State().QuoteData.Products[constants.ProductRollerBlind].Items); n != 0 {
		t.Fatalf("reset left %d items", n)
	}

	rr = perform(t, h, http.MethodPost, "/api/quotes/"+rec.ID+"/load", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("load status %d: %s", rr.Code, rr.Body.String())
	}
	if vm := decodeView(t, rr); len(vm.Items) != 1 {
		t.Errorf("loaded view items = %d", len(vm.Items))
	}

	if rr := perform(t, h, http.MethodPost, "/api/quotes/missing/load", nil); rr.Code != http.StatusNotFound {
		t.Errorf("load missing status %d", rr.Code)
	}
	if rr := perform(t, h, http.MethodDelete, "/api/quotes/"+rec.ID, nil); rr.Code != http.StatusNoContent {
		t.Errorf("delete status %d", rr.Code)
	}
	if rr := perform(t, h, http.MethodDelete, "/api/quotes/"+rec.ID, nil); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status %d", rr.Code)
	}
}

func TestHandleQuotesWithoutStore(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/quotes"},
		{http.MethodPost, "/api/quotes"},
		{http.MethodPost, "/api/quotes/x/load"},
		{http.MethodDelete, "/api/quotes/x"},
	} {
		if rr := perform(t, h, req.method, req.path, nil); rr.Code != http.StatusNotImplemented {
			t.Errorf("%s %s status %d, expected 501", req.method, req.path, rr.Code)
		}
	}
}

func TestConcurrentEventsAreSerialised(t *testing.T) {
	h, a := newTestHandler(t, false, 0)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"topic":"ITEM_ADDED"}`))
			h.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	st := a.State.State()
	data := st.QuoteData.Products[constants.ProductRollerBlind]
	if len(data.Items) != n {
		t.Errorf("items = %d, expected %d", len(data.Items), n)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, false, 0)
	if rr := perform(t, h, http.MethodGet, "/api/events", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/events status %d, expected 405", rr.Code)
	}
}
