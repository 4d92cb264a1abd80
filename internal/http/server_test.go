package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"comunidad/internal/core"
	"comunidad/internal/ledger"
	"comunidad/internal/service"
	"comunidad/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	roster, _ := core.DefaultRoster()
	svc := service.New(
		ledger.New(roster, ledger.PolicyFlat),
		store.NewMemory(),
		"communityData",
		nil,
		nil,
		Confirmer(),
	)
	return NewServer(":0", svc)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestUnitsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/units", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var units []unitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &units); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(units) != 17 {
		t.Fatalf("expected 17 units, got %d", len(units))
	}
}

func TestExpenseAndStatusFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/expenses",
		`{"description":"tejado","amount":"100","category":"obras"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d body %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, s, http.MethodGet, "/status", "")
	var rows []statusRowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 17 {
		t.Fatalf("expected 17 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != "unpaid" {
			t.Fatalf("unit %s should be unpaid, got %s", row.Unit, row.Status)
		}
	}
}

func TestCreateExpenseRejectsEmptyDescription(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/expenses", `{"description":"","amount":"10"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestCreatePaymentUnknownUnit(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/payments", `{"unit":"Ghost","amount":"10"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
}

func TestCreatePaymentReturnsInvoice(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/payments", `{"unit":"quinto","amount":"42"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Invoice invoiceResponse `json:"invoice"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Invoice.Unit != "quinto" || resp.Invoice.InvoiceNumber == "" {
		t.Fatalf("unexpected invoice %+v", resp.Invoice)
	}
	if resp.Invoice.Amount != "42.00" {
		t.Fatalf("amount %q", resp.Invoice.Amount)
	}
}

func TestDeleteRequiresConfirmParam(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/expenses",
		`{"description":"gasto","amount":"10","category":"x"}`)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doRequest(t, s, http.MethodDelete, "/expenses/"+created.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete: status %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/expenses/"+created.ID+"?confirm=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed delete: status %d body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Deleted {
		t.Fatalf("expected deletion")
	}

	// History should be empty again.
	rec = doRequest(t, s, http.MethodGet, "/history", "")
	var rows []historyRowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}
}

func TestDeleteUnknownIDReportsFalse(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodDelete, "/payments/missing?confirm=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Deleted {
		t.Fatalf("expected no-op")
	}
}

func TestExpenseDetailEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/expenses",
		`{"description":"fachada","amount":"200","category":"obras"}`)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doRequest(t, s, http.MethodGet, "/expenses/"+created.ID+"/detail", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var rows []detailRowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 17 {
		t.Fatalf("expected 17 rows, got %d", len(rows))
	}

	rec = doRequest(t, s, http.MethodGet, "/expenses/missing/detail", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestResetRequiresConfirm(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/reset", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodPost, "/reset?confirm=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
