package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/metrics"
	"github.com/workbridge/backend/internal/payments"
)

func newInvoiceHandler(delay time.Duration) *InvoiceHandler {
	return &InvoiceHandler{
		Gateway: payments.NewMemoryGateway(delay),
		Metrics: metrics.New(),
		Logger:  slog.Default(),
	}
}

func postInvoice(t *testing.T, h *InvoiceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Invoices(rec, req)
	return rec
}

func TestInvoices_CreateAndPoll(t *testing.T) {
	h := newInvoiceHandler(time.Hour)

	body := fmt.Sprintf(`{"amount_cents": 25000, "contract_id": %q, "milestone_id": %q}`,
		uuid.New(), uuid.New())
	rec := postInvoice(t, h, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201 (body: %s)", rec.Code, rec.Body)
	}

	var created struct {
		InvoiceID string `json:"invoice_id"`
		QRURL     string `json:"qr_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if _, err := uuid.Parse(created.InvoiceID); err != nil {
		t.Errorf("invoice_id is not a uuid: %q", created.InvoiceID)
	}
	if !strings.Contains(created.QRURL, created.InvoiceID) {
		t.Errorf("qr_url %q should embed the invoice id", created.QRURL)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?invoice_id="+created.InvoiceID, nil)
	rec = httptest.NewRecorder()
	h.Invoices(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status poll: got %d, want 200", rec.Code)
	}
	var polled struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &polled); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if polled.Status != payments.InvoiceStatusPending {
		t.Errorf("fresh invoice status: got %s, want pending", polled.Status)
	}
}

func TestInvoices_CreateRejectsBadPayloads(t *testing.T) {
	h := newInvoiceHandler(time.Hour)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing contract_id", fmt.Sprintf(`{"amount_cents": 25000, "milestone_id": %q}`, uuid.New())},
		{"missing milestone_id", fmt.Sprintf(`{"amount_cents": 25000, "contract_id": %q}`, uuid.New())},
		{"zero amount", fmt.Sprintf(`{"amount_cents": 0, "contract_id": %q, "milestone_id": %q}`, uuid.New(), uuid.New())},
		{"negative amount", fmt.Sprintf(`{"amount_cents": -100, "contract_id": %q, "milestone_id": %q}`, uuid.New(), uuid.New())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postInvoice(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400 (body: %s)", rec.Code, rec.Body)
			}
		})
	}
}

func TestInvoices_StatusErrors(t *testing.T) {
	h := newInvoiceHandler(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	rec := httptest.NewRecorder()
	h.Invoices(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing invoice_id: got %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/invoices?invoice_id=not-a-uuid", nil)
	rec = httptest.NewRecorder()
	h.Invoices(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed invoice_id: got %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/invoices?invoice_id="+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	h.Invoices(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown invoice: got %d, want 404", rec.Code)
	}
}

func TestInvoices_MethodNotAllowed(t *testing.T) {
	h := newInvoiceHandler(time.Hour)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/api/v1/invoices", nil)
		rec := httptest.NewRecorder()
		h.Invoices(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: got %d, want 405", method, rec.Code)
		}
	}
}

func TestInvoices_SettleThroughEndpoint(t *testing.T) {
	h := newInvoiceHandler(20 * time.Millisecond)

	body := fmt.Sprintf(`{"amount_cents": 25000, "contract_id": %q, "milestone_id": %q}`,
		uuid.New(), uuid.New())
	rec := postInvoice(t, h, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201", rec.Code)
	}
	var created struct {
		InvoiceID string `json:"invoice_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?invoice_id="+created.InvoiceID, nil)
		rec := httptest.NewRecorder()
		h.Invoices(rec, req)
		var polled struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &polled); err != nil {
			t.Fatalf("decode status response: %v", err)
		}
		if polled.Status == payments.InvoiceStatusPaid {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("invoice never settled, still %s", polled.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
