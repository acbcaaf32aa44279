package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/metrics"
	"github.com/workbridge/backend/internal/payments"
)

// InvoiceHandler exposes the payment gateway to the presentation layer on a
// single endpoint: POST creates, GET polls status, anything else is 405.
type InvoiceHandler struct {
	Gateway payments.Gateway
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type createInvoiceRequest struct {
	AmountCents int64  `json:"amount_cents"`
	ContractID  string `json:"contract_id"`
	MilestoneID string `json:"milestone_id"`
}

type createInvoiceResponse struct {
	InvoiceID string `json:"invoice_id"`
	QRURL     string `json:"qr_url"`
}

type invoiceStatusResponse struct {
	Status string `json:"status"`
}

// Invoices handles /api/v1/invoices.
func (h *InvoiceHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.status(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "contract_id is required")
		return
	}
	milestoneID, err := uuid.Parse(req.MilestoneID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "milestone_id is required")
		return
	}

	inv, err := h.Gateway.Create(r.Context(), req.AmountCents, contractID, milestoneID)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidInvoice) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("create invoice", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invoice")
		return
	}
	h.Metrics.InvoicesIssued.Inc()
	writeJSON(w, http.StatusCreated, createInvoiceResponse{
		InvoiceID: inv.ID.String(),
		QRURL:     inv.QRURL,
	})
}

func (h *InvoiceHandler) status(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("invoice_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invoice_id is required")
		return
	}
	invoiceID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid invoice_id")
		return
	}

	status, err := h.Gateway.GetStatus(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, payments.ErrInvoiceNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Logger.Error("invoice status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, invoiceStatusResponse{Status: status})
}
