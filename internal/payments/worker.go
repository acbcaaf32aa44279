package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type ConfirmInvoiceJobArgs struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

func (ConfirmInvoiceJobArgs) Kind() string { return "confirm_invoice" }

// InvoiceConfirmer is the contract the worker needs to settle an invoice.
type InvoiceConfirmer interface {
	Confirm(ctx context.Context, invoiceID uuid.UUID) error
}

// ConfirmInvoiceWorker settles invoices when their scheduled confirmation
// comes due, simulating the gateway's webhook.
type ConfirmInvoiceWorker struct {
	river.WorkerDefaults[ConfirmInvoiceJobArgs]
	gateway InvoiceConfirmer
}

func NewConfirmInvoiceWorker(gateway InvoiceConfirmer) *ConfirmInvoiceWorker {
	return &ConfirmInvoiceWorker{gateway: gateway}
}

func (w *ConfirmInvoiceWorker) Work(ctx context.Context, job *river.Job[ConfirmInvoiceJobArgs]) error {
	err := w.gateway.Confirm(ctx, job.Args.InvoiceID)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			// Invoice row is gone; retrying will never help.
			return nil
		}
		return fmt.Errorf("confirm invoice %s: %w", job.Args.InvoiceID, err)
	}
	return nil
}
