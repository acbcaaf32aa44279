package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoice statuses. An invoice starts pending and transitions to paid once,
// with no further action from the caller.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// ErrInvoiceNotFound is returned when an invoice id is unknown to the gateway.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrInvalidInvoice is returned when a create request is missing a field or
// carries a non-positive amount. Nothing is created.
var ErrInvalidInvoice = errors.New("invalid invoice request")

// Invoice tracks one funding attempt against a milestone.
type Invoice struct {
	ID          uuid.UUID `json:"invoice_id"`
	ContractID  uuid.UUID `json:"contract_id"`
	MilestoneID uuid.UUID `json:"milestone_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	QRURL       string    `json:"qr_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Gateway is the payment-gateway contract the rest of the system builds
// against. Create issues a pending invoice that settles on its own;
// Confirm is the callback path a real gateway would hit.
type Gateway interface {
	Create(ctx context.Context, amountCents int64, contractID, milestoneID uuid.UUID) (*Invoice, error)
	GetStatus(ctx context.Context, invoiceID uuid.UUID) (string, error)
	Confirm(ctx context.Context, invoiceID uuid.UUID) error
}

// qrURL is the displayable, scannable reference encoding the invoice id.
func qrURL(id uuid.UUID) string {
	return fmt.Sprintf("https://pay.workbridge.dev/qr/%s.png", id)
}

// validateCreate checks the shared create-invoice preconditions.
func validateCreate(amountCents int64, contractID, milestoneID uuid.UUID) error {
	if amountCents <= 0 {
		return fmt.Errorf("amount must be > 0: %w", ErrInvalidInvoice)
	}
	if contractID == uuid.Nil || milestoneID == uuid.Nil {
		return fmt.Errorf("contract and milestone ids are required: %w", ErrInvalidInvoice)
	}
	return nil
}
