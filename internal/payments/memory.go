package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryGateway simulates the payment gateway in process memory. Invoices
// settle after a fixed delay, standing in for a webhook confirmation. It is
// the development default and the test double; it has no durability.
type MemoryGateway struct {
	mu           sync.Mutex
	invoices     map[uuid.UUID]*Invoice
	confirmDelay time.Duration
}

// NewMemoryGateway returns a gateway whose invoices flip to paid after
// confirmDelay.
func NewMemoryGateway(confirmDelay time.Duration) *MemoryGateway {
	return &MemoryGateway{
		invoices:     make(map[uuid.UUID]*Invoice),
		confirmDelay: confirmDelay,
	}
}

var _ Gateway = (*MemoryGateway)(nil)

func (g *MemoryGateway) Create(ctx context.Context, amountCents int64, contractID, milestoneID uuid.UUID) (*Invoice, error) {
	if err := validateCreate(amountCents, contractID, milestoneID); err != nil {
		return nil, err
	}
	inv := &Invoice{
		ID:          uuid.New(),
		ContractID:  contractID,
		MilestoneID: milestoneID,
		AmountCents: amountCents,
		Status:      InvoiceStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	inv.QRURL = qrURL(inv.ID)

	g.mu.Lock()
	g.invoices[inv.ID] = inv
	g.mu.Unlock()

	// Simulated webhook: settle after the fixed delay. The mutex keeps the
	// flip atomic with respect to concurrent polls.
	id := inv.ID
	time.AfterFunc(g.confirmDelay, func() {
		_ = g.Confirm(context.Background(), id)
	})

	cp := *inv
	return &cp, nil
}

func (g *MemoryGateway) GetStatus(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invoices[invoiceID]
	if !ok {
		return "", ErrInvoiceNotFound
	}
	return inv.Status, nil
}

func (g *MemoryGateway) Confirm(ctx context.Context, invoiceID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	if inv.Status == InvoiceStatusPending {
		inv.Status = InvoiceStatusPaid
	}
	return nil
}
