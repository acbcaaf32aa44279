package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertConfirmInvoiceTxFunc enqueues a confirm_invoice job within the given
// transaction, scheduled for runAt. Provided by main using river.Client.InsertTx.
type InsertConfirmInvoiceTxFunc func(ctx context.Context, tx pgx.Tx, args ConfirmInvoiceJobArgs, runAt time.Time) error

// PGGateway persists invoices in Postgres and drives the pending -> paid
// transition from a scheduled River job standing in for the gateway webhook.
// Confirm is also callable directly as the authenticated callback path.
type PGGateway struct {
	pool          *pgxpool.Pool
	insertConfirm InsertConfirmInvoiceTxFunc
	confirmDelay  time.Duration
}

// NewPGGateway returns a durable gateway. insertConfirm is typically a
// closure over river.Client.InsertTx.
func NewPGGateway(pool *pgxpool.Pool, insertConfirm InsertConfirmInvoiceTxFunc, confirmDelay time.Duration) *PGGateway {
	return &PGGateway{pool: pool, insertConfirm: insertConfirm, confirmDelay: confirmDelay}
}

var _ Gateway = (*PGGateway)(nil)

// Create inserts the invoice and enqueues its confirmation job in one
// transaction, so a committed invoice always has a scheduled settlement.
func (g *PGGateway) Create(ctx context.Context, amountCents int64, contractID, milestoneID uuid.UUID) (*Invoice, error) {
	if err := validateCreate(amountCents, contractID, milestoneID); err != nil {
		return nil, err
	}
	inv := &Invoice{
		ID:          uuid.New(),
		ContractID:  contractID,
		MilestoneID: milestoneID,
		AmountCents: amountCents,
		Status:      InvoiceStatusPending,
	}
	inv.QRURL = qrURL(inv.ID)

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create invoice: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (id, contract_id, milestone_id, amount_cents, status, qr_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, inv.ID, inv.ContractID, inv.MilestoneID, inv.AmountCents, inv.Status, inv.QRURL).Scan(&inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	runAt := time.Now().Add(g.confirmDelay)
	if err := g.insertConfirm(ctx, tx, ConfirmInvoiceJobArgs{InvoiceID: inv.ID}, runAt); err != nil {
		return nil, fmt.Errorf("schedule invoice confirmation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create invoice: %w", err)
	}
	return inv, nil
}

func (g *PGGateway) GetStatus(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	var status string
	err := g.pool.QueryRow(ctx, `
		SELECT status FROM invoices WHERE id = $1
	`, invoiceID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvoiceNotFound
		}
		return "", fmt.Errorf("read invoice status: %w", err)
	}
	return status, nil
}

// Confirm settles a pending invoice. Idempotent: confirming a paid invoice
// is a no-op, an unknown id is ErrInvoiceNotFound.
func (g *PGGateway) Confirm(ctx context.Context, invoiceID uuid.UUID) error {
	tag, err := g.pool.Exec(ctx, `
		UPDATE invoices SET status = $2 WHERE id = $1 AND status = $3
	`, invoiceID, InvoiceStatusPaid, InvoiceStatusPending)
	if err != nil {
		return fmt.Errorf("confirm invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := g.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoiceID).Scan(&exists); err != nil {
			return fmt.Errorf("confirm invoice lookup: %w", err)
		}
		if !exists {
			return ErrInvoiceNotFound
		}
	}
	return nil
}
