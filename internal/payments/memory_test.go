package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryGateway_CreateReturnsPendingWithQR(t *testing.T) {
	g := NewMemoryGateway(time.Hour)

	inv, err := g.Create(context.Background(), 25_000, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.Status != InvoiceStatusPending {
		t.Errorf("status: got %s, want pending", inv.Status)
	}
	if want := fmt.Sprintf("https://pay.workbridge.dev/qr/%s.png", inv.ID); inv.QRURL != want {
		t.Errorf("qr url: got %s, want %s", inv.QRURL, want)
	}

	status, err := g.GetStatus(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != InvoiceStatusPending {
		t.Errorf("fresh invoice status: got %s, want pending", status)
	}
}

func TestMemoryGateway_SettlesAfterDelay(t *testing.T) {
	g := NewMemoryGateway(20 * time.Millisecond)

	inv, err := g.Create(context.Background(), 25_000, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, err := g.GetStatus(context.Background(), inv.ID)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if status == InvoiceStatusPaid {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("invoice never settled, still %s", status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryGateway_CreateValidation(t *testing.T) {
	g := NewMemoryGateway(time.Hour)

	cases := []struct {
		name      string
		amount    int64
		contract  uuid.UUID
		milestone uuid.UUID
	}{
		{"zero amount", 0, uuid.New(), uuid.New()},
		{"negative amount", -500, uuid.New(), uuid.New()},
		{"missing contract", 10_000, uuid.Nil, uuid.New()},
		{"missing milestone", 10_000, uuid.New(), uuid.Nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Create(context.Background(), tc.amount, tc.contract, tc.milestone)
			if !errors.Is(err, ErrInvalidInvoice) {
				t.Fatalf("expected ErrInvalidInvoice, got: %v", err)
			}
		})
	}
}

func TestMemoryGateway_UnknownInvoice(t *testing.T) {
	g := NewMemoryGateway(time.Hour)

	if _, err := g.GetStatus(context.Background(), uuid.New()); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("GetStatus: expected ErrInvoiceNotFound, got: %v", err)
	}
	if err := g.Confirm(context.Background(), uuid.New()); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("Confirm: expected ErrInvoiceNotFound, got: %v", err)
	}
}

func TestMemoryGateway_ConfirmIsIdempotent(t *testing.T) {
	g := NewMemoryGateway(time.Hour)

	inv, err := g.Create(context.Background(), 25_000, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := g.Confirm(context.Background(), inv.ID); err != nil {
			t.Fatalf("Confirm #%d: %v", i+1, err)
		}
	}
	status, err := g.GetStatus(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != InvoiceStatusPaid {
		t.Errorf("status after repeated confirms: got %s, want paid", status)
	}
}
