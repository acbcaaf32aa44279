package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type stubConfirmer struct {
	confirmed []uuid.UUID
	err       error
}

func (s *stubConfirmer) Confirm(_ context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.confirmed = append(s.confirmed, id)
	return nil
}

func confirmJob(id uuid.UUID) *river.Job[ConfirmInvoiceJobArgs] {
	return &river.Job[ConfirmInvoiceJobArgs]{Args: ConfirmInvoiceJobArgs{InvoiceID: id}}
}

func TestConfirmInvoiceWorker_Confirms(t *testing.T) {
	gateway := &stubConfirmer{}
	worker := NewConfirmInvoiceWorker(gateway)
	id := uuid.New()

	if err := worker.Work(context.Background(), confirmJob(id)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if len(gateway.confirmed) != 1 || gateway.confirmed[0] != id {
		t.Errorf("confirmed invoices: got %v, want [%s]", gateway.confirmed, id)
	}
}

func TestConfirmInvoiceWorker_MissingInvoiceIsNotRetried(t *testing.T) {
	worker := NewConfirmInvoiceWorker(&stubConfirmer{err: ErrInvoiceNotFound})

	if err := worker.Work(context.Background(), confirmJob(uuid.New())); err != nil {
		t.Fatalf("missing invoice should complete the job, got: %v", err)
	}
}

func TestConfirmInvoiceWorker_TransientFailurePropagates(t *testing.T) {
	cause := errors.New("connection refused")
	worker := NewConfirmInvoiceWorker(&stubConfirmer{err: cause})

	err := worker.Work(context.Background(), confirmJob(uuid.New()))
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped transient error, got: %v", err)
	}
}
