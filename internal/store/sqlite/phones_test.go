package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/primary"
	"github.com/mughouse/mughouse-server/internal/store"
)

func makeCustomer(id, name string) *domain.Customer {
	c := &domain.Customer{FullName: name}
	c.ID = id
	c.InitTimestamps()
	return c
}

func makePhone(id, customerID, value string, main bool, createdAt time.Time) *primary.Item {
	return &primary.Item{
		ID:        id,
		OwnerID:   customerID,
		Value:     value,
		Main:      main,
		CreatedAt: createdAt,
	}
}

func TestPhoneTxRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, makeCustomer("cust-1", "Lan Nguyen")); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	base := time.Now().UTC()
	err := s.Phones().InTx(ctx, func(tx primary.Tx) error {
		ok, err := tx.OwnerExists(ctx, "cust-1")
		if err != nil || !ok {
			t.Fatalf("OwnerExists = (%v, %v), want (true, nil)", ok, err)
		}
		if err := tx.Insert(ctx, makePhone("ph-1", "cust-1", "+84901112222", true, base)); err != nil {
			return err
		}
		return tx.Insert(ctx, makePhone("ph-2", "cust-1", "+84903334444", false, base.Add(time.Second)))
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	items, err := s.ListPhones(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d phones, want 2", len(items))
	}
	// Oldest first.
	if items[0].ID != "ph-1" || !items[0].Main {
		t.Errorf("unexpected first phone: %+v", items[0])
	}

	got, err := s.GetPhone(ctx, "ph-2")
	if err != nil {
		t.Fatalf("get phone: %v", err)
	}
	if got.OwnerID != "cust-1" || got.Value != "+84903334444" || got.Main {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPhoneTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, makeCustomer("cust-1", "Lan Nguyen")); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	failErr := store.ErrInvalidInput
	err := s.Phones().InTx(ctx, func(tx primary.Tx) error {
		if err := tx.Insert(ctx, makePhone("ph-1", "cust-1", "+84901112222", true, time.Now())); err != nil {
			return err
		}
		return failErr
	})
	if err != failErr {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	items, err := s.ListPhones(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("rollback leaked %d rows", len(items))
	}
}

// The partial unique index is the storage-level backstop for the
// one-main-per-customer rule. Two main rows must be impossible even if a
// caller bypasses the coordinator.
func TestPhoneMainUniqueIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, makeCustomer("cust-1", "Lan Nguyen")); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	err := s.Phones().InTx(ctx, func(tx primary.Tx) error {
		return tx.Insert(ctx, makePhone("ph-1", "cust-1", "+84901112222", true, time.Now()))
	})
	if err != nil {
		t.Fatalf("first main: %v", err)
	}

	err = s.Phones().InTx(ctx, func(tx primary.Tx) error {
		return tx.Insert(ctx, makePhone("ph-2", "cust-1", "+84903334444", true, time.Now()))
	})
	if err == nil {
		t.Fatal("second main row inserted; unique index missing")
	}

	// A second main for a different customer is fine.
	if err := s.CreateCustomer(ctx, makeCustomer("cust-2", "Minh Tran")); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	err = s.Phones().InTx(ctx, func(tx primary.Tx) error {
		return tx.Insert(ctx, makePhone("ph-3", "cust-2", "+84905556666", true, time.Now()))
	})
	if err != nil {
		t.Fatalf("other customer's main: %v", err)
	}
}

// End-to-end through the coordinator against the real store: phones cascade
// when the customer is deleted, and detail reads attach phones.
func TestCustomerPhonesAttached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCustomer(ctx, makeCustomer("cust-1", "Lan Nguyen")); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	base := time.Now().UTC()
	err := s.Phones().InTx(ctx, func(tx primary.Tx) error {
		if err := tx.Insert(ctx, makePhone("ph-1", "cust-1", "+84901112222", true, base)); err != nil {
			return err
		}
		return tx.Insert(ctx, makePhone("ph-2", "cust-1", "+84903334444", false, base.Add(time.Second)))
	})
	if err != nil {
		t.Fatalf("seed phones: %v", err)
	}

	c, err := s.GetCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if len(c.Phones) != 2 {
		t.Fatalf("got %d phones attached, want 2", len(c.Phones))
	}
	main := c.MainPhone()
	if main == nil || main.Value != "+84901112222" {
		t.Errorf("MainPhone = %+v", main)
	}

	if err := s.DeleteCustomer(ctx, "cust-1"); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	items, err := s.ListPhones(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("phones did not cascade: %d rows left", len(items))
	}
}
