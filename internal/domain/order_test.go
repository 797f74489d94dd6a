package domain

import "testing"

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderConfirmed, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderPending, OrderShipped, false},
		{OrderDelivered, OrderConfirmed, false},
		{OrderPending, OrderCancelled, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderShipped, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderCancelled, false},
		{OrderCancelled, OrderConfirmed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderTotal(t *testing.T) {
	o := &Order{
		Items: []*OrderItem{
			{Quantity: 2, UnitPrice: 15000},
			{Quantity: 1, UnitPrice: 32000},
		},
	}
	if got := o.Total(); got != 62000 {
		t.Errorf("Total() = %d, want 62000", got)
	}
}
