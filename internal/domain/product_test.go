package domain

import "testing"

func TestProductVisible(t *testing.T) {
	tests := []struct {
		name    string
		active  bool
		deleted bool
		want    bool
	}{
		{"active and live", true, false, true},
		{"inactive", false, false, false},
		{"tombstoned", true, true, false},
		{"inactive and tombstoned", false, true, false},
	}

	for _, tt := range tests {
		p := &Product{IsActive: tt.active, IsDeleted: tt.deleted}
		if got := p.Visible(); got != tt.want {
			t.Errorf("%s: Visible() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProductMarkDeleted(t *testing.T) {
	p := &Product{IsActive: true}
	p.InitTimestamps()

	p.MarkDeleted("user-1")

	if !p.IsDeleted {
		t.Error("expected IsDeleted")
	}
	if p.IsActive {
		t.Error("deleting should deactivate")
	}
	if p.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}
	if p.DeletedBy != "user-1" {
		t.Errorf("DeletedBy = %q, want user-1", p.DeletedBy)
	}
}

func TestProductClearDeleted(t *testing.T) {
	p := &Product{IsActive: true}
	p.InitTimestamps()
	p.MarkDeleted("user-1")

	p.ClearDeleted()

	if p.IsDeleted {
		t.Error("expected tombstone cleared")
	}
	if p.DeletedAt != nil || p.DeletedBy != "" {
		t.Error("expected deletion audit fields cleared")
	}
	if p.IsActive {
		t.Error("restore should not reactivate automatically")
	}
}

func TestCustomerMainPhone(t *testing.T) {
	c := &Customer{Phones: []*PhoneNumber{
		{Auditable: Auditable{ID: "phone-1"}},
		{Auditable: Auditable{ID: "phone-2"}, IsMain: true},
	}}

	main := c.MainPhone()
	if main == nil || main.ID != "phone-2" {
		t.Errorf("MainPhone() = %+v, want phone-2", main)
	}

	if (&Customer{}).MainPhone() != nil {
		t.Error("expected nil for customer without phones")
	}
}
