package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("prod")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, "prod-") {
		t.Errorf("expected prod- prefix, got %q", got)
	}
	if len(got) != len("prod-")+idLength {
		t.Errorf("unexpected length %d for %q", len(got), got)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("cat")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestMustGenerate(t *testing.T) {
	got := MustGenerate("cust")
	if !strings.HasPrefix(got, "cust-") {
		t.Errorf("expected cust- prefix, got %q", got)
	}
}
