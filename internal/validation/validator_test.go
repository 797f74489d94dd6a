package validation

import (
	"testing"

	apperrors "github.com/mughouse/mughouse-server/internal/errors"
)

type createProductRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	CapacityML int    `json:"capacity_ml" validate:"gte=0,lte=5000"`
	Material   string `json:"material" validate:"omitempty,oneof=ceramic stainless glass plastic"`
	UnitPrice  int64  `json:"unit_price" validate:"gt=0"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	err := v.Validate(createProductRequest{
		Name:       "White Ceramic Mug",
		CapacityML: 350,
		Material:   "ceramic",
		UnitPrice:  12500,
	})
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(createProductRequest{
		Name:       "x",
		CapacityML: 9000,
		Material:   "wood",
		UnitPrice:  0,
	})
	if err == nil {
		t.Fatal("invalid request accepted")
	}

	appErr, ok := err.(*apperrors.Error)
	if !ok {
		t.Fatalf("expected *apperrors.Error, got %T", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}

	// Details are keyed by JSON field name, not Go field name.
	details, ok := appErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("details type %T", appErr.Details)
	}
	for _, field := range []string{"name", "capacity_ml", "material", "unit_price"} {
		if _, present := details[field]; !present {
			t.Errorf("missing detail for %s: %v", field, details)
		}
	}
}
