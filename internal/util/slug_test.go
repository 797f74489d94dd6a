package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Cold Cup 24oz", "cold-cup-24oz"},
		{"Mugs", "mugs"},
		{"  Mugs / Cups ", "mugs-cups"},
		{"Ly Sứ Trắng", "ly-su-trang"},
		{"Bình Giữ Nhiệt", "binh-giu-nhiet"},
		{"Ly Đá", "ly-da"},
		{"SLOW_BURN", "slow-burn"},
		{"--leading--", "leading"},
		{"🍵 Tea Cups!", "tea-cups"},
		{"multi   word", "multi-word"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
