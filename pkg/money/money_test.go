package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithInterest(t *testing.T) {
	cases := []struct {
		principal, rate, want string
	}{
		{"500", "10", "550.00"},
		{"1000.00", "0", "1000.00"},
		{"333.33", "12.5", "375.00"},
		{"0.10", "10", "0.11"},
	}
	for _, c := range cases {
		got := WithInterest(decimal.RequireFromString(c.principal), decimal.RequireFromString(c.rate))
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Fatalf("WithInterest(%s, %s) = %s, want %s", c.principal, c.rate, got, c.want)
		}
	}
}

func TestIsCents(t *testing.T) {
	if !IsCents(decimal.RequireFromString("99.99")) {
		t.Fatalf("99.99 should be cents")
	}
	if !IsCents(decimal.RequireFromString("100")) {
		t.Fatalf("100 should be cents")
	}
	if IsCents(decimal.RequireFromString("10.001")) {
		t.Fatalf("10.001 must not be cents")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(decimal.NewFromInt(5)); got != "5.00" {
		t.Fatalf("Format = %q", got)
	}
}

func TestNoDriftOnRepeatedSubtraction(t *testing.T) {
	remaining := decimal.RequireFromString("1.00")
	step := decimal.RequireFromString("0.10")
	for i := 0; i < 10; i++ {
		remaining = remaining.Sub(step)
	}
	if !remaining.IsZero() {
		t.Fatalf("remaining = %s, want exactly 0", remaining)
	}
}
