package credit

import "testing"

func TestCredits(t *testing.T) {
	p := DefaultPricing()
	tests := []struct {
		costUSD float64
		want    int64
	}{
		{0.01, 4}, // ceil(0.01 * 1.75 / 0.005) = ceil(3.5) = 4
		{0, 0},
		{-1, 0},
		{0.005, 2},  // ceil(1.75)
		{0.0028, 1}, // ceil(0.98)
	}
	for _, tt := range tests {
		if got := p.Credits(tt.costUSD); got != tt.want {
			t.Errorf("Credits(%v) = %d, want %d", tt.costUSD, got, tt.want)
		}
	}
}

func TestCredits_OverriddenPricing(t *testing.T) {
	p := Pricing{MarginMultiplier: 2.0, CreditUnitPrice: 0.01}
	if got := p.Credits(0.05); got != 10 {
		t.Errorf("Credits(0.05) with 2.0/0.01 = %d, want 10", got)
	}
}

func TestCredits_ZeroUnitFallsBack(t *testing.T) {
	p := Pricing{MarginMultiplier: 1.75}
	if got := p.Credits(0.01); got != 4 {
		t.Errorf("zero unit price should fall back to default: got %d", got)
	}
}
