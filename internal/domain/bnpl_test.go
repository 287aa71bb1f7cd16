package domain

import "testing"

func TestClampUsageFraction(t *testing.T) {
	tests := []struct {
		name  string
		usage int64
		limit int64
		want  float64
	}{
		{name: "zero limit yields zero", usage: 150000, limit: 0, want: 0},
		{name: "negative limit yields zero", usage: 150000, limit: -1, want: 0},
		{name: "half used", usage: 150000, limit: 300000, want: 0.5},
		{name: "unused account", usage: 0, limit: 300000, want: 0},
		{name: "fully used", usage: 300000, limit: 300000, want: 1},
		{name: "over limit clamps to one", usage: 450000, limit: 300000, want: 1},
		{name: "negative usage clamps to zero", usage: -100, limit: 300000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampUsageFraction(tt.usage, tt.limit)
			if got != tt.want {
				t.Fatalf("ClampUsageFraction(%d, %d) = %f, want %f", tt.usage, tt.limit, got, tt.want)
			}
		})
	}
}

func TestAvailableAmount(t *testing.T) {
	account := &BnplAccount{UsageAmount: 120000, CreditLimit: 300000}
	if got := account.AvailableAmount(); got != 180000 {
		t.Fatalf("expected available amount 180000, got %d", got)
	}

	exhausted := &BnplAccount{UsageAmount: 300000, CreditLimit: 300000}
	if got := exhausted.AvailableAmount(); got != 0 {
		t.Fatalf("expected available amount 0 for exhausted account, got %d", got)
	}
}

func TestValidPaymentDay(t *testing.T) {
	for _, day := range []int{5, 15, 25} {
		if !ValidPaymentDay(day) {
			t.Fatalf("expected day %d to be valid", day)
		}
	}
	for _, day := range []int{0, 1, 10, 20, 26, -5} {
		if ValidPaymentDay(day) {
			t.Fatalf("expected day %d to be invalid", day)
		}
	}
}
