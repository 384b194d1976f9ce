package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoney_MulFloat(t *testing.T) {
	cases := []struct {
		cents  int64
		factor float64
		want   int64
	}{
		{1000, 1, 1000},
		{1000, 0.5, 500},
		{1000, 4.33, 4330},
		{1000, 1.0 / 12, 83}, // 83.33 rounds down
		{-1000, 0.5, -500},
		{999, 0.335, 335}, // 334.665 rounds up
	}
	for _, tc := range cases {
		got := Money{Cents: tc.cents}.MulFloat(tc.factor)
		if got.Cents != tc.want {
			t.Errorf("%d * %v expected %d, got %d", tc.cents, tc.factor, tc.want, got.Cents)
		}
	}
}

func TestMoney_Format(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34 EUR"},
		{-1234, "-12.34 EUR"},
		{5, "0.05 EUR"},
		{0, "0.00 EUR"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format("EUR"); got != tc.want {
			t.Errorf("%d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := Money{Cents: 300}
	b := Money{Cents: 120}
	if got := a.Add(b).Cents; got != 420 {
		t.Errorf("Add expected 420, got %d", got)
	}
	if got := a.Sub(b).Cents; got != 180 {
		t.Errorf("Sub expected 180, got %d", got)
	}
	if got := b.Neg().Cents; got != -120 {
		t.Errorf("Neg expected -120, got %d", got)
	}
}
