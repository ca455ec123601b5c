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
		{"0", 0, true}, // zero-price items are legal
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
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

func TestParseAmountLenient(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"12.50", 1250},
		{"garbage", 0},
		{"-3", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got.Cents != tc.out {
			t.Fatalf("%q expected %d cents, got %d", tc.in, tc.out, got.Cents)
		}
	}
}

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{12.50, 1250},
		{0.1, 10},
		{19.99, 1999},
		{0, 0},
		{-4, 0},
	}
	for _, tc := range cases {
		if got := CentsFromFloat(tc.in); got != tc.out {
			t.Fatalf("%v expected %d, got %d", tc.in, tc.out, got)
		}
	}
}

func TestRateApply(t *testing.T) {
	cases := []struct {
		rate  int64 // basis points
		cents int64
		want  int64
	}{
		{1000, 2450, 245}, // 10% of 24.50
		{1000, 1650, 165},
		{750, 1000, 75},  // 7.5% of 10.00
		{1000, 5, 1},     // 10% of 0.05 rounds half-up to a cent
		{0, 1234, 0},
	}
	for _, tc := range cases {
		got := Rate{BasisPoints: tc.rate}.Apply(Money{Cents: tc.cents})
		if got.Cents != tc.want {
			t.Fatalf("%d bp of %d: expected %d, got %d", tc.rate, tc.cents, tc.want, got.Cents)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1250}
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "12.50" {
		t.Fatalf("expected 12.50, got %s", b)
	}
	var back Money
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if back.Cents != 1250 {
		t.Fatalf("expected 1250 cents back, got %d", back.Cents)
	}
	// Legacy snapshots carry bare floats like 12.5
	if err := back.UnmarshalJSON([]byte("12.5")); err != nil {
		t.Fatal(err)
	}
	if back.Cents != 1250 {
		t.Fatalf("expected 1250 cents from 12.5, got %d", back.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 5}).String(); s != "0.05" {
		t.Fatalf("expected 0.05, got %s", s)
	}
	if s := (Money{Cents: 123456}).String(); s != "1234.56" {
		t.Fatalf("expected 1234.56, got %s", s)
	}
}
