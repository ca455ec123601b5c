package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPersonItemsTotal(t *testing.T) {
	p := Person{
		Name: "Person 1",
		Items: []LineItem{
			{Description: "Burger", Price: Money{Cents: 1250}},
			{Description: "Fries", Price: Money{Cents: 400}},
			{Description: "Water", Price: Money{Cents: 0}},
		},
	}
	if got := p.ItemsTotal(); got.Cents != 1650 {
		t.Fatalf("expected 1650, got %d", got.Cents)
	}
}

func TestBillValidate(t *testing.T) {
	good := Bill{
		ID:     "1",
		Date:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		People: []Person{{Name: "Person 1"}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Bill{
		{ID: "", Date: good.Date, People: good.People},
		{ID: "1", Date: time.Time{}, People: good.People},
		{ID: "1", Date: good.Date, People: nil},
		{ID: "1", Date: good.Date, People: []Person{{Name: "  "}}},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGroupValidate(t *testing.T) {
	if err := (Group{Name: "Friday", Members: []string{"Ada", "Bo"}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Group{Name: "", Members: []string{"Ada"}}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := (Group{Name: "Friday"}).Validate(); err == nil {
		t.Fatal("expected error for empty member list")
	}
}

// The JSON shape is the historical saved-bill schema: prices are decimal
// numbers, the tax is a percent number. A snapshot written by the old app
// must decode losslessly.
func TestBillJSONSchema(t *testing.T) {
	legacy := `{
		"id": "1712000000000",
		"date": "2026-08-01T19:30:00Z",
		"restaurant": "Luigi",
		"location": "Rome",
		"taxPercentage": 10,
		"additionalFee": 4,
		"notes": "team dinner",
		"people": [
			{"name": "Person 1", "items": [{"description": "Burger", "price": 12.5}, {"description": "Fries", "price": 4}]},
			{"name": "Person 2", "items": [{"description": "Pasta", "price": 8}]}
		],
		"totalAmount": 30.95
	}`
	var b Bill
	if err := json.Unmarshal([]byte(legacy), &b); err != nil {
		t.Fatal(err)
	}
	if b.TaxPercentage.BasisPoints != 1000 {
		t.Fatalf("expected 1000 bp, got %d", b.TaxPercentage.BasisPoints)
	}
	if b.AdditionalFee.Cents != 400 {
		t.Fatalf("expected 400 cents fee, got %d", b.AdditionalFee.Cents)
	}
	if b.People[0].Items[0].Price.Cents != 1250 {
		t.Fatalf("expected 1250 cents, got %d", b.People[0].Items[0].Price.Cents)
	}
	if b.TotalAmount.Cents != 3095 {
		t.Fatalf("expected 3095 cents total, got %d", b.TotalAmount.Cents)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	var back Bill
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.TotalAmount != b.TotalAmount || back.People[0].Items[0].Price != b.People[0].Items[0].Price {
		t.Fatal("round-trip changed amounts")
	}
}
