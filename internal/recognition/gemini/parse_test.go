package gemini

import (
	"errors"
	"testing"

	"splitinvoice/internal/recognition"
)

func TestParseResult(t *testing.T) {
	raw := `{"lineItems": [{"description": "Burger", "price": 12.50}, {"description": "Fries", "price": 4.00}], "tax": 1.32, "grandTotal": 17.82}`
	result, err := parseResult(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.LineItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.LineItems))
	}
	if result.LineItems[0].Description != "Burger" || *result.LineItems[0].Price != 12.50 {
		t.Fatalf("unexpected first item: %+v", result.LineItems[0])
	}
	if *result.Tax != 1.32 || *result.GrandTotal != 17.82 {
		t.Fatalf("unexpected hints: tax=%v total=%v", result.Tax, result.GrandTotal)
	}
}

func TestParseResultNulls(t *testing.T) {
	raw := `{"lineItems": [{"description": "Mystery", "price": null}], "tax": null, "grandTotal": null}`
	result, err := parseResult(raw)
	if err != nil {
		t.Fatal(err)
	}
	if result.LineItems[0].Price != nil {
		t.Fatal("expected nil price")
	}
	if result.Tax != nil || result.GrandTotal != nil {
		t.Fatal("expected nil hints")
	}
}

func TestParseResultFenced(t *testing.T) {
	raw := "```json\n{\"lineItems\": [{\"description\": \"Pasta\", \"price\": 8}], \"tax\": null, \"grandTotal\": null}\n```"
	result, err := parseResult(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.LineItems) != 1 || result.LineItems[0].Description != "Pasta" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseResultMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json at all", `{"lineItems": "nope"}`} {
		_, err := parseResult(raw)
		if !errors.Is(err, recognition.ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", raw, err)
		}
	}
}
