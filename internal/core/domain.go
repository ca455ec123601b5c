package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// LineItem is one priced entry on a person's share of the bill.
	LineItem struct {
		Description string `json:"description"`
		Price       Money  `json:"price"`
	}

	// Person groups the line items one participant ordered.
	// Item order is display order; totals do not depend on it.
	Person struct {
		Name  string     `json:"name"`
		Items []LineItem `json:"items"`
	}

	// Bill is the persisted snapshot of a finished bill. The JSON shape
	// matches the historical saved-bill format, so old exports load back
	// without translation.
	Bill struct {
		ID            string    `json:"id"`
		Date          time.Time `json:"date"`
		Restaurant    string    `json:"restaurant"`
		Location      string    `json:"location"`
		TaxPercentage Rate      `json:"taxPercentage"`
		AdditionalFee Money     `json:"additionalFee"`
		Notes         string    `json:"notes,omitempty"`
		People        []Person  `json:"people"`
		// TotalAmount is frozen at save time, never recomputed on load.
		TotalAmount Money `json:"totalAmount"`
	}

	// Group is a reusable, named list of participant names.
	Group struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	// Template is a bill sans date and frozen total, reusable as a
	// starting point for a new bill.
	Template struct {
		Name          string   `json:"name"`
		Restaurant    string   `json:"restaurant,omitempty"`
		Location      string   `json:"location,omitempty"`
		TaxPercentage Rate     `json:"taxPercentage"`
		AdditionalFee Money    `json:"additionalFee"`
		People        []Person `json:"people"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrLastPerson    = errors.New("cannot remove the last person")
	ErrUnknownPerson = errors.New("person not found")
	ErrUnknownItem   = errors.New("item not found")
	ErrUnknownTarget = errors.New("assignment target not found")
	ErrBatchConsumed = errors.New("scan batch already applied")
	ErrEmptyName     = errors.New("empty name")
)

// ItemsTotal sums the person's line item prices in cents.
func (p Person) ItemsTotal() Money {
	var cents int64
	for _, it := range p.Items {
		cents += it.Price.Cents
	}
	return Money{Cents: cents}
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return errors.New("bill id cannot be empty")
	}
	if b.Date.IsZero() {
		return errors.New("bill date cannot be zero")
	}
	if len(b.People) == 0 {
		return errors.New("bill must have at least one person")
	}
	for _, p := range b.People {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Members) == 0 {
		return errors.New("group must have at least one member")
	}
	for _, m := range g.Members {
		if strings.TrimSpace(m) == "" {
			return ErrEmptyName
		}
	}
	return nil
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.People) == 0 {
		return errors.New("template must have at least one person")
	}
	return nil
}
