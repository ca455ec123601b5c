// Package ledger holds the in-memory bill model (people, items, tax, fee)
// and derives per-person and grand totals from it. It is the single source
// of truth for bill arithmetic; rendering layers only project its output.
package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"splitinvoice/internal/core"
)

// Ledger is a mutable editing session for one bill. It is not safe for
// concurrent use; one session edits one ledger at a time.
type Ledger struct {
	people        []core.Person
	taxRate       core.Rate
	additionalFee core.Money
}

// New returns a ledger seeded with n default-named people, one empty item
// row each. n is clamped to at least 1: a bill with zero people is undefined.
func New(n int) *Ledger {
	if n < 1 {
		n = 1
	}
	l := &Ledger{}
	for i := 0; i < n; i++ {
		l.AddPerson("")
	}
	return l
}

// FromBill rebuilds an editing session from a saved snapshot. Totals
// computed on the restored ledger match the snapshot's frozen amounts.
func FromBill(b core.Bill) *Ledger {
	l := &Ledger{
		taxRate:       b.TaxPercentage,
		additionalFee: b.AdditionalFee,
	}
	for _, p := range b.People {
		cp := core.Person{Name: p.Name, Items: append([]core.LineItem(nil), p.Items...)}
		l.people = append(l.people, cp)
	}
	if len(l.people) == 0 {
		l.AddPerson("")
	}
	return l
}

// FromGroup seeds a ledger with the group's members, one empty row each.
func FromGroup(g core.Group) *Ledger {
	l := &Ledger{}
	for _, name := range g.Members {
		l.AddPerson(name)
	}
	if len(l.people) == 0 {
		l.AddPerson("")
	}
	return l
}

// FromTemplate seeds a ledger from a saved template.
func FromTemplate(t core.Template) *Ledger {
	return FromBill(core.Bill{
		TaxPercentage: t.TaxPercentage,
		AdditionalFee: t.AdditionalFee,
		People:        t.People,
	})
}

var defaultNameRe = regexp.MustCompile(`^Person \d+$`)

// AddPerson appends a person with one empty item row. An empty name yields
// the default "Person N" for creation index N. Always succeeds.
func (l *Ledger) AddPerson(name string) *core.Person {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Person %d", len(l.people)+1)
	}
	l.people = append(l.people, core.Person{
		Name:  name,
		Items: []core.LineItem{{}},
	})
	return &l.people[len(l.people)-1]
}

// RemovePerson removes the person at index i. Removing the last remaining
// person is refused with core.ErrLastPerson. Default-named people are
// renumbered sequentially afterwards; custom names are left untouched.
func (l *Ledger) RemovePerson(i int) error {
	if i < 0 || i >= len(l.people) {
		return core.ErrUnknownPerson
	}
	if len(l.people) == 1 {
		return core.ErrLastPerson
	}
	l.people = append(l.people[:i], l.people[i+1:]...)
	for idx := range l.people {
		if defaultNameRe.MatchString(l.people[idx].Name) {
			l.people[idx].Name = fmt.Sprintf("Person %d", idx+1)
		}
	}
	return nil
}

// RenamePerson sets a custom name on the person at index i.
func (l *Ledger) RenamePerson(i int, name string) error {
	if i < 0 || i >= len(l.people) {
		return core.ErrUnknownPerson
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	l.people[i].Name = name
	return nil
}

// AddItem appends an item to the person at index i.
func (l *Ledger) AddItem(i int, description string, price core.Money) (*core.LineItem, error) {
	if i < 0 || i >= len(l.people) {
		return nil, core.ErrUnknownPerson
	}
	p := &l.people[i]
	p.Items = append(p.Items, core.LineItem{Description: description, Price: price})
	return &p.Items[len(p.Items)-1], nil
}

// RemoveItem removes item j from person i. A person with zero items is
// legal in the ledger; the always-one-row rule is a cosmetic UI concern.
func (l *Ledger) RemoveItem(i, j int) error {
	if i < 0 || i >= len(l.people) {
		return core.ErrUnknownPerson
	}
	p := &l.people[i]
	if j < 0 || j >= len(p.Items) {
		return core.ErrUnknownItem
	}
	p.Items = append(p.Items[:j], p.Items[j+1:]...)
	return nil
}

// FindPerson returns the index of the person with the given name, or -1.
func (l *Ledger) FindPerson(name string) int {
	for i := range l.people {
		if l.people[i].Name == name {
			return i
		}
	}
	return -1
}

// People returns a copy of the current people slice.
func (l *Ledger) People() []core.Person {
	out := make([]core.Person, len(l.people))
	for i, p := range l.people {
		out[i] = core.Person{Name: p.Name, Items: append([]core.LineItem(nil), p.Items...)}
	}
	return out
}

// PersonCount reports how many people are on the bill.
func (l *Ledger) PersonCount() int {
	return len(l.people)
}

// SetTaxRate sets the bill-level tax percentage.
func (l *Ledger) SetTaxRate(r core.Rate) { l.taxRate = r }

// TaxRate returns the bill-level tax percentage.
func (l *Ledger) TaxRate() core.Rate { return l.taxRate }

// SetAdditionalFee sets the flat fee split evenly across all people.
func (l *Ledger) SetAdditionalFee(m core.Money) { l.additionalFee = m }

// AddToAdditionalFee increments the flat fee, used when a scanned line item
// is routed to the fee rather than to a person.
func (l *Ledger) AddToAdditionalFee(m core.Money) { l.additionalFee = l.additionalFee.Add(m) }

// AdditionalFee returns the current flat fee.
func (l *Ledger) AdditionalFee() core.Money { return l.additionalFee }

// Totals computes the breakdown using the ledger's stored tax and fee.
func (l *Ledger) Totals() BillTotals {
	return l.ComputeTotals(l.taxRate, l.additionalFee)
}

// Snapshot freezes the ledger into a persistable Bill. A missing ID gets a
// fresh UUID and a zero date becomes now.
func (l *Ledger) Snapshot(restaurant, location, notes string) core.Bill {
	totals := l.Totals()
	return core.Bill{
		ID:            uuid.NewString(),
		Date:          time.Now().UTC(),
		Restaurant:    restaurant,
		Location:      location,
		Notes:         notes,
		TaxPercentage: l.taxRate,
		AdditionalFee: l.additionalFee,
		People:        l.People(),
		TotalAmount:   totals.GrandTotal,
	}
}
