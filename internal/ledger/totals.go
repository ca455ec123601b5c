package ledger

import "splitinvoice/internal/core"

// PersonTotal is one person's share of the computed bill.
type PersonTotal struct {
	Name      string     `json:"name"`
	FoodTotal core.Money `json:"foodTotal"`
	TaxShare  core.Money `json:"taxShare"`
	FeeShare  core.Money `json:"feeShare"`
	Total     core.Money `json:"total"`
}

// BillTotals is the full monetary breakdown of a bill. The invariant
// GrandTotal == FoodTotal + TaxAmount + AdditionalFee holds exactly in
// cents, as do the per-person sums against their bill-level aggregates.
type BillTotals struct {
	TaxRate       core.Rate     `json:"taxPercentage"`
	FoodTotal     core.Money    `json:"foodTotal"`
	TaxAmount     core.Money    `json:"taxAmount"`
	AdditionalFee core.Money    `json:"additionalFee"`
	GrandTotal    core.Money    `json:"grandTotal"`
	People        []PersonTotal `json:"people"`
}

// ComputeTotals derives the breakdown for the given tax rate and flat fee.
// It is a pure function over the current person/item state.
//
// Per person: foodTotal is the sum of item prices; the fee is split evenly
// (flat-even-split, not proportional) with the cent remainder assigned to
// the earliest people so the shares sum exactly to the fee; the tax amount
// is computed on the aggregate food total and distributed proportionally to
// each person's food total, largest remainder first, so the shares sum
// exactly to the bill-level tax.
func (l *Ledger) ComputeTotals(taxRate core.Rate, additionalFee core.Money) BillTotals {
	n := len(l.people)
	totals := BillTotals{
		TaxRate:       taxRate,
		AdditionalFee: additionalFee,
		People:        make([]PersonTotal, n),
	}

	var foodCents int64
	for i, p := range l.people {
		pt := p.ItemsTotal()
		totals.People[i] = PersonTotal{Name: p.Name, FoodTotal: pt}
		foodCents += pt.Cents
	}
	totals.FoodTotal = core.Money{Cents: foodCents}
	totals.TaxAmount = taxRate.Apply(totals.FoodTotal)
	totals.GrandTotal = core.Money{
		Cents: totals.FoodTotal.Cents + totals.TaxAmount.Cents + additionalFee.Cents,
	}

	feeShares := splitEven(additionalFee.Cents, n)
	taxShares := splitProportional(totals.TaxAmount.Cents, totals.People, foodCents)
	for i := range totals.People {
		p := &totals.People[i]
		p.FeeShare = core.Money{Cents: feeShares[i]}
		p.TaxShare = core.Money{Cents: taxShares[i]}
		p.Total = core.Money{Cents: p.FoodTotal.Cents + p.TaxShare.Cents + p.FeeShare.Cents}
	}
	return totals
}

// splitEven divides cents into n equal shares; the remainder goes one cent
// at a time to the earliest shares, keeping the sum exact.
func splitEven(cents int64, n int) []int64 {
	shares := make([]int64, n)
	if n == 0 {
		return shares
	}
	base := cents / int64(n)
	rem := cents % int64(n)
	for i := range shares {
		shares[i] = base
		if int64(i) < rem {
			shares[i]++
		}
	}
	return shares
}

// splitProportional distributes cents across people in proportion to their
// food totals using the largest-remainder method (ties to the earliest
// person). When nobody ordered anything the whole amount is zero anyway.
func splitProportional(cents int64, people []PersonTotal, foodCents int64) []int64 {
	shares := make([]int64, len(people))
	if cents == 0 || foodCents == 0 {
		return shares
	}
	type frac struct {
		idx int
		rem int64
	}
	fracs := make([]frac, len(people))
	var assigned int64
	for i, p := range people {
		num := cents * p.FoodTotal.Cents
		shares[i] = num / foodCents
		fracs[i] = frac{idx: i, rem: num % foodCents}
		assigned += shares[i]
	}
	// Hand out the leftover cents to the largest remainders.
	for left := cents - assigned; left > 0; left-- {
		best := -1
		for i := range fracs {
			if fracs[i].rem < 0 {
				continue
			}
			if best == -1 || fracs[i].rem > fracs[best].rem {
				best = i
			}
		}
		if best == -1 {
			break
		}
		shares[fracs[best].idx]++
		fracs[best].rem = -1
	}
	return shares
}
