// Package scan maps externally recognized invoice line items onto a ledger.
// A Batch holds staged candidates awaiting per-item assignment; Apply merges
// them into the ledger exactly once.
package scan

import (
	"fmt"
	"strings"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
	"splitinvoice/internal/recognition"
)

// TargetKind says where an assigned candidate goes.
type TargetKind string

const (
	TargetIgnore TargetKind = "ignore"
	TargetPerson TargetKind = "person"
	TargetFee    TargetKind = "additionalFee"
)

type (
	// Target is a candidate's destination. Person is set only for
	// TargetPerson.
	Target struct {
		Kind   TargetKind `json:"kind"`
		Person string     `json:"person,omitempty"`
	}

	// Candidate is a staged line item, not yet part of any bill.
	Candidate struct {
		Description string     `json:"description"`
		Price       core.Money `json:"price"`
		Target      Target     `json:"target"`
	}

	// Batch is one staged set of candidates. A batch is consumed by its
	// first Apply; re-applying without re-staging is refused.
	Batch struct {
		candidates []Candidate
		applied    bool
	}

	// ApplyResult summarizes one Apply run. Skipped counts candidates
	// dropped for lacking both a description and a usable price; they are
	// reported in aggregate, not per item.
	ApplyResult struct {
		Assigned int        `json:"assigned"`
		FeeAdded core.Money `json:"feeAdded"`
		Skipped  int        `json:"skipped"`
	}
)

// StageCandidates normalizes raw recognition output into a batch: an
// unparseable or missing price becomes zero, and a priced item with no
// description gets a placeholder label. Every candidate starts unassigned.
func StageCandidates(raw []recognition.RawLineItem) *Batch {
	b := &Batch{candidates: make([]Candidate, 0, len(raw))}
	for i, item := range raw {
		var cents int64
		if item.Price != nil {
			cents = core.CentsFromFloat(*item.Price)
		}
		desc := strings.TrimSpace(item.Description)
		if desc == "" && cents > 0 {
			desc = fmt.Sprintf("Scanned Item %d", i+1)
		}
		b.candidates = append(b.candidates, Candidate{
			Description: desc,
			Price:       core.Money{Cents: cents},
			Target:      Target{Kind: TargetIgnore},
		})
	}
	return b
}

// Candidates returns a copy of the staged candidates.
func (b *Batch) Candidates() []Candidate {
	return append([]Candidate(nil), b.candidates...)
}

// SetTarget assigns candidate i to a destination. A person target must name
// someone currently on the ledger; otherwise core.ErrUnknownTarget.
func (b *Batch) SetTarget(i int, target Target, l *ledger.Ledger) error {
	if i < 0 || i >= len(b.candidates) {
		return core.ErrUnknownItem
	}
	switch target.Kind {
	case TargetIgnore, TargetFee:
	case TargetPerson:
		if l.FindPerson(target.Person) == -1 {
			return fmt.Errorf("%w: %q", core.ErrUnknownTarget, target.Person)
		}
	default:
		return fmt.Errorf("%w: kind %q", core.ErrUnknownTarget, target.Kind)
	}
	b.candidates[i].Target = target
	return nil
}

// Apply merges the batch into the ledger: fee candidates increment the
// additional fee, person candidates become new line items. The ledger is
// never partially mutated: all person targets are re-validated before any
// change. The batch is consumed; a second Apply returns ErrBatchConsumed.
func (b *Batch) Apply(l *ledger.Ledger) (ApplyResult, error) {
	if b.applied {
		return ApplyResult{}, core.ErrBatchConsumed
	}
	// Validate first so a stale person target cannot half-apply the batch.
	for _, c := range b.candidates {
		if c.Target.Kind == TargetPerson && l.FindPerson(c.Target.Person) == -1 {
			return ApplyResult{}, fmt.Errorf("%w: %q", core.ErrUnknownTarget, c.Target.Person)
		}
	}

	var result ApplyResult
	for _, c := range b.candidates {
		if c.Description == "" && c.Price.IsZero() {
			result.Skipped++
			continue
		}
		switch c.Target.Kind {
		case TargetFee:
			l.AddToAdditionalFee(c.Price)
			result.FeeAdded = result.FeeAdded.Add(c.Price)
			result.Assigned++
		case TargetPerson:
			idx := l.FindPerson(c.Target.Person)
			if _, err := l.AddItem(idx, c.Description, c.Price); err != nil {
				return result, err
			}
			result.Assigned++
		}
	}
	b.applied = true
	return result, nil
}
