package http

import (
	"log/slog"
	"net/http"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
)

// billRequest is the editable bill state a client submits, either to
// compute totals or to save a snapshot.
type billRequest struct {
	Restaurant    string        `json:"restaurant"`
	Location      string        `json:"location"`
	Notes         string        `json:"notes"`
	TaxPercentage core.Rate     `json:"taxPercentage"`
	AdditionalFee core.Money    `json:"additionalFee"`
	People        []core.Person `json:"people"`
}

func (req *billRequest) ledger() *ledger.Ledger {
	return ledger.FromBill(core.Bill{
		TaxPercentage: req.TaxPercentage,
		AdditionalFee: req.AdditionalFee,
		People:        req.People,
	})
}

func (req *billRequest) validate() error {
	for _, p := range req.People {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// handleCalculate computes the per-person breakdown without persisting.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	totals := req.ledger().Totals()
	writeJSON(w, http.StatusOK, totals)
}

// handleSaveBill freezes the submitted bill state into a snapshot and
// persists it.
func (s *Server) handleSaveBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	bill := req.ledger().Snapshot(
		sanitizeInput(req.Restaurant),
		sanitizeInput(req.Location),
		sanitizeInput(req.Notes),
	)

	if err := s.bills.SaveBill(r.Context(), bill); err != nil {
		slog.ErrorContext(r.Context(), "Bill save failed", "error", err)
		writeDomainError(w, err)
		return
	}
	s.invalidateStats()

	writeJSON(w, http.StatusCreated, bill)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.ListBills(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Bill list failed", "error", err)
		writeDomainError(w, err)
		return
	}
	if bills == nil {
		bills = []core.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateStats()
	writeJSON(w, http.StatusNoContent, nil)
}
