package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
	"splitinvoice/internal/recognition"
	"splitinvoice/internal/scan"
)

// maxScanBodyBytes bounds scan uploads; the scan service enforces its own
// limit on the decoded image.
const maxScanBodyBytes = 16 << 20

// scanSessionResponse is the JSON view of a scan session.
type scanSessionResponse struct {
	ID           string           `json:"id"`
	State        scan.State       `json:"state"`
	Candidates   []scan.Candidate `json:"candidates,omitempty"`
	ScannedTax   *float64         `json:"scannedTax,omitempty"`
	ScannedTotal *float64         `json:"scannedTotal,omitempty"`
}

func sessionResponse(sess *scan.Session) scanSessionResponse {
	resp := scanSessionResponse{
		ID:           sess.ID,
		State:        sess.State,
		ScannedTax:   sess.Tax,
		ScannedTotal: sess.Total,
	}
	if sess.Batch != nil {
		resp.Candidates = sess.Batch.Candidates()
	}
	return resp
}

// readScanImage accepts either a multipart form with an "image" file or a
// JSON body {"image": <base64>, "mimeType": <type>}.
func readScanImage(r *http.Request) (recognition.Image, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxScanBodyBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("image")
		if err != nil {
			return recognition.Image{}, err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return recognition.Image{}, err
		}
		return recognition.Image{Data: data, MIMEType: header.Header.Get("Content-Type")}, nil
	}

	var req struct {
		Image    string `json:"image"`
		MIMEType string `json:"mimeType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return recognition.Image{}, err
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return recognition.Image{}, err
	}
	return recognition.Image{Data: data, MIMEType: req.MIMEType}, nil
}

// handleStartScan opens a scan session from an uploaded receipt image and
// runs recognition. On a recognition failure the session survives with the
// image retained, and its ID is reported so the client can rescan.
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	img, err := readScanImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scan upload: "+err.Error())
		return
	}

	sess, err := s.scans.Start(r.Context(), img)
	if err != nil {
		var id string
		if sess != nil {
			id = sess.ID
		}
		writeScanError(w, err, id)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	sess, err := s.scans.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// assignScanRequest routes one staged candidate. People carries the names
// currently on the client's ledger so person targets can be validated.
type assignScanRequest struct {
	Index  int         `json:"index"`
	Target scan.Target `json:"target"`
	People []string    `json:"people"`
}

func (s *Server) handleAssignScan(w http.ResponseWriter, r *http.Request) {
	var req assignScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	l := ledger.FromGroup(core.Group{Members: req.People})
	if err := s.scans.Assign(r.PathValue("id"), req.Index, req.Target, l); err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := s.scans.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// applyScanResponse returns the merged ledger state plus the apply
// summary. ScannedTax and ScannedTotal echo what the recognizer read off
// the receipt so the caller can reconcile them against the computed
// totals; they are never applied automatically.
type applyScanResponse struct {
	People        []core.Person     `json:"people"`
	TaxPercentage core.Rate         `json:"taxPercentage"`
	AdditionalFee core.Money        `json:"additionalFee"`
	Result        scan.ApplyResult  `json:"result"`
	Totals        ledger.BillTotals `json:"totals"`
	ScannedTax    *float64          `json:"scannedTax,omitempty"`
	ScannedTotal  *float64          `json:"scannedTotal,omitempty"`
}

// handleApplyScan merges the staged batch into the submitted ledger state.
// The ledger is returned unchanged when the apply is refused.
func (s *Server) handleApplyScan(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := s.scans.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	scannedTax, scannedTotal := sess.Tax, sess.Total

	l := req.ledger()
	result, err := s.scans.Apply(r.PathValue("id"), l)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applyScanResponse{
		People:        l.People(),
		TaxPercentage: l.TaxRate(),
		AdditionalFee: l.AdditionalFee(),
		Result:        result,
		Totals:        l.Totals(),
		ScannedTax:    scannedTax,
		ScannedTotal:  scannedTotal,
	})
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	sess, err := s.scans.Rescan(r.Context(), r.PathValue("id"))
	if err != nil {
		var id string
		if sess != nil {
			id = sess.ID
		}
		writeScanError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	s.scans.Cancel(r.PathValue("id"))
	writeJSON(w, http.StatusNoContent, nil)
}
