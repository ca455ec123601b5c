// Package recognition defines the contract with the external
// vision-language service that turns an invoice photo into structured
// line items. Adapters live in subpackages; callers only see these ports.
package recognition

import (
	"context"
	"errors"
)

type (
	// Image is one captured or uploaded invoice picture.
	Image struct {
		Data     []byte
		MIMEType string
	}

	// RawLineItem is a best-effort extracted item. Price is a pointer
	// because the service may genuinely not find one.
	RawLineItem struct {
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
	}

	// Result is the service's structured reading of an invoice. Tax and
	// GrandTotal are hints for reconciliation, not authoritative values.
	Result struct {
		LineItems  []RawLineItem `json:"lineItems"`
		Tax        *float64      `json:"tax"`
		GrandTotal *float64      `json:"grandTotal"`
	}

	// Recognizer is the outbound port for the recognition service.
	Recognizer interface {
		Recognize(ctx context.Context, img Image) (Result, error)
	}
)

// Failure classes. All recognition failures are recoverable: the caller
// keeps the captured image and may retry or fall back to manual entry.
var (
	ErrTimeout      = errors.New("recognition timed out")
	ErrMalformed    = errors.New("recognition returned unparseable data")
	ErrRemote       = errors.New("recognition service error")
	ErrRateLimited  = errors.New("recognition service rate limited")
	ErrUnauthorized = errors.New("recognition credentials rejected")
)
