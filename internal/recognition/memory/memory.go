// Package memory provides a canned in-memory Recognizer for tests and for
// running the server without Gemini credentials.
package memory

import (
	"context"
	"sync"
	"time"

	"splitinvoice/internal/recognition"
)

type Recognizer struct {
	mu     sync.Mutex
	result recognition.Result
	err    error
	delay  time.Duration
	calls  int
}

var _ recognition.Recognizer = (*Recognizer)(nil)

// New returns a recognizer that always answers with result.
func New(result recognition.Result) *Recognizer {
	return &Recognizer{result: result}
}

// NewError returns a recognizer that always fails with err.
func NewError(err error) *Recognizer {
	return &Recognizer{err: err}
}

// SetDelay makes Recognize block for d (or until the context ends),
// letting tests exercise the timeout path.
func (r *Recognizer) SetDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = d
}

// SetResult swaps the canned answer.
func (r *Recognizer) SetResult(result recognition.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = result
	r.err = err
}

// Calls reports how many times Recognize ran.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *Recognizer) Recognize(ctx context.Context, _ recognition.Image) (recognition.Result, error) {
	r.mu.Lock()
	r.calls++
	delay, result, err := r.delay, r.result, r.err
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return recognition.Result{}, recognition.ErrTimeout
		}
	}
	if err != nil {
		return recognition.Result{}, err
	}
	return result, nil
}
