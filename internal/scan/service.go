package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"splitinvoice/internal/cache"
	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
	"splitinvoice/internal/recognition"
)

// ErrCapture marks image-capture failures (no camera, permission denied,
// empty upload). Distinct from recognition failures so the caller can fall
// back to manual entry instead of retrying the service.
var ErrCapture = errors.New("image capture failed")

// ErrNoSession is returned for unknown or expired session IDs.
var ErrNoSession = errors.New("scan session not found")

// maxImageBytes bounds uploads; invoice photos past this are rejected as a
// capture failure rather than shipped to the recognition service.
const maxImageBytes = 10 << 20

// Service drives scan sessions: capture -> recognize -> stage -> apply.
// Sessions are held in a TTL'd LRU so abandoned scans age out on their own.
type Service struct {
	mu         sync.Mutex
	recognizer recognition.Recognizer
	sessions   *cache.LRUCache[*Session]
	timeout    time.Duration
}

// NewService creates a scan service. timeout bounds each recognition call;
// ttl bounds how long an unapplied session survives; maxSessions caps the
// number of concurrent sessions before the oldest is evicted.
func NewService(r recognition.Recognizer, timeout, ttl time.Duration, maxSessions int) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxSessions <= 0 {
		maxSessions = 64
	}
	return &Service{
		recognizer: r,
		sessions:   cache.NewLRUCache[*Session](maxSessions, ttl),
		timeout:    timeout,
	}
}

// Start opens a session from a captured image and runs recognition. On a
// recognition failure the session survives in Capturing with the image
// retained, so the caller can re-scan or give up without losing the photo.
func (s *Service) Start(ctx context.Context, img recognition.Image) (*Session, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: no image provided", ErrCapture)
	}
	if len(img.Data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrCapture, maxImageBytes)
	}

	sess := newSession(img)
	s.mu.Lock()
	s.sessions.Set(sess.ID, sess)
	s.mu.Unlock()

	if err := s.recognize(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Rescan re-runs recognition on the session's retained image.
func (s *Service) Rescan(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	sess.State = StateCapturing
	sess.Batch = nil
	s.mu.Unlock()
	if err := s.recognize(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Assign routes candidate idx of the session to a target.
func (s *Service) Assign(id string, idx int, target Target, l *ledger.Ledger) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.State != StateStaged || sess.Batch == nil {
		return fmt.Errorf("%w: session is %s, not staged", ErrNoSession, sess.State)
	}
	return sess.Batch.SetTarget(idx, target, l)
}

// Apply merges the session's staged batch into the ledger, then discards
// the session: the batch cannot double-apply, and the next scan starts
// from Idle.
func (s *Service) Apply(id string, l *ledger.Ledger) (ApplyResult, error) {
	sess, err := s.Get(id)
	if err != nil {
		return ApplyResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.State != StateStaged || sess.Batch == nil {
		return ApplyResult{}, core.ErrBatchConsumed
	}
	result, err := sess.Batch.Apply(l)
	if err != nil {
		return result, err
	}
	sess.State = StateApplied
	s.sessions.Delete(id)
	slog.Info("Scan batch applied",
		"session_id", id,
		"assigned", result.Assigned,
		"skipped", result.Skipped,
		"fee_added_cents", result.FeeAdded.Cents)
	return result, nil
}

// Cancel discards a session. Cancelling an unknown session is a no-op:
// the in-flight recognition result, if any, is simply dropped on arrival.
func (s *Service) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Delete(id)
}

// Get looks up a live session.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// recognize runs the bounded recognition call and stages the result. The
// ledger is never touched here; staging only fills the session's batch.
func (s *Service) recognize(ctx context.Context, sess *Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.recognizer.Recognize(ctx, sess.Image)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, recognition.ErrTimeout) {
			err = fmt.Errorf("%w: %v", recognition.ErrTimeout, err)
		}
		slog.Warn("Recognition failed", "session_id", sess.ID, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A session cancelled while the call was in flight stays gone.
	if _, ok := s.sessions.Get(sess.ID); !ok {
		return ErrNoSession
	}
	sess.Batch = StageCandidates(result.LineItems)
	sess.Tax = result.Tax
	sess.Total = result.GrandTotal
	sess.State = StateStaged
	return nil
}

// CleanExpired evicts expired sessions, returning how many were removed.
// Wired into the app's periodic cache cleanup.
func (s *Service) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.CleanExpired()
}
