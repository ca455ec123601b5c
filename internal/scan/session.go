package scan

import (
	"time"

	"github.com/google/uuid"

	"splitinvoice/internal/recognition"
)

// State is where a scan session sits in its lifecycle:
// Idle -> Capturing -> Staged -> Applied -> Idle.
type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateStaged    State = "staged"
	StateApplied   State = "applied"
)

// Session is one scan attempt. It retains the captured image so a re-scan
// from Staged goes back to Capturing without re-acquiring the camera, and
// it retains the recognition hints (scanned tax / grand total) so the
// caller can reconcile them against computed totals.
type Session struct {
	ID        string
	State     State
	Image     recognition.Image
	Batch     *Batch
	Tax       *float64
	Total     *float64
	CreatedAt time.Time
}

func newSession(img recognition.Image) *Session {
	return &Session{
		ID:        uuid.NewString(),
		State:     StateCapturing,
		Image:     img,
		CreatedAt: time.Now(),
	}
}
