package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
	"splitinvoice/internal/recognition"
	recmem "splitinvoice/internal/recognition/memory"
)

func testImage() recognition.Image {
	return recognition.Image{Data: []byte("fake-jpeg-bytes"), MIMEType: "image/jpeg"}
}

func cannedResult() recognition.Result {
	return recognition.Result{
		LineItems: []recognition.RawLineItem{
			{Description: "Burger", Price: f(12.50)},
			{Description: "Fries", Price: f(4)},
		},
		Tax:        f(1.32),
		GrandTotal: f(17.82),
	}
}

func TestServiceStartStages(t *testing.T) {
	svc := NewService(recmem.New(cannedResult()), time.Second, time.Minute, 16)

	sess, err := svc.Start(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, StateStaged, sess.State)
	require.NotNil(t, sess.Batch)
	assert.Len(t, sess.Batch.Candidates(), 2)
	require.NotNil(t, sess.Tax)
	assert.Equal(t, 1.32, *sess.Tax)
}

func TestServiceStartRejectsEmptyImage(t *testing.T) {
	svc := NewService(recmem.New(cannedResult()), time.Second, time.Minute, 16)
	_, err := svc.Start(context.Background(), recognition.Image{})
	require.ErrorIs(t, err, ErrCapture)
}

func TestServiceRecognitionFailureKeepsImage(t *testing.T) {
	rec := recmem.NewError(recognition.ErrRemote)
	svc := NewService(rec, time.Second, time.Minute, 16)

	sess, err := svc.Start(context.Background(), testImage())
	require.ErrorIs(t, err, recognition.ErrRemote)
	require.NotNil(t, sess)
	assert.Equal(t, StateCapturing, sess.State)
	assert.NotEmpty(t, sess.Image.Data, "image must be retained for re-scan")

	// Service recovers: flip the recognizer to a good answer and re-scan
	// without a new capture.
	rec.SetResult(cannedResult(), nil)
	sess, err = svc.Rescan(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateStaged, sess.State)
	assert.Equal(t, 2, rec.Calls())
}

func TestServiceTimeoutLeavesLedgerUntouched(t *testing.T) {
	rec := recmem.New(cannedResult())
	rec.SetDelay(200 * time.Millisecond)
	svc := NewService(rec, 10*time.Millisecond, time.Minute, 16)

	l := ledger.New(2)
	before := l.Totals()

	_, err := svc.Start(context.Background(), testImage())
	require.ErrorIs(t, err, recognition.ErrTimeout)
	assert.Equal(t, before, l.Totals())
}

func TestServiceApplyDiscardsSession(t *testing.T) {
	svc := NewService(recmem.New(cannedResult()), time.Second, time.Minute, 16)
	l := ledger.New(1)

	sess, err := svc.Start(context.Background(), testImage())
	require.NoError(t, err)
	require.NoError(t, svc.Assign(sess.ID, 0, Target{Kind: TargetPerson, Person: "Person 1"}, l))

	result, err := svc.Apply(sess.ID, l)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)

	// The session is gone; a second apply cannot double-add.
	_, err = svc.Apply(sess.ID, l)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestServiceCancelDiscardsSession(t *testing.T) {
	svc := NewService(recmem.New(cannedResult()), time.Second, time.Minute, 16)
	l := ledger.New(1)

	sess, err := svc.Start(context.Background(), testImage())
	require.NoError(t, err)

	svc.Cancel(sess.ID)
	_, err = svc.Get(sess.ID)
	require.ErrorIs(t, err, ErrNoSession)
	err = svc.Assign(sess.ID, 0, Target{Kind: TargetFee}, l)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Apply(sess.ID, l)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestServiceApplyRefusedWhileCapturing(t *testing.T) {
	rec := recmem.NewError(recognition.ErrRemote)
	svc := NewService(rec, time.Second, time.Minute, 16)
	l := ledger.New(1)

	sess, err := svc.Start(context.Background(), testImage())
	require.ErrorIs(t, err, recognition.ErrRemote)

	_, err = svc.Apply(sess.ID, l)
	require.ErrorIs(t, err, core.ErrBatchConsumed)
}
