package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
	"splitinvoice/internal/recognition"
)

func f(v float64) *float64 { return &v }

func TestStageCandidatesNormalizes(t *testing.T) {
	b := StageCandidates([]recognition.RawLineItem{
		{Description: " Burger ", Price: f(12.50)},
		{Description: "", Price: f(4)},
		{Description: "Mystery", Price: nil},
		{Description: "", Price: f(0)},
	})
	got := b.Candidates()
	require.Len(t, got, 4)

	assert.Equal(t, "Burger", got[0].Description)
	assert.Equal(t, int64(1250), got[0].Price.Cents)
	assert.Equal(t, TargetIgnore, got[0].Target.Kind)

	// Priced but unnamed items get a placeholder label.
	assert.Equal(t, "Scanned Item 2", got[1].Description)
	assert.Equal(t, int64(400), got[1].Price.Cents)

	// Missing price becomes zero, description survives.
	assert.Equal(t, "Mystery", got[2].Description)
	assert.True(t, got[2].Price.IsZero())

	// Empty description and zero price stays empty: apply will skip it.
	assert.Equal(t, "", got[3].Description)
}

func TestSetTargetValidatesPerson(t *testing.T) {
	l := ledger.New(2)
	b := StageCandidates([]recognition.RawLineItem{{Description: "Burger", Price: f(12.50)}})

	require.NoError(t, b.SetTarget(0, Target{Kind: TargetPerson, Person: "Person 1"}, l))
	err := b.SetTarget(0, Target{Kind: TargetPerson, Person: "Nobody"}, l)
	require.ErrorIs(t, err, core.ErrUnknownTarget)
	err = b.SetTarget(5, Target{Kind: TargetFee}, l)
	require.ErrorIs(t, err, core.ErrUnknownItem)
}

// Scenario from the calculator's contract: [{"Burger",12.50},{"",0}] with
// assignments [Person A, ignore] yields assigned=1, skipped=1, and Person A
// gains the Burger item.
func TestApplyScenario(t *testing.T) {
	l := ledger.New(2)
	b := StageCandidates([]recognition.RawLineItem{
		{Description: "Burger", Price: f(12.50)},
		{Description: "", Price: f(0)},
	})
	require.NoError(t, b.SetTarget(0, Target{Kind: TargetPerson, Person: "Person 1"}, l))

	result, err := b.Apply(l)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, result.FeeAdded.IsZero())

	items := l.People()[0].Items
	require.NotEmpty(t, items)
	last := items[len(items)-1]
	assert.Equal(t, "Burger", last.Description)
	assert.Equal(t, int64(1250), last.Price.Cents)
}

func TestApplyFeeTarget(t *testing.T) {
	l := ledger.New(1)
	l.SetAdditionalFee(core.Money{Cents: 100})
	b := StageCandidates([]recognition.RawLineItem{
		{Description: "Service charge", Price: f(2.50)},
	})
	require.NoError(t, b.SetTarget(0, Target{Kind: TargetFee}, l))

	result, err := b.Apply(l)
	require.NoError(t, err)
	assert.Equal(t, int64(250), result.FeeAdded.Cents)
	assert.Equal(t, int64(350), l.AdditionalFee().Cents)
}

func TestApplyConsumesBatch(t *testing.T) {
	l := ledger.New(1)
	b := StageCandidates([]recognition.RawLineItem{{Description: "Burger", Price: f(12.50)}})
	require.NoError(t, b.SetTarget(0, Target{Kind: TargetPerson, Person: "Person 1"}, l))

	_, err := b.Apply(l)
	require.NoError(t, err)
	before := len(l.People()[0].Items)

	_, err = b.Apply(l)
	require.ErrorIs(t, err, core.ErrBatchConsumed)
	assert.Equal(t, before, len(l.People()[0].Items), "second apply must not double-add")
}

func TestApplyNeverPartiallyMutates(t *testing.T) {
	l := ledger.New(2)
	b := StageCandidates([]recognition.RawLineItem{
		{Description: "Burger", Price: f(12.50)},
		{Description: "Fries", Price: f(4)},
	})
	require.NoError(t, b.SetTarget(0, Target{Kind: TargetPerson, Person: "Person 1"}, l))
	require.NoError(t, b.SetTarget(1, Target{Kind: TargetPerson, Person: "Person 2"}, l))

	// Person 2 disappears between assignment and apply.
	require.NoError(t, l.RemovePerson(1))

	before := l.Totals()
	_, err := b.Apply(l)
	require.ErrorIs(t, err, core.ErrUnknownTarget)
	assert.Equal(t, before, l.Totals(), "failed apply must leave the ledger unchanged")

	// The batch is still usable after fixing the assignment.
	require.NoError(t, b.SetTarget(1, Target{Kind: TargetIgnore}, l))
	result, err := b.Apply(l)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)
}
