package rules

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledgerimport/record"
)

// countingConverter records how often it was consulted.
type countingConverter struct {
	calls   *int
	booking *record.Booking
}

func (c countingConverter) Convert(e record.Entry) (*record.Booking, error) {
	*c.calls++
	return c.booking, nil
}

func TestSeqReturnsFirstMatchAndStops(t *testing.T) {
	e := testEntry()
	first := ToAccount("Expenses:Groceries")
	laterCalls := 0
	later := countingConverter{calls: &laterCalls}

	booking, err := Seq(first, later).Convert(e)
	assert.NoError(t, err)
	assert.NotZero(t, booking)
	assert.Equal(t, "Expenses:Groceries", booking.Lines[1].Account)
	assert.Equal(t, 0, laterCalls)
}

func TestSeqFallsThroughNilResults(t *testing.T) {
	e := testEntry()
	skipCalls := 0
	skipped := countingConverter{calls: &skipCalls}

	booking, err := Seq(skipped, ToAccount("Expenses:Misc")).Convert(e)
	assert.NoError(t, err)
	assert.NotZero(t, booking)
	assert.Equal(t, 1, skipCalls)
	assert.Equal(t, "Expenses:Misc", booking.Lines[1].Account)

	booking, err = Seq(skipped).Convert(e)
	assert.NoError(t, err)
	assert.Zero(t, booking)
}

func TestSeqValidatesBookingShape(t *testing.T) {
	e := testEntry()
	malformed := countingConverter{calls: new(int), booking: &record.Booking{}}

	_, err := Seq(malformed).Convert(e)
	assert.Error(t, err)
}

func TestIfElseEvaluatesExactlyOneBranch(t *testing.T) {
	e := testEntry()

	thenCalls, elseCalls := 0, 0
	then := countingConverter{calls: &thenCalls}
	els := countingConverter{calls: &elseCalls}

	_, err := IfElse(MustRegex("REWE"), then, els).Convert(e)
	assert.NoError(t, err)
	assert.Equal(t, 1, thenCalls)
	assert.Equal(t, 0, elseCalls)

	_, err = IfElse(MustRegex("EDEKA"), then, els).Convert(e)
	assert.NoError(t, err)
	assert.Equal(t, 1, thenCalls)
	assert.Equal(t, 1, elseCalls)
}

func TestIfElseNilBranchIsUnclassified(t *testing.T) {
	booking, err := IfElse(MustRegex("EDEKA"), ToAccount("Expenses:Groceries"), nil).Convert(testEntry())
	assert.NoError(t, err)
	assert.Zero(t, booking)
}

func TestWithFallbackOnlyConsultedOnMiss(t *testing.T) {
	e := testEntry()
	fallbackCalls := 0
	fallback := countingConverter{calls: &fallbackCalls}

	booking, err := WithFallback(ToAccount("Expenses:Groceries"), fallback).Convert(e)
	assert.NoError(t, err)
	assert.Equal(t, "Expenses:Groceries", booking.Lines[1].Account)
	assert.Equal(t, 0, fallbackCalls)

	missCalls := 0
	miss := countingConverter{calls: &missCalls}
	booking, err = WithFallback(miss, ToAccount("Unknown")).Convert(e)
	assert.NoError(t, err)
	assert.Equal(t, "Unknown", booking.Lines[1].Account)
}
