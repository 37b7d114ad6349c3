package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftsale/label-annotator/dto"
)

type fakeMailingSink struct {
	entries []*dto.MailingListEntry
}

func (f *fakeMailingSink) AddOrUpdate(_ context.Context, entry *dto.MailingListEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

const janePickupPage = `LOCAL PICKUP ORDER
Subtotal: $20.00
Pickup To:
(new buyer!)
Jane Doe (JaneD)
123 Main St. Springfield. IL. 62704. US.`

const continuationPage = `Order items continued
Subtotal: $5.00`

const bobShippingPage = `Packing Slip
Subtotal: $9.99
Ships To:
Bob Roe (bobr)
1 Oak Ave. Columbus. OH. 43004. US.`

func TestReconcileConcreteScenario(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}
	binMap := map[string]int{"janed": 7}

	pages := []string{janePickupPage, continuationPage, bobShippingPage}

	stamps, skipped, flushCount, err := s.reconcilePages(context.Background(), pages, binMap)
	require.NoError(t, err)

	// Every page gets a stamp.
	assert.Len(t, stamps, 3)

	// Jane's order spans pages 1-2 and accumulates both subtotals.
	require.Len(t, sink.entries, 2)
	jane := sink.entries[0]
	assert.Equal(t, "janed", jane.Username)
	assert.Equal(t, "Jane Doe", jane.FullName)
	assert.InDelta(t, 25.00, jane.Spent, 0.001)
	assert.Equal(t, "PG000", jane.OrderID)
	assert.Equal(t, "PICK UP", jane.AddressLine2)
	assert.Equal(t, 2, flushCount)

	// Bob has no bin: his boundary page is recorded as skipped with his
	// username, and the final flush still produces his mailing entry.
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].PageIndex)
	assert.Equal(t, "bobr", skipped[0].Reason)
	bob := sink.entries[1]
	assert.Equal(t, "bobr", bob.Username)
	assert.InDelta(t, 9.99, bob.Spent, 0.001)
	assert.Equal(t, "", bob.AddressLine2)

	// Stamp states: Jane's pages carry her bin and pickup name, Bob's page
	// gets the fallback.
	assert.True(t, stamps[1].HasBin)
	assert.Equal(t, 7, stamps[1].BinNumber)
	assert.True(t, stamps[1].IsPickup)
	assert.Equal(t, "Jane Doe", stamps[1].FirstName)
	assert.True(t, stamps[2].HasBin, "continuation pages inherit the boundary state")
	assert.False(t, stamps[3].HasBin)
}

func TestReconcileResetsRunningTotalBetweenBuyers(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	pages := []string{
		janePickupPage,
		`Subtotal: $5.50`,
		`Subtotal: $2.25`,
		bobShippingPage,
	}

	_, _, _, err := s.reconcilePages(context.Background(), pages, map[string]int{})
	require.NoError(t, err)

	require.Len(t, sink.entries, 2)
	assert.InDelta(t, 27.75, sink.entries[0].Spent, 0.001)
	assert.InDelta(t, 9.99, sink.entries[1].Spent, 0.001, "Bob's total must not inherit Jane's amounts")
}

func TestReconcileNeverDoubleFlushes(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	// Jane is flushed when Bob's boundary appears; the end-of-document flush
	// must not produce a second entry for Bob either.
	pages := []string{janePickupPage, bobShippingPage, continuationPage}

	_, _, flushCount, err := s.reconcilePages(context.Background(), pages, map[string]int{})
	require.NoError(t, err)

	assert.Equal(t, 2, flushCount)
	require.Len(t, sink.entries, 2)
	assert.Equal(t, "janed", sink.entries[0].Username)
	assert.Equal(t, "bobr", sink.entries[1].Username)
}

func TestReconcileSkipsUnidentifiableBoundary(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	pages := []string{
		"Packing Slip\nSubtotal: $4.00", // boundary with no identity line
		continuationPage,
	}

	stamps, skipped, flushCount, err := s.reconcilePages(context.Background(), pages, map[string]int{})
	require.NoError(t, err)

	assert.Zero(t, flushCount)
	assert.Empty(t, sink.entries)
	require.Len(t, skipped, 1)
	assert.Equal(t, dto.SkipNoUsername, skipped[0].Reason)
	assert.Len(t, stamps, 2, "skipped pages still appear in the output")
	assert.False(t, stamps[1].HasBin)
	assert.False(t, stamps[2].HasBin)
}

func TestReconcileSkipsUnparsableAddress(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	pages := []string{"Packing Slip\nShips To:\nJane Doe (janed)\nSpringfield IL"}

	_, skipped, flushCount, err := s.reconcilePages(context.Background(), pages, map[string]int{"janed": 1})
	require.NoError(t, err)

	assert.Zero(t, flushCount)
	require.Len(t, skipped, 1)
	assert.Equal(t, dto.SkipNoAddressData, skipped[0].Reason)
}

func TestReconcileSkipCountBoundedByBoundaryCount(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	// Two boundaries, several continuations, nobody has a bin.
	pages := []string{janePickupPage, continuationPage, continuationPage, bobShippingPage, continuationPage}

	stamps, skipped, _, err := s.reconcilePages(context.Background(), pages, map[string]int{})
	require.NoError(t, err)

	assert.Len(t, stamps, len(pages))
	assert.LessOrEqual(t, len(skipped), 2)
	assert.Len(t, skipped, 2)
}

func TestReconcileBinLookupUsesNormalizedUsername(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	// Label text carries mixed case; the bin map is keyed lowercase.
	page := `Packing Slip
Ships To:
Jane Doe ( JaneD )
123 Main St. Springfield. IL. 62704. US.`

	stamps, skipped, _, err := s.reconcilePages(context.Background(), []string{page}, map[string]int{"janed": 3})
	require.NoError(t, err)

	assert.Empty(t, skipped)
	assert.True(t, stamps[1].HasBin)
	assert.Equal(t, 3, stamps[1].BinNumber)
}

func TestReconcilePickupPrecedenceOverPackingSlip(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	// Both markers on one page: treated as pickup, so the first name is kept
	// and the mailing entry is marked PICK UP.
	page := `Packing Slip
LOCAL PICKUP ORDER
Pickup To:
Jane Doe (janed)
123 Main St. Springfield. IL. 62704. US.
Subtotal: $10.00`

	stamps, _, _, err := s.reconcilePages(context.Background(), []string{page}, map[string]int{"janed": 1})
	require.NoError(t, err)

	assert.True(t, stamps[1].IsPickup)
	assert.Equal(t, "Jane Doe", stamps[1].FirstName)
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "PICK UP", sink.entries[0].AddressLine2)
}

func TestShippingEntryKeepsSuiteLine(t *testing.T) {
	sink := &fakeMailingSink{}
	s := &LabelService{mailing: sink}

	page := `Packing Slip
Ships To:
Bob Roe (bobr)
1 Oak Ave. Apt 12. Columbus. OH. 43004. US.`

	_, _, _, err := s.reconcilePages(context.Background(), []string{page}, map[string]int{})
	require.NoError(t, err)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "Apt 12", sink.entries[0].AddressLine2)
}
