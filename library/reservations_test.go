package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnFlagsReservationThenProcessIssues(t *testing.T) {
	l, clk := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	holder := addMember(t, l, "Holder", nil)
	waiting := addMember(t, l, "Waiting", StudentProfile{})

	loan, err := l.Issue(holder.ID, "B1")
	require.NoError(t, err)
	require.Zero(t, l.AvailableCount("1"))
	r, err := l.Reserve(waiting.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, ReservationPending, r.Status)

	clk.AdvanceDays(3)
	_, flagged, err := l.Return(loan.ID)
	require.NoError(t, err)
	require.NotNil(t, flagged)
	assert.Equal(t, r.ID, flagged.ID)
	assert.Equal(t, ReservationFulfilled, r.Status)
	assert.True(t, r.AwaitingPickup())
	assert.Zero(t, l.CurrentLoanCount(waiting.ID))
	c, _ := l.Copy("B1")
	assert.Equal(t, CopyAvailable, c.Status)

	issued, err := l.Process(r.ID)
	require.NoError(t, err)
	assert.Equal(t, waiting.ID, issued.MemberID)
	assert.Equal(t, "B1", issued.Barcode)
	assert.Equal(t, issued.ID, r.LoanID)
	assert.False(t, r.AwaitingPickup())
	assert.Equal(t, CopyLoaned, c.Status)

	_, err = l.Process(r.ID)
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestReturnFulfilsEarliestReservation(t *testing.T) {
	l, clk := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	holder := addMember(t, l, "Holder", nil)
	first := addMember(t, l, "First", nil)
	second := addMember(t, l, "Second", nil)
	third := addMember(t, l, "Third", nil)

	loan, err := l.Issue(holder.ID, "B1")
	require.NoError(t, err)

	r1, err := l.Reserve(first.ID, "1")
	require.NoError(t, err)
	r2, err := l.Reserve(second.ID, "1") // same instant, later placement
	require.NoError(t, err)
	clk.AdvanceDays(1)
	r3, err := l.Reserve(third.ID, "1")
	require.NoError(t, err)

	assert.Equal(t, []*Reservation{r1, r2, r3}, l.PendingReservations("1"))

	_, flagged, err := l.Return(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, r1, flagged)
	assert.Equal(t, ReservationPending, r2.Status)
	assert.Equal(t, ReservationPending, r3.Status)
	assert.Equal(t, []*Reservation{r2, r3}, l.PendingReservations("1"))
}

func TestReserveRules(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	m := addMember(t, l, "Reader", nil)
	blocked := addMember(t, l, "Blocked", nil)
	require.NoError(t, l.SetStatus(blocked.ID, MemberBlacklisted))

	// availability is the caller's concern
	r, err := l.Reserve(m.ID, "1")
	require.NoError(t, err)

	_, err = l.Reserve(m.ID, "1")
	require.ErrorIs(t, err, ErrInvalidOperation)
	_, err = l.Reserve(blocked.ID, "1")
	require.ErrorIs(t, err, ErrMemberNotEligible)
	_, err = l.Reserve(m.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, l.Cancel(r.ID))
	_, err = l.Reserve(m.ID, "1")
	require.NoError(t, err)
	assert.Len(t, l.ReservationsOf(m.ID), 2)
}

func TestCancel(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title")
	m := addMember(t, l, "Reader", nil)
	r, err := l.Reserve(m.ID, "1")
	require.NoError(t, err)

	require.NoError(t, l.Cancel(r.ID))
	assert.Equal(t, ReservationCancelled, r.Status)
	assert.False(t, l.HasPendingReservation("1"))

	require.ErrorIs(t, l.Cancel(r.ID), ErrInvalidOperation)
	_, err = l.Process(r.ID)
	require.ErrorIs(t, err, ErrInvalidOperation)
	require.ErrorIs(t, l.Cancel("R-missing"), ErrNotFound)
}

func TestProcessWithoutCopies(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title")
	_, err := l.AddCopy("1", "R1", AsReferenceOnly())
	require.NoError(t, err)
	m := addMember(t, l, "Reader", nil)
	r, err := l.Reserve(m.ID, "1")
	require.NoError(t, err)

	_, err = l.Process(r.ID)
	require.ErrorIs(t, err, ErrNoAvailableCopy)
	assert.Equal(t, ReservationPending, r.Status)
	assert.Empty(t, l.Loans())
}

func TestProcessReportsIssueFailure(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	m := addMember(t, l, "Reader", nil)
	r, err := l.Reserve(m.ID, "1")
	require.NoError(t, err)
	require.NoError(t, l.SetActive(m.ID, false))

	_, err = l.Process(r.ID)
	require.ErrorIs(t, err, ErrNoAvailableCopy)
	require.ErrorIs(t, err, ErrMemberNotEligible)
	assert.Equal(t, ReservationPending, r.Status)
	c, _ := l.Copy("B1")
	assert.Equal(t, CopyAvailable, c.Status)
}

func TestProcessAdvancesOneReservation(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1", "B2")
	a := addMember(t, l, "A", nil)
	b := addMember(t, l, "B", nil)
	ra, err := l.Reserve(a.ID, "1")
	require.NoError(t, err)
	rb, err := l.Reserve(b.ID, "1")
	require.NoError(t, err)

	loan, err := l.Process(ra.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1", loan.Barcode)
	assert.Equal(t, ReservationFulfilled, ra.Status)
	assert.Equal(t, ReservationPending, rb.Status)
	assert.Equal(t, 1, l.AvailableCount("1"))
}

func TestReserveWhileAwaitingPickup(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	holder := addMember(t, l, "Holder", nil)
	waiting := addMember(t, l, "Waiting", nil)
	loan, err := l.Issue(holder.ID, "B1")
	require.NoError(t, err)
	r, err := l.Reserve(waiting.ID, "1")
	require.NoError(t, err)
	_, _, err = l.Return(loan.ID)
	require.NoError(t, err)
	require.True(t, r.AwaitingPickup())

	_, err = l.Reserve(waiting.ID, "1")
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.Len(t, l.ReservationsOf(waiting.ID), 1)

	_, err = l.Process(r.ID)
	require.NoError(t, err)
	_, err = l.Reserve(waiting.ID, "1")
	require.NoError(t, err)
}

func TestWalkInIssueStrandsAwaitingPickup(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	holder := addMember(t, l, "Holder", nil)
	waiting := addMember(t, l, "Waiting", nil)
	walkIn := addMember(t, l, "Walk-in", nil)
	loan, err := l.Issue(holder.ID, "B1")
	require.NoError(t, err)
	r, err := l.Reserve(waiting.ID, "1")
	require.NoError(t, err)
	_, _, err = l.Return(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, []*Reservation{r}, l.ReservationsAwaitingPickup("1"))

	// the core does not hold the freed copy; the desk warns before this issue
	_, err = l.Issue(walkIn.ID, "B1")
	require.NoError(t, err)

	_, err = l.Process(r.ID)
	require.ErrorIs(t, err, ErrNoAvailableCopy)
	assert.True(t, r.AwaitingPickup())
	assert.Equal(t, []*Reservation{r}, l.ReservationsAwaitingPickup("1"))
}
